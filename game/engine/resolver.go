package engine

// Outcome is the verdict for one station arrival
type Outcome struct {
	Correct    bool   `json:"correct"`
	StationKey string `json:"station_key"`
}

// Resolver judges station arrivals against the exercise target. It keeps
// the key of the last rejected station until the caller clears it; how long
// that rejection is shown is the caller's decision.
type Resolver struct {
	rejected string
}

// ResolveArrival returns Correct iff the station key matches the exercise target
func (r *Resolver) ResolveArrival(arrived Station, ex Exercise) Outcome {
	if arrived.Key == ex.TargetStation {
		r.rejected = ""
		return Outcome{Correct: true, StationKey: arrived.Key}
	}
	r.rejected = arrived.Key
	return Outcome{Correct: false, StationKey: arrived.Key}
}

// Rejected returns the station key of the pending rejection, if any
func (r *Resolver) Rejected() (string, bool) {
	return r.rejected, r.rejected != ""
}

// ClearRejection drops the pending rejection
func (r *Resolver) ClearRejection() {
	r.rejected = ""
}
