package engine

import "testing"

func TestResolveArrival(t *testing.T) {
	ex := Exercise{ID: "bank-2", TargetStation: "helpDesk"}

	tests := []struct {
		name         string
		station      Station
		wantCorrect  bool
		wantRejected string
	}{
		{"target station", Station{Key: "helpDesk", Type: HelpDesk}, true, ""},
		{"wrong station", Station{Key: "atm", Type: ATM}, false, "atm"},
		{"other wrong station", Station{Key: "paymentStation", Type: PaymentStation}, false, "paymentStation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Resolver
			out := r.ResolveArrival(tt.station, ex)
			if out.Correct != tt.wantCorrect {
				t.Errorf("Expected correct=%v, got %v", tt.wantCorrect, out.Correct)
			}
			if out.StationKey != tt.station.Key {
				t.Errorf("Expected station key %q, got %q", tt.station.Key, out.StationKey)
			}
			key, ok := r.Rejected()
			if key != tt.wantRejected || ok != (tt.wantRejected != "") {
				t.Errorf("Expected rejected %q, got %q (%v)", tt.wantRejected, key, ok)
			}
		})
	}
}

func TestResolverClearRejection(t *testing.T) {
	var r Resolver
	r.ResolveArrival(Station{Key: "atm"}, Exercise{TargetStation: "helpDesk"})
	r.ClearRejection()
	if _, ok := r.Rejected(); ok {
		t.Error("Expected rejection to be cleared")
	}

	r.ResolveArrival(Station{Key: "atm"}, Exercise{TargetStation: "helpDesk"})
	r.ResolveArrival(Station{Key: "helpDesk"}, Exercise{TargetStation: "helpDesk"})
	if _, ok := r.Rejected(); ok {
		t.Error("Expected a correct arrival to drop the pending rejection")
	}
}
