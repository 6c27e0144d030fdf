// Command autoplay plays bank branch runs against a running server through the
// REST API. The oracle strategy taps each exercise's target directly; the
// guess strategy tries the nearest stations until one is accepted, sitting
// out every rejection window like a player would.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/bank-branch-game/game/engine"
	"github.com/wricardo/bank-branch-game/game/service"
)

// Client is a minimal REST client bound to one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
	poll      time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		poll: 50 * time.Millisecond,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameSnapshot, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return info.GameState, nil
}

func (c *Client) State(ctx context.Context) (*engine.GameSnapshot, error) {
	var state engine.GameSnapshot
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) TapStation(ctx context.Context, station string) (*service.ActionResult, error) {
	var result service.ActionResult
	err := c.do(ctx, http.MethodPost, c.sessionPath("/tap-station"), map[string]string{"station": station}, &result)
	return &result, err
}

// Distance is the planned walk to a station in steps, or -1 when there is none
func (c *Client) Distance(ctx context.Context, station string) int {
	var plan service.PlanResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/plan"), service.PlanRequest{Station: station}, &plan); err != nil {
		return -1
	}
	if !plan.Reachable {
		return -1
	}
	return plan.Steps
}

func (c *Client) NextDialogue(ctx context.Context) (*service.DialogueResult, error) {
	var page service.DialogueResult
	err := c.do(ctx, http.MethodPost, c.sessionPath("/dialogue/next"), nil, &page)
	return &page, err
}

func (c *Client) Dismiss(ctx context.Context) (*service.ActionResult, error) {
	var result service.ActionResult
	err := c.do(ctx, http.MethodPost, c.sessionPath("/dialogue/dismiss"), nil, &result)
	return &result, err
}

func (c *Client) Reset(ctx context.Context) (*engine.GameSnapshot, error) {
	var resp struct {
		Message string               `json:"message"`
		State   *engine.GameSnapshot `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

// WaitWhile polls the state until it leaves the given controller states
func (c *Client) WaitWhile(ctx context.Context, states ...engine.State) (*engine.GameSnapshot, error) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		state, err := c.State(ctx)
		if err != nil {
			return nil, err
		}
		waiting := false
		for _, s := range states {
			if state.Controller.State == s {
				waiting = true
				break
			}
		}
		if !waiting {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunStats summarizes one played run
type RunStats struct {
	Taps     int
	Wrong    int
	Score    int
	Finished bool
	Elapsed  time.Duration
}

var errStuck = errors.New("strategy has no station left to try")

// playRun plays the session from its current state until the run finishes
// or maxTaps station taps have been made
func playRun(ctx context.Context, c *Client, strategy Strategy, maxTaps int, verbose bool) (*RunStats, error) {
	started := time.Now()
	stats := &RunStats{}

	state, err := c.WaitWhile(ctx, engine.StateMoving, engine.StateRejected)
	if err != nil {
		return nil, err
	}

	for !state.Finished && stats.Taps < maxTaps {
		if state.Controller.State == engine.StateDialogue {
			if state, err = finishDialogue(ctx, c, state, verbose); err != nil {
				return nil, err
			}
			continue
		}

		station, ok := strategy.Choose(state)
		if !ok {
			return stats, fmt.Errorf("%w for %s", errStuck, state.Exercise.ID)
		}

		result, err := c.TapStation(ctx, station)
		if err != nil {
			return nil, err
		}
		stats.Taps++
		if !result.Accepted {
			// nothing was walked; this station can never be right here
			log.Printf("Tap %s ignored: %s", station, result.Reason)
			strategy.Rejected(state.Exercise.ID, station)
			state = result.GameState
			continue
		}
		if verbose {
			log.Printf("Exercise %s: walking to %s (%d steps)", state.Exercise.ID, station, len(result.Path)-1)
		}

		exerciseID := state.Exercise.ID
		if state, err = c.WaitWhile(ctx, engine.StateMoving, engine.StateResolving); err != nil {
			return nil, err
		}
		if state.Controller.State == engine.StateDialogue {
			continue
		}

		stats.Wrong++
		strategy.Rejected(exerciseID, station)
		if verbose {
			log.Printf("Exercise %s: %s was wrong, waiting out the rejection", exerciseID, station)
		}
		if state, err = c.WaitWhile(ctx, engine.StateRejected); err != nil {
			return nil, err
		}
	}

	stats.Score = state.Score
	stats.Finished = state.Finished
	stats.Elapsed = time.Since(started)
	return stats, nil
}

// finishDialogue pages through the open dialogue and dismisses it
func finishDialogue(ctx context.Context, c *Client, state *engine.GameSnapshot, verbose bool) (*engine.GameSnapshot, error) {
	if d := state.Controller.Dialogue; verbose && d != nil && state.Controller.DialogueIndex < len(d.Messages) {
		log.Printf("  %s: %s", d.Speaker, d.Messages[state.Controller.DialogueIndex])
	}
	for {
		page, err := c.NextDialogue(ctx)
		if err != nil {
			return nil, err
		}
		if verbose {
			log.Printf("  %s: %s", page.Speaker, page.Text)
		}
		if page.IsLast {
			break
		}
	}
	result, err := c.Dismiss(ctx)
	if err != nil {
		return nil, err
	}
	return result.GameState, nil
}

func newStrategy(ctx context.Context, name string, c *Client) (Strategy, error) {
	switch name {
	case "oracle":
		return OracleStrategy{}, nil
	case "guess":
		return NewGuessStrategy(func(station string) int {
			return c.Distance(ctx, station)
		}), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (use oracle or guess)", name)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	serverURL := cmd.String("url")
	log.Printf("Connecting to game server at %s", serverURL)
	client := NewClient(serverURL)
	verbose := cmd.Bool("v")

	// Check for saved session ID
	sessionFile := cmd.String("session-file")
	savedSessionID := cmd.String("continue")
	if savedSessionID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		if _, err := client.Reset(ctx); err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		state, err := client.CreateSession(ctx, cmd.String("config"))
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		log.Printf("✨ Session created: %s (%s, %d exercises)", client.sessionID, state.MapName, state.ExerciseCount)
		if sessionFile != "" {
			if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
				log.Printf("Warning: Failed to save session ID: %v", err)
			}
		}
	}

	strategy, err := newStrategy(ctx, cmd.String("strategy"), client)
	if err != nil {
		return err
	}

	runs := cmd.Int("runs")
	for i := 1; i <= runs; i++ {
		if i > 1 {
			if _, err := client.Reset(ctx); err != nil {
				return fmt.Errorf("failed to reset: %w", err)
			}
			strategy.Reset()
		}

		log.Printf("=== 🎮 Run %d/%d ===", i, runs)
		stats, err := playRun(ctx, client, strategy, cmd.Int("max-taps"), verbose)
		if err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
		log.Printf("Run %d: taps=%d wrong=%d score=%d finished=%v elapsed=%v",
			i, stats.Taps, stats.Wrong, stats.Score, stats.Finished, stats.Elapsed.Round(time.Millisecond))
		if !stats.Finished {
			return cli.Exit(fmt.Sprintf("❌ Run %d stopped after %d taps", i, stats.Taps), 1)
		}
	}

	log.Printf("🎉 Session: %s", client.sessionID)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play bank branch runs through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Map to play (default map when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "File remembering the session between runs (empty disables)"},
			&cli.StringFlag{Name: "strategy", Value: "guess", Usage: "oracle or guess"},
			&cli.IntFlag{Name: "runs", Value: 1, Usage: "Number of runs to play"},
			&cli.IntFlag{Name: "max-taps", Value: 100, Usage: "Maximum station taps per run"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
