package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/bank-branch-game/game/engine"
	"github.com/wricardo/bank-branch-game/game/service"
)

const (
	// settlePoll is how often a waiting tool re-reads the session state
	settlePoll = 100 * time.Millisecond
	// settleTimeout bounds how long a waiting tool follows a walk
	settleTimeout = 15 * time.Second
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Bank Branch Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Bank Branch Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Each exercise describes a customer request. Walk the token (T) to the station that
solves it: atm (A), helpDesk (H) or paymentStation ($). The entrance (E) is never a target.
A correct arrival opens a dialogue; page it with advance_dialogue and close it with
dismiss_dialogue to score the exercise. A wrong station blocks input for a moment.

AVAILABLE TOOLS:
- create_session: Start a new run (optional map)
- game_state: Map, token, current exercise and phase
- tap_station: Walk to a station and be judged there
- tap_cell: Walk to a free cell
- advance_dialogue / dismiss_dialogue: Page and close the dialogue
- plan_path: Preview a walk without moving
- reset_run: Restart at the first exercise
- attempt_history: Past station arrivals
- list_maps: Available maps

Walks take time. tap_station and tap_cell wait for the token to stop unless wait=false.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional map selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the map to use (optional, see list_maps)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current run: map, token position, exercise and phase",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tap_station",
		Description: "Walk to the open cell next to a station; the arrival is judged against the exercise",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"station": map[string]interface{}{
					"type":        "string",
					"description": "Station key, e.g. atm, helpDesk, paymentStation",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Why this station solves the customer request (rubber duck)",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Wait for the token to stop before answering (default true)",
				},
			},
			Required: []string{"session_id", "station"},
		},
	}, c.handleTapStation)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tap_cell",
		Description: "Walk to a free cell without being judged",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0 is the left wall",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0 is the top wall",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Wait for the token to stop before answering (default true)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleTapCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance_dialogue",
		Description: "Show the next dialogue message after a correct arrival",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleAdvanceDialogue)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "dismiss_dialogue",
		Description: "Close the dialogue, score the exercise and start the next one",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleDismissDialogue)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "plan_path",
		Description: "Preview the walk to a station or cell without moving",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"station": map[string]interface{}{
					"type":        "string",
					"description": "Station key (use this or x/y)",
				},
				"x": map[string]interface{}{"type": "integer"},
				"y": map[string]interface{}{"type": "integer"},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlanPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_run",
		Description: "Restart the run at the first exercise; the token stays where it is",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "attempt_history",
		Description: "List past station arrivals, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Attempts per page (default 20, max 100)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAttemptHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List available maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// waitForSettle polls the state until the token is no longer walking
func (c *Client) waitForSettle(ctx context.Context, sessionID string) (*engine.GameSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()

	for {
		var state engine.GameSnapshot
		if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
			return nil, err
		}
		if state.Controller.State != engine.StateMoving {
			return &state, nil
		}
		select {
		case <-ctx.Done():
			return &state, nil
		case <-ticker.C:
		}
	}
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameSnapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleTapStation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	station, err := request.RequireString("station")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	body := map[string]string{"station": station}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tap-station"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.finishTap(ctx, request, sessionID, &result)
}

func (c *Client) handleTapCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	body := map[string]int{"x": x, "y": y}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tap"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.finishTap(ctx, request, sessionID, &result)
}

// finishTap optionally follows an accepted walk to its end and formats the answer
func (c *Client) finishTap(ctx context.Context, request mcp.CallToolRequest, sessionID string, result *service.ActionResult) (*mcp.CallToolResult, error) {
	text := formatActionResult(result)
	if result.Accepted && request.GetBool("wait", true) {
		state, err := c.waitForSettle(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text += "\n\nAfter the walk:\n" + formatGameState(state)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleAdvanceDialogue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var page service.DialogueResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/dialogue/next"), nil, &page); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("%s (%d/%d): %s", page.Speaker, page.Index+1, page.Total, page.Text)
	if page.IsLast {
		text += "\n\nLast message. Use dismiss_dialogue to finish the exercise."
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleDismissDialogue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/dialogue/dismiss"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handlePlanPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{}
	if station := request.GetString("station", ""); station != "" {
		body["station"] = station
	} else {
		args := request.GetArguments()
		if _, ok := args["x"]; ok {
			body["x"] = request.GetInt("x", 0)
		}
		if _, ok := args["y"]; ok {
			body["y"] = request.GetInt("y", 0)
		}
	}

	var plan service.PlanResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/plan"), body, &plan); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlan(&plan)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var resp struct {
		Message string               `json:"message"`
		State   *engine.GameSnapshot `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(resp.Message + "\n\n" + formatGameState(resp.State)), nil
}

func (c *Client) handleAttemptHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("page", fmt.Sprint(request.GetInt("page", 1)))
	query.Set("limit", fmt.Sprint(request.GetInt("limit", 20)))

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/history?"+query.Encode()), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []*service.MapInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &maps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available maps:\n")
	for _, m := range maps {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d exercises, stations: %s)\n",
			m.ConfigID, m.Name, m.Cols, m.Rows, m.Exercises, strings.Join(m.Stations, ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

var stationChars = map[engine.StationType]byte{
	engine.Entrance:       'E',
	engine.ATM:            'A',
	engine.HelpDesk:       'H',
	engine.PaymentStation: '$',
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nMap: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// renderGrid draws the layout with stations and the settled token
func renderGrid(state *engine.GameSnapshot) string {
	rows := make([][]byte, len(state.Layout))
	for y, row := range state.Layout {
		rows[y] = []byte(row)
	}
	put := func(x, y int, ch byte) {
		if y >= 0 && y < len(rows) && x >= 0 && x < len(rows[y]) {
			rows[y][x] = ch
		}
	}
	for _, st := range state.Stations {
		if ch, ok := stationChars[st.Type]; ok {
			put(st.X, st.Y, ch)
		}
	}
	settled := state.Controller.Settled
	put(settled.X, settled.Y, 'T')

	var b strings.Builder
	for _, row := range rows {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatGameState(state *engine.GameSnapshot) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	ctrl := state.Controller

	if state.Finished {
		fmt.Fprintf(&b, "🎉 RUN COMPLETE - Score: %d\n", state.Score)
	} else {
		fmt.Fprintf(&b, "Exercise %d/%d: %s\n", state.ExerciseIndex+1, state.ExerciseCount, state.Exercise.Title)
		if state.Exercise.Statement != "" {
			fmt.Fprintf(&b, "%s\n", state.Exercise.Statement)
		}
	}
	fmt.Fprintf(&b, "Phase: %s\n", ctrl.State)
	fmt.Fprintf(&b, "Token: (%d,%d)\n", ctrl.Settled.X, ctrl.Settled.Y)
	fmt.Fprintf(&b, "Score: %d\n", state.Score)

	switch ctrl.State {
	case engine.StateMoving:
		fmt.Fprintf(&b, "Walking, %d cells to go\n", len(ctrl.RemainingPath))
	case engine.StateRejected:
		fmt.Fprintf(&b, "✗ Wrong station: %s (input blocked for %dms)\n", ctrl.RejectedStation, ctrl.RejectionRemainingMS)
	case engine.StateDialogue:
		if d := ctrl.Dialogue; d != nil && ctrl.DialogueIndex < len(d.Messages) {
			fmt.Fprintf(&b, "✓ %s (%d/%d): %s\n", d.Speaker, ctrl.DialogueIndex+1, len(d.Messages), d.Messages[ctrl.DialogueIndex])
		}
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	b.WriteString("\nMap (T token, A atm, H help desk, $ payment, E entrance, # blocked):\n")
	b.WriteString(renderGrid(state))

	b.WriteString("\nStations:\n")
	for _, st := range state.Stations {
		fmt.Fprintf(&b, "- %s (%s) at (%d,%d)\n", st.Key, st.Type, st.X, st.Y)
	}
	return b.String()
}

func formatPath(path engine.Path) string {
	parts := make([]string, 0, len(path))
	for _, c := range path {
		parts = append(parts, fmt.Sprintf("(%d,%d)", c.X, c.Y))
	}
	return strings.Join(parts, " -> ")
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Accepted {
		b.WriteString("✓ Accepted")
		if len(result.Path) > 1 {
			fmt.Fprintf(&b, ": %d steps, %dms\nPath: %s", len(result.Path)-1, result.DurationMS, formatPath(result.Path))
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "✗ Ignored (%s): %s\n", result.Reason, result.Message)
	}

	for _, e := range result.Events {
		switch e.Type {
		case string(engine.EventStep):
			continue
		case string(engine.EventCompleted):
			fmt.Fprintf(&b, "Event: completed +%d points\n", e.Points)
		default:
			if e.Message != "" {
				fmt.Fprintf(&b, "Event: %s - %s\n", e.Type, e.Message)
			} else {
				fmt.Fprintf(&b, "Event: %s\n", e.Type)
			}
		}
	}

	if result.Accepted && result.GameState != nil {
		fmt.Fprintf(&b, "Score: %d, exercise %d/%d, phase %s\n",
			result.GameState.Score, result.GameState.ExerciseIndex+1, result.GameState.ExerciseCount,
			result.GameState.Controller.State)
	}
	return b.String()
}

func formatPlan(plan *service.PlanResult) string {
	if !plan.Reachable {
		return fmt.Sprintf("No path from (%d,%d) to (%d,%d)", plan.From.X, plan.From.Y, plan.Target.X, plan.Target.Y)
	}
	return fmt.Sprintf("From (%d,%d) to (%d,%d): %d steps, %dms\nPath: %s",
		plan.From.X, plan.From.Y, plan.Target.X, plan.Target.Y, plan.Steps, plan.DurationMS, formatPath(plan.Path))
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attempt History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalAttempts)

	for _, a := range history.Attempts {
		status := "✓"
		if !a.Correct {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s on %s at (%d,%d)", a.Number, status, a.StationKey, a.ExerciseID, a.Position.X, a.Position.Y)
		if a.Points > 0 {
			fmt.Fprintf(&b, " +%d", a.Points)
		}
		b.WriteString("\n")
	}
	return b.String()
}
