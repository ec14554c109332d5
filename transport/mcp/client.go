package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/service"
	"github.com/wricardo/mcp-training/autopilot/game/world"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Grid Autopilot Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Autopilot Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Drive the car (C) from the start (S) to the finish (F). The finish only opens once
every key has been collected, and keys lie on lava tiles that cost health.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage sessions
- game_state: current state of a session
- drive: one relative command (forward/backward/left/right/none)
- bulk_drive: up to 50 commands in one call
- step: let the autopilot decide and drive one tick
- autodrive: let the autopilot drive until the game ends
- plan: preview the autopilot's route without driving
- reset_game, move_history, list_configs, game_instructions, describe_cell

Call game_instructions for the full rules.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_name": map[string]any{
					"type":        "string",
					"description": "Scenario to load (see list_configs). Defaults to the server's default scenario.",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details about a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current state of a session: grid, car position, heading, health and keys",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drive",
		Description: "Drive one command relative to the car's heading. left and right turn the car and move it one tile.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"command": map[string]any{
					"type":        "string",
					"enum":        engine.Commands,
					"description": "Relative command",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Why this command is being driven",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset the scenario before driving",
				},
			},
			Required: []string{"session_id", "command", "intent"},
		},
	}, c.handleDrive)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_drive",
		Description: fmt.Sprintf("Drive up to %d commands in sequence; stops at the first blocked or unknown command", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"commands": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string", "enum": engine.Commands},
					"description": "Relative commands in order",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "What this sequence is meant to achieve",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset the scenario before driving",
				},
			},
			Required: []string{"session_id", "commands", "intent"},
		},
	}, c.handleBulkDrive)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset a session to the scenario's initial state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Let the autopilot observe, plan and drive a single tick",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "autodrive",
		Description: "Let the autopilot drive until the game ends, it finds no route, or the tick limit is reached",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"max_ticks": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Tick limit (default %d, max %d)", service.DefaultAutodriveTicks, service.MaxAutodriveTicks),
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAutodrive)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "plan",
		Description: "Preview the autopilot's route on what it has seen so far, without driving",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"strategy": map[string]any{
					"type":        "string",
					"enum":        []string{service.StrategyGoal, service.StrategyExplore},
					"description": "goal seeks keys and the finish; explore heads for unexplored road",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlan)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the simulator rules, tile legend and command semantics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell of the grid in world coordinates (x east, y north, (0,0) is the south-west corner)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"x": map[string]any{
					"type":        "integer",
					"description": "X coordinate, growing east",
				},
				"y": map[string]any{
					"type":        "integer",
					"description": "Y coordinate, growing north",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio runs the MCP server over stdin/stdout until the input closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
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
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil {
			if msg, ok := errResp["error"]; ok {
				return fmt.Errorf("%s", msg)
			}
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(id string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if name := request.GetString("config_name", ""); name != "" {
		body["config_id"] = name
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "running"
		if s.GameState != nil && s.GameState.GameOver {
			status = "finished"
			if s.GameState.Victory {
				status = "won"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleDrive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"command": command,
		"reset":   request.GetBool("reset", false),
	}

	var result service.DriveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/drive"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatDriveResult(&result)), nil
}

func (c *Client) handleBulkDrive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	commands := request.GetStringSlice("commands", nil)
	if len(commands) == 0 {
		return mcp.NewToolResultError("commands must be a non-empty list"), nil
	}

	body := map[string]any{
		"commands": commands,
		"reset":    request.GetBool("reset", false),
	}

	var result service.BulkDriveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/bulk-drive"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkDriveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.StepResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/step"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleAutodrive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	if ticks := request.GetInt("max_ticks", 0); ticks > 0 {
		body["max_ticks"] = ticks
	}

	var result service.AutodriveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/autodrive"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAutodriveResult(&result)), nil
}

func (c *Client) handlePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path := sessionPath(sessionID, "/plan")
	if strategy := request.GetString("strategy", ""); strategy != "" {
		path += "?strategy=" + url.QueryEscape(strategy)
	}

	var result service.PlanResult
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPlanResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Scenarios:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (id: %s)\n  %s\n  Grid: %dx%d, Health: %d, Keys: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Width, config.Height, config.MaxHealth, config.Keys)
	}
	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Grid Autopilot Simulator - Instructions

OBJECTIVE:
Reach the finish (F) after collecting every key. Keys lie on lava tiles (digits 1-9),
and every lava tile costs health. The car is destroyed when its health reaches 0.

COORDINATES:
World coordinates put (0,0) at the south-west corner; x grows east and y grows north.
Grid output prints the northern row first.

COMMANDS (relative to the car's heading):
• forward  - move one tile ahead
• backward - reverse one tile, keeping the heading
• left     - turn left and move one tile
• right    - turn right and move one tile
• none     - hold position for one tick (heals on a health tile)

LEGEND:
• C - the car
• W - wall (impassable)
• R - road
• S - start
• F - finish (locked until all keys are held)
• 1-9 - lava carrying that key; L - lava without a key
• H - health tile, restores health
• M - mud, the car gets stuck and the game ends
• G - grass

AUTOPILOT:
• step drives one tick: the autopilot merges what the camera sees, picks a mode
  (explore, seek, heal or brake) and follows a route that avoids damage.
• autodrive repeats step until victory, destruction, no route or the tick limit.
• plan previews the route for the goal or explore strategy without moving the car.

TIPS:
• Use bulk_drive for sequences rather than many single drive calls.
• When a command is blocked, the response shows the tile it tried to enter and the
  commands that would succeed from the current position.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pos := world.Coordinate{X: x, Y: y}
	tile, ok := state.TileAt(pos)
	if !ok {
		width := 0
		if len(state.Grid) > 0 {
			width = len(state.Grid[0])
		}
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid is %dx%d (x 0-%d, y 0-%d)",
			x, y, width, len(state.Grid), width-1, len(state.Grid)-1)), nil
	}

	char := engine.TileChar(tile)
	description := describeTile(tile)
	if pos == state.Position {
		description += fmt.Sprintf(" The car is here, facing %s.", state.Orientation)
	}

	return mcp.NewToolResultText(fmt.Sprintf(`Cell at (%d, %d):
Character: %s
Type: %s
Passable: %v
Description: %s`,
		x, y, char, tile, state.CanMoveTo(pos) && !tile.IsMud(), description)), nil
}

func describeTile(t world.Tile) string {
	switch {
	case t.IsLava() && t.Key > 0:
		return fmt.Sprintf("Lava carrying key %d. Entering costs health and collects the key.", t.Key)
	case t.IsLava():
		return "Lava. Entering costs health."
	case t.IsHealth():
		return fmt.Sprintf("Health tile restoring %d health per tick.", t.Heal)
	case t.IsMud():
		return "Mud. The car gets stuck and the game ends."
	case t.Trap == world.Grass:
		return "Grass. Safe to drive over."
	}
	switch t.Type {
	case world.Wall:
		return "Wall. Impassable."
	case world.Start:
		return "Start tile."
	case world.Finish:
		return "Finish. Opens once every key is held."
	case world.Road:
		return "Road. Safe to drive over."
	}
	return "Outside the drivable world."
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position: (%d,%d) facing %s | Health: %d/%d | Keys: %d/%d | Ticks: %d\n",
		state.Position.X, state.Position.Y, state.Orientation,
		state.Health, state.MaxHealth, len(state.Keys), state.TotalKeys, state.Ticks)
	if state.HealthRisk != "" {
		fmt.Fprintf(&b, "Health risk: %s\n", state.HealthRisk)
	}
	b.WriteString("\n")

	for row := range state.Grid {
		for col, tile := range state.Grid[row] {
			if (world.Coordinate{X: col, Y: len(state.Grid) - 1 - row}) == state.Position {
				b.WriteString("C")
				continue
			}
			b.WriteString(engine.TileChar(tile))
		}
		b.WriteString("\n")
	}

	if state.GameOver {
		if state.Victory {
			b.WriteString("\nVICTORY!")
		} else {
			b.WriteString("\nGAME OVER")
		}
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatStep(s service.StepInfo) string {
	status := "✗"
	if s.Success {
		status = "✓"
	}
	return fmt.Sprintf("%s (%d,%d)→(%d,%d) %s→%s tile=%s health=%d %s",
		s.Command, s.From.X, s.From.Y, s.To.X, s.To.Y,
		s.FromOrientation, s.ToOrientation, s.TileChar, s.HealthAfter, status)
}

func formatAttempt(a *service.AttemptInfo) string {
	passable := "impassable"
	if a.Passable {
		passable = "passable"
	}
	return fmt.Sprintf("Blocked: attempted (%d,%d) tile=%s %s (%s)", a.X, a.Y, a.TileChar, a.TileType, passable)
}

func formatDriveResult(result *service.DriveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Command executed\n")
	} else {
		b.WriteString("✗ Command failed\n")
	}
	if result.Step != nil {
		b.WriteString("Step: " + formatStep(*result.Step) + "\n")
	}
	if result.AttemptedTo != nil {
		b.WriteString(formatAttempt(result.AttemptedTo) + "\n")
	}
	writeEvents(&b, result.Events)
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func writeEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatBulkDriveResult(sessionID string, result *service.BulkDriveResult) string {
	var b strings.Builder

	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)
	fmt.Fprintf(&b, "Executed %d/%d commands\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d commands\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on command %d: %s [%s]\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}
	fmt.Fprintf(&b, "Health %d→%d, keys gained %d\n", result.StartHealth, result.EndHealth, result.KeysGained)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s\n", s.Idx, formatStep(s))
		}
	}
	if result.AttemptedTo != nil {
		b.WriteString("\n" + formatAttempt(result.AttemptedTo) + "\n")
	}
	if len(result.Events) > 0 {
		b.WriteString("\n")
		writeEvents(&b, result.Events)
	}
	if len(result.PossibleCommands) > 0 {
		b.WriteString("\nPossible commands: " + strings.Join(result.PossibleCommands, ",") + "\n")
	}
	if len(result.LocalView3x3) == 3 {
		b.WriteString("Local 3x3:\n" + strings.Join(result.LocalView3x3, "\n") + "\n")
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatStepResult(result *service.StepResult) string {
	d := result.Decision
	var b strings.Builder
	fmt.Fprintf(&b, "Autopilot mode: %s, command: %s\n", d.Mode, d.Command)
	if d.Thrashing {
		b.WriteString("Kept the previous route to avoid thrashing\n")
	}
	if d.Fallback {
		b.WriteString("No route found, holding position\n")
	}
	if len(d.Remaining) > 0 {
		b.WriteString("Remaining route: " + formatCoords(d.Remaining) + "\n")
	}
	if result.Drive != nil {
		b.WriteString("\n" + formatDriveResult(result.Drive))
	}
	return b.String()
}

func formatAutodriveResult(result *service.AutodriveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Autodrive ran %d ticks, stopped: %s\n", result.Ticks, result.StopReasonCode)
	if result.Thrashing > 0 {
		fmt.Fprintf(&b, "Thrashing guard kept a previous route %d times\n", result.Thrashing)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}
	for i, s := range result.Steps {
		mode := ""
		if i < len(result.Decisions) {
			mode = string(result.Decisions[i].Mode)
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, mode, formatStep(s))
	}
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatPlanResult(result *service.PlanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Strategy: %s\n", result.Strategy)
	if len(result.Goals) > 0 {
		b.WriteString("Goals: " + formatCoords(result.Goals) + "\n")
	}
	if len(result.Finals) > 0 {
		b.WriteString("Finals: " + formatCoords(result.Finals) + "\n")
	}
	if result.Plan.Empty() {
		b.WriteString("No route found\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Route (%d tiles, damage %d): %s\n",
		result.Plan.Path.Len(), result.Plan.Path.Damage, formatCoords(result.Plan.Path.Coords))
	dirs := make([]string, len(result.Plan.Directions))
	for i, d := range result.Plan.Directions {
		dirs[i] = string(d)
	}
	b.WriteString("Commands: " + strings.Join(dirs, ",") + "\n")
	return b.String()
}

func formatCoords(cs []world.Coordinate) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d)\n\n",
		history.Page, history.TotalPages, history.TotalMoves)
	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		driver := ""
		if move.Autopilot {
			driver = " [autopilot]"
		}
		fmt.Fprintf(&b, "#%d: %s (%d,%d)→(%d,%d) health=%d %s%s\n",
			move.MoveNumber, move.Action,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y,
			move.Health, status, driver)
	}
	return b.String()
}
