package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/cct/internal/task"
)

var (
	// toolMu serializes tool calls against the singleton session.
	toolMu sync.Mutex

	// activeSession is the singleton task session (one per stdio process).
	activeSession *TaskSession

	// taskFile is the path to the task options YAML file, set by main.
	taskFile string

	// defaultSeed seeds sessions started without a seed argument.
	defaultSeed int64

	// schedule overrides the runner's timer; nil uses real delays.
	schedule func(d time.Duration, fire func())
)

// SetTaskFile sets the path to the task options YAML file.
func SetTaskFile(path string) {
	taskFile = path
}

// SetSeed sets the seed used when start_task is called without one.
func SetSeed(seed int64) {
	defaultSeed = seed
}

// RegisterTools adds all task tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startTaskTool(), handleStartTask)
	s.AddTool(clickCardTool(), handleClickCard)
	s.AddTool(stopRoundTool(), handleStopRound)
	s.AddTool(chooseTool(), handleChoose)
	s.AddTool(getTaskStateTool(), handleGetTaskState)
}

// --- Tool definitions ---

func startTaskTool() mcp.Tool {
	return mcp.NewTool("start_task",
		mcp.WithDescription("Start a new Columbia Card Task session. Returns the first screen. "+
			"Each round shows a grid of face-down cards: gain cards add points, a loss card ends the round with a penalty. "+
			"Stop at any time to keep the round's points."),
		mcp.WithNumber("seed", mcp.Description("Optional RNG seed for loss card placement (0 for random)")),
	)
}

func clickCardTool() mcp.Tool {
	return mcp.NewTool("click_card",
		mcp.WithDescription("Turn over a face-down card on the current card grid."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the card in the grid")),
	)
}

func stopRoundTool() mcp.Tool {
	return mcp.NewTool("stop_round",
		mcp.WithDescription("Stop the current round and keep its points."),
	)
}

func chooseTool() mcp.Tool {
	return mcp.NewTool("choose",
		mcp.WithDescription("Press a button on an instructions, round info, or results screen. Use this when the view lists choices."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the view's choices")),
	)
}

func getTaskStateTool() mcp.Tool {
	return mcp.NewTool("get_task_state",
		mcp.WithDescription("Get the current screen and accumulated events without submitting an input. Read-only."),
	)
}

// --- Tool handlers ---

func handleStartTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toolMu.Lock()
	defer toolMu.Unlock()

	if activeSession != nil && !activeSession.isDone() {
		return mcp.NewToolResultError("A task is already running. Only one task at a time is supported."), nil
	}

	seed := int64(request.GetInt("seed", 0))
	if seed == 0 {
		seed = defaultSeed
	}

	sess, err := NewTaskSession(taskFile, seed, schedule)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start task: %v", err), nil
	}
	activeSession = sess

	return respond(ctx, sess)
}

// activeGrid returns the running session and its card grid, or an error
// result when no card grid awaits input.
func activeGrid() (*TaskSession, *task.View, *mcp.CallToolResult) {
	sess, view, errResult := activeView()
	if errResult != nil {
		return nil, nil, errResult
	}
	if view.Grid == nil {
		return nil, nil, mcp.NewToolResultErrorf("The current screen (%s) has no card grid. Use choose.", view.Name)
	}
	return sess, view, nil
}

func activeView() (*TaskSession, *task.View, *mcp.CallToolResult) {
	if activeSession == nil {
		return nil, nil, mcp.NewToolResultError("No task is running. Use start_task first.")
	}
	sess := activeSession
	view := sess.currentView()
	if view == nil || sess.isDone() {
		return nil, nil, mcp.NewToolResultError("The task is over. Use start_task to begin a new one.")
	}
	if !view.AwaitingInput {
		return nil, nil, mcp.NewToolResultError("The screen is not accepting input yet. Use get_task_state.")
	}
	return sess, view, nil
}

func handleClickCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toolMu.Lock()
	defer toolMu.Unlock()

	sess, view, errResult := activeGrid()
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(view.Grid.Cards) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(view.Grid.Cards)-1), nil
	}
	if view.Grid.Cards[index].Face != task.FaceDown {
		return mcp.NewToolResultErrorf("Card %d is already face up.", index), nil
	}

	return submitAndRespond(ctx, sess, task.Click(task.CardTarget(index)))
}

func handleStopRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toolMu.Lock()
	defer toolMu.Unlock()

	sess, _, errResult := activeGrid()
	if errResult != nil {
		return errResult, nil
	}
	return submitAndRespond(ctx, sess, task.Click(task.StopTarget))
}

func handleChoose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toolMu.Lock()
	defer toolMu.Unlock()

	sess, view, errResult := activeView()
	if errResult != nil {
		return errResult, nil
	}
	if len(view.Choices) == 0 {
		return mcp.NewToolResultError("The current screen has no choices. Use click_card or stop_round."), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(view.Choices) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(view.Choices)-1), nil
	}

	return submitAndRespond(ctx, sess, task.Choose(index))
}

func handleGetTaskState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toolMu.Lock()
	defer toolMu.Unlock()

	if activeSession == nil {
		return mcp.NewToolResultError("No task is running. Use start_task first."), nil
	}
	sess := activeSession
	return mcp.NewToolResultText(respondJSON(sess.response(sess.currentView()))), nil
}

func submitAndRespond(ctx context.Context, sess *TaskSession, in task.Input) (*mcp.CallToolResult, error) {
	if err := sess.submit(ctx, in); err != nil {
		return mcp.NewToolResultErrorf("Could not submit input: %v", err), nil
	}
	return respond(ctx, sess)
}

func respond(ctx context.Context, sess *TaskSession) (*mcp.CallToolResult, error) {
	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next screen: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
