// Package mcp implements the stdio MCP tool server for AI agent
// integration. It exposes the idea/task operations as callable tools.
package mcp

import (
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverVersion = "1.0.0"

// Server exposes the task manager as MCP tools over stdio.
type Server struct {
	store       store.EntityStore
	taskService *service.TaskService
	gate        service.ApprovalGate
}

// NewServer creates a Server. A nil gate defaults to allow-all.
func NewServer(st store.EntityStore, gate service.ApprovalGate, opts ...service.Option) *Server {
	if gate == nil {
		gate = service.AllowAllGate{}
	}
	return &Server{
		store:       st,
		taskService: service.NewTaskService(st, opts...),
		gate:        gate,
	}
}

// Run serves the tools over stdio until stdin closes.
func (s *Server) Run() error {
	return server.ServeStdio(s.build())
}

func (s *Server) build() *server.MCPServer {
	srv := server.NewMCPServer("ideabank", serverVersion,
		server.WithToolCapabilities(false),
	)

	srv.AddTool(mcp.NewTool("idea_get",
		mcp.WithDescription("Get an idea with its epics and task statistics (status/priority/type breakdowns and completion percentage)."),
		mcp.WithString("idea_id", mcp.Required(), mcp.Description("Idea ID, e.g. IDEA-1")),
	), s.handleIdeaGet)

	srv.AddTool(mcp.NewTool("task_get",
		mcp.WithDescription("Get a single task with its dependencies and full progress history."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID, e.g. TSK-5")),
	), s.handleTaskGet)

	srv.AddTool(mcp.NewTool("task_list",
		mcp.WithDescription("List tasks, optionally filtered by epic, status, priority, or type."),
		mcp.WithString("epic_id", mcp.Description("Filter by owning epic ID")),
		mcp.WithString("status", mcp.Description("Filter by status"),
			mcp.Enum("pending", "in-progress", "done", "blocked", "deferred")),
		mcp.WithString("priority", mcp.Description("Filter by priority"),
			mcp.Enum("low", "medium", "high")),
		mcp.WithString("type", mcp.Description("Filter by task type"),
			mcp.Enum("feature", "bug", "research")),
	), s.handleTaskList)

	srv.AddTool(mcp.NewTool("task_create",
		mcp.WithDescription("Create a new pending task under an existing epic."),
		mcp.WithString("epic_id", mcp.Required(), mcp.Description("Owning epic ID")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("type", mcp.Description("Task type (default feature)"),
			mcp.Enum("feature", "bug", "research")),
		mcp.WithString("priority", mcp.Description("Task priority (default medium)"),
			mcp.Enum("low", "medium", "high")),
		mcp.WithArray("dependencies", mcp.Description("Task IDs this task depends on"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.handleTaskCreate)

	srv.AddTool(mcp.NewTool("task_update",
		mcp.WithDescription("Update a task. Only provided fields change; equal values are ignored. "+
			"An explicitly empty dependencies array clears all dependencies. "+
			"A progress note, when given, is always appended to the task's history."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to update")),
		mcp.WithString("status", mcp.Description("New status"),
			mcp.Enum("pending", "in-progress", "done", "blocked", "deferred")),
		mcp.WithString("priority", mcp.Description("New priority"),
			mcp.Enum("low", "medium", "high")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithArray("dependencies", mcp.Description("Full replacement dependency set; [] clears all"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("progress_note", mcp.Description("Progress note text to append")),
		mcp.WithString("progress_type", mcp.Description("Progress note type (default update)"),
			mcp.Enum("update", "comment", "blocker", "completion")),
	), s.handleTaskUpdate)

	return srv
}
