package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/suite"
)

type rejectingGate struct{}

func (rejectingGate) Approve(context.Context, string, service.TaskUpdate) error {
	return errors.New("change requires prior approval")
}

type MCPHandlersTestSuite struct {
	suite.Suite
	store  *store.Memory
	server *Server
}

func (s *MCPHandlersTestSuite) SetupTest() {
	s.store = store.NewMemory()
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	s.server = NewServer(s.store, nil, service.WithClock(func() time.Time { return now }))

	s.store.PutIdea(&domain.Idea{
		ID:       "idea-auth",
		Title:    "Unified Login",
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityHigh,
		EpicIDs:  []string{"epic-sso"},
	})
	s.store.PutEpic(&domain.Epic{
		ID:       "epic-sso",
		IdeaID:   "idea-auth",
		Title:    "SSO Integration",
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityHigh,
	})
	s.store.PutTask(&domain.Task{
		ID:       "TSK-1",
		EpicID:   "epic-sso",
		Title:    "Add OAuth client",
		Type:     domain.TaskTypeFeature,
		Status:   domain.StatusPending,
		Priority: domain.PriorityHigh,
	})
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// textOf extracts the text payload of a tool result.
func (s *MCPHandlersTestSuite) textOf(result *mcp.CallToolResult) string {
	s.Require().NotEmpty(result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	s.Require().True(ok, "expected text content")
	return text.Text
}

func (s *MCPHandlersTestSuite) TestTaskGet() {
	result, err := s.server.handleTaskGet(context.Background(), callRequest("task_get", map[string]any{
		"task_id": "TSK-1",
	}))
	s.Require().NoError(err)
	s.Require().False(result.IsError)

	var got taskItem
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &got))
	s.Equal("TSK-1", got.ID)
	s.Equal("Add OAuth client", got.Title)
}

func (s *MCPHandlersTestSuite) TestTaskGet_NotFound() {
	result, err := s.server.handleTaskGet(context.Background(), callRequest("task_get", map[string]any{
		"task_id": "TSK-404",
	}))
	s.Require().NoError(err)
	s.Require().True(result.IsError)

	var toolErr ToolError
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &toolErr))
	s.Equal(ErrNotFound, toolErr.Code)
}

func (s *MCPHandlersTestSuite) TestTaskUpdate_StartWork() {
	result, err := s.server.handleTaskUpdate(context.Background(), callRequest("task_update", map[string]any{
		"task_id":       "TSK-1",
		"status":        "in-progress",
		"progress_note": "Starting work",
	}))
	s.Require().NoError(err)
	s.Require().False(result.IsError)

	var got struct {
		Epic    string   `json:"epic"`
		Idea    string   `json:"idea"`
		Changes []string `json:"changes"`
	}
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &got))
	s.Equal("SSO Integration", got.Epic)
	s.Equal("Unified Login", got.Idea)
	s.Equal([]string{
		"Status: pending → in-progress",
		`Added progress note: "Starting work"`,
	}, got.Changes)
}

func (s *MCPHandlersTestSuite) TestTaskUpdate_NonStringArgument() {
	result, err := s.server.handleTaskUpdate(context.Background(), callRequest("task_update", map[string]any{
		"task_id": "TSK-1",
		"status":  123,
	}))
	s.Require().NoError(err)
	s.Require().True(result.IsError, "a malformed value must fail, not read as omitted")

	var toolErr ToolError
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &toolErr))
	s.Equal(ErrValidation, toolErr.Code)

	// Nothing changed on the stored task.
	task, loadErr := s.store.LoadTask(context.Background(), "TSK-1")
	s.Require().NoError(loadErr)
	s.Equal(domain.StatusPending, task.Status)
}

func (s *MCPHandlersTestSuite) TestTaskUpdate_ValidationError() {
	result, err := s.server.handleTaskUpdate(context.Background(), callRequest("task_update", map[string]any{
		"task_id": "TSK-1",
		"status":  "cancelled",
	}))
	s.Require().NoError(err)
	s.Require().True(result.IsError)

	var toolErr ToolError
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &toolErr))
	s.Equal(ErrValidation, toolErr.Code)
}

func (s *MCPHandlersTestSuite) TestTaskUpdate_GateRejection() {
	gated := NewServer(s.store, rejectingGate{})

	result, err := gated.handleTaskUpdate(context.Background(), callRequest("task_update", map[string]any{
		"task_id":  "TSK-1",
		"priority": "low",
	}))
	s.Require().NoError(err)
	s.Require().True(result.IsError)

	var toolErr ToolError
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &toolErr))
	s.Equal(ErrRejected, toolErr.Code)

	// Starting work is exempt from the gate.
	result, err = gated.handleTaskUpdate(context.Background(), callRequest("task_update", map[string]any{
		"task_id": "TSK-1",
		"status":  "in-progress",
	}))
	s.Require().NoError(err)
	s.False(result.IsError)
}

func (s *MCPHandlersTestSuite) TestTaskCreate() {
	result, err := s.server.handleTaskCreate(context.Background(), callRequest("task_create", map[string]any{
		"epic_id": "epic-sso",
		"title":   "Audit logout paths",
		"type":    "bug",
	}))
	s.Require().NoError(err)
	s.Require().False(result.IsError)

	var got taskItem
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &got))
	s.Equal("TSK-2", got.ID)
	s.Equal("bug", got.Type)
	s.Equal("pending", got.Status)
}

func (s *MCPHandlersTestSuite) TestTaskList_Filter() {
	result, err := s.server.handleTaskList(context.Background(), callRequest("task_list", map[string]any{
		"epic_id": "epic-sso",
		"status":  "pending",
	}))
	s.Require().NoError(err)
	s.Require().False(result.IsError)

	var got []taskItem
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &got))
	s.Require().Len(got, 1)
	s.Equal("TSK-1", got[0].ID)
}

func (s *MCPHandlersTestSuite) TestIdeaGet() {
	result, err := s.server.handleIdeaGet(context.Background(), callRequest("idea_get", map[string]any{
		"idea_id": "idea-auth",
	}))
	s.Require().NoError(err)
	s.Require().False(result.IsError)

	var got struct {
		Title    string         `json:"title"`
		ByStatus map[string]int `json:"by_status"`
		Total    int            `json:"total"`
	}
	s.Require().NoError(json.Unmarshal([]byte(s.textOf(result)), &got))
	s.Equal("Unified Login", got.Title)
	s.Equal(map[string]int{"pending": 1}, got.ByStatus)
	s.Equal(1, got.Total)
}

func TestMCPHandlersSuite(t *testing.T) {
	suite.Run(t, new(MCPHandlersTestSuite))
}
