package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/handler"
	"github.com/ideabank/server/internal/handler/dto"
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/store"
)

// denyAllGate rejects every non-exempt update.
type denyAllGate struct{}

func (denyAllGate) Approve(context.Context, string, service.TaskUpdate) error {
	return errors.New("change requires prior approval")
}

type HandlerTestSuite struct {
	suite.Suite
	store *store.Memory
	mux   *http.ServeMux
}

func (s *HandlerTestSuite) SetupTest() {
	s.store = store.NewMemory()

	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	h := handler.New(s.store, nil, service.WithClock(func() time.Time { return now }))

	s.mux = http.NewServeMux()
	h.RegisterRoutes(s.mux)

	s.store.PutIdea(&domain.Idea{
		ID:       "idea-auth",
		Title:    "Unified Login",
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityHigh,
		EpicIDs:  []string{"epic-sso", "epic-gone"},
	})
	s.store.PutEpic(&domain.Epic{
		ID:       "epic-sso",
		IdeaID:   "idea-auth",
		Title:    "SSO Integration",
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityHigh,
	})

	for _, t := range []*domain.Task{
		{ID: "TSK-1", EpicID: "epic-sso", Title: "Add OAuth client", Type: domain.TaskTypeFeature, Status: domain.StatusDone, Priority: domain.PriorityHigh},
		{ID: "TSK-2", EpicID: "epic-sso", Title: "Token refresh flow", Type: domain.TaskTypeFeature, Status: domain.StatusPending, Priority: domain.PriorityMedium, Dependencies: []string{"TSK-1"}},
	} {
		t.CreatedAt = now.Add(-24 * time.Hour)
		t.UpdatedAt = now.Add(-24 * time.Hour)
		s.store.PutTask(t)
	}
}

func (s *HandlerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(dst))
}

func (s *HandlerTestSuite) TestUpdateTask_Success() {
	rec := s.request(http.MethodPatch, "/api/v1/tasks/TSK-2", map[string]any{
		"status":        "in-progress",
		"progress_note": "Starting work",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp dto.UpdateTaskResponse
	s.decode(rec, &resp)
	s.Equal("in-progress", resp.Task.Status)
	s.Equal("SSO Integration", resp.Epic)
	s.Equal("Unified Login", resp.Idea)
	s.Equal([]string{
		"Status: pending → in-progress",
		`Added progress note: "Starting work"`,
	}, resp.Changes)
	s.Require().Len(resp.Task.Notes, 1)
	s.Equal("Starting work", resp.Task.Notes[0].Content)
}

func (s *HandlerTestSuite) TestUpdateTask_NotFound() {
	rec := s.request(http.MethodPatch, "/api/v1/tasks/TSK-404", map[string]any{
		"status": "done",
	})
	s.Require().Equal(http.StatusNotFound, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("TASK_NOT_FOUND", resp.Error.Code)
}

func (s *HandlerTestSuite) TestUpdateTask_ValidationError() {
	rec := s.request(http.MethodPatch, "/api/v1/tasks/TSK-2", map[string]any{
		"status":   "cancelled",
		"priority": "urgent",
	})
	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
}

func (s *HandlerTestSuite) TestUpdateTask_DependencyNotFound() {
	rec := s.request(http.MethodPatch, "/api/v1/tasks/TSK-2", map[string]any{
		"dependencies": []string{"TSK-404"},
	})
	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("DEPENDENCY_NOT_FOUND", resp.Error.Code)
}

func (s *HandlerTestSuite) TestUpdateTask_CyclicDependency() {
	rec := s.request(http.MethodPatch, "/api/v1/tasks/TSK-1", map[string]any{
		"dependencies": []string{"TSK-2"},
	})
	s.Require().Equal(http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("CYCLIC_DEPENDENCY", resp.Error.Code)
}

func (s *HandlerTestSuite) TestUpdateTask_InvalidJSON() {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/tasks/TSK-2", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestUpdateTask_GateRejection() {
	mux := http.NewServeMux()
	handler.New(s.store, denyAllGate{}).RegisterRoutes(mux)

	// A priority edit is subject to the gate and gets rejected.
	body, _ := json.Marshal(map[string]any{"priority": "high"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/tasks/TSK-2", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusForbidden, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("UPDATE_REJECTED", resp.Error.Code)

	// A pure start-work transition bypasses the gate even with a note.
	body, _ = json.Marshal(map[string]any{
		"status":        "in-progress",
		"progress_note": "picking this up",
	})
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/tasks/TSK-2", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestCreateTask() {
	rec := s.request(http.MethodPost, "/api/v1/tasks", map[string]any{
		"epic_id": "epic-sso",
		"title":   "Audit logout paths",
		"type":    "bug",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var resp dto.TaskDetail
	s.decode(rec, &resp)
	s.Equal("TSK-3", resp.ID)
	s.Equal("bug", resp.Type)
	s.Equal("pending", resp.Status)
	s.Equal("medium", resp.Priority)
}

func (s *HandlerTestSuite) TestCreateTask_EpicNotFound() {
	rec := s.request(http.MethodPost, "/api/v1/tasks", map[string]any{
		"epic_id": "epic-gone",
		"title":   "Doomed",
	})
	s.Require().Equal(http.StatusNotFound, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("EPIC_NOT_FOUND", resp.Error.Code)
}

func (s *HandlerTestSuite) TestGetTask() {
	rec := s.request(http.MethodGet, "/api/v1/tasks/TSK-2", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp dto.TaskDetail
	s.decode(rec, &resp)
	s.Equal("TSK-2", resp.ID)
	s.Equal([]string{"TSK-1"}, resp.Dependencies)
}

func (s *HandlerTestSuite) TestListTasks_Filters() {
	rec := s.request(http.MethodGet, "/api/v1/tasks?epic=epic-sso&status=pending", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp dto.TasksListResponse
	s.decode(rec, &resp)
	s.Equal(1, resp.Total)
	s.Require().Len(resp.Tasks, 1)
	s.Equal("TSK-2", resp.Tasks[0].ID)
}

func (s *HandlerTestSuite) TestListTasks_InvalidFilter() {
	rec := s.request(http.MethodGet, "/api/v1/tasks?status=bogus", nil)
	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerTestSuite) TestGetIdea() {
	rec := s.request(http.MethodGet, "/api/v1/ideas/idea-auth", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp dto.IdeaDetailResponse
	s.decode(rec, &resp)
	s.Equal("Unified Login", resp.Title)

	// The dangling epic-gone reference is skipped, not fatal.
	s.Require().Len(resp.Epics, 1)
	s.Equal("SSO Integration", resp.Epics[0].Title)
	s.Equal(2, resp.Epics[0].Tasks)
	s.Equal(1, resp.Epics[0].Done)

	s.Equal(map[string]int{"done": 1, "pending": 1}, resp.Stats.ByStatus)
	s.Equal(2, resp.Stats.Total)
	s.Equal(1, resp.Stats.Done)
	s.Equal(50, resp.Stats.Percent)
}

func (s *HandlerTestSuite) TestGetIdea_NotFound() {
	rec := s.request(http.MethodGet, "/api/v1/ideas/idea-404", nil)
	s.Require().Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestHealthz() {
	rec := s.request(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestSkillMd() {
	rec := s.request(http.MethodGet, "/skill.md", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	s.NotEmpty(rec.Body.String())
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
