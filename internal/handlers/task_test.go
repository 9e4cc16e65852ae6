package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// TaskHandlerTestSuite drives the task routes through the full router
type TaskHandlerTestSuite struct {
	suite.Suite
	env        *apiTestEnv
	manager    *http.Cookie
	reportee   *http.Cookie
	reporteeID uint64
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = setupAPITestEnv(suite.T())
	suite.manager = suite.env.signup(suite.T(), "Acme", "alice")
	suite.reporteeID, suite.reportee = suite.env.addReportee(suite.T(), suite.manager, "bob")
}

func (suite *TaskHandlerTestSuite) do(method, path string, body any, cookie *http.Cookie) (int, []byte) {
	w := suite.env.do(suite.T(), method, path, body, cookie)
	return w.Code, w.Body.Bytes()
}

func taskPath(id uint64, suffix string) string {
	return fmt.Sprintf("/api/tasks/%d%s", id, suffix)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{
		"title":          "Write report",
		"description":    "Quarterly numbers",
		"assigned_to_id": suite.reporteeID,
	}, suite.manager)
	suite.Equal(http.StatusCreated, w.Code)

	task := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("Write report", task.Title)
	suite.Equal(models.TaskStatusDev, task.Status)
	suite.Require().NotNil(task.AssignedToID)
	suite.Equal(suite.reporteeID, *task.AssignedToID)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Validation() {
	code, _ := suite.do(http.MethodPost, "/api/tasks", map[string]any{"title": "ab"}, suite.manager)
	suite.Equal(http.StatusBadRequest, code)

	code, _ = suite.do(http.MethodPost, "/api/tasks", map[string]any{"description": "no title"}, suite.manager)
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_ReporteeForbidden() {
	code, _ := suite.do(http.MethodPost, "/api/tasks", map[string]any{"title": "Sneaky task"}, suite.reportee)
	suite.Equal(http.StatusForbidden, code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Unauthenticated() {
	code, _ := suite.do(http.MethodGet, "/api/tasks", nil, nil)
	suite.Equal(http.StatusUnauthorized, code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_VisibilityAndFilters() {
	first := suite.env.createTask(suite.T(), suite.manager, "First task", &suite.reporteeID)
	suite.env.createTask(suite.T(), suite.manager, "Second task", nil)
	suite.env.createTask(suite.T(), suite.manager, "Third task", nil)

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks?page=1&limit=2", nil, suite.manager)
	suite.Equal(http.StatusOK, w.Code)
	page := decode[dto.TaskListResponse](suite.T(), w)
	suite.Len(page.Tasks, 2)
	suite.Equal(int64(3), page.TotalCount)
	suite.Equal(2, page.TotalPages)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks", nil, suite.reportee)
	suite.Equal(http.StatusOK, w.Code)
	mine := decode[dto.TaskListResponse](suite.T(), w)
	suite.Require().Len(mine.Tasks, 1)
	suite.Equal(first, mine.Tasks[0].ID)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks?status=COMPLETED", nil, suite.manager)
	suite.Equal(http.StatusOK, w.Code)
	suite.Empty(decode[dto.TaskListResponse](suite.T(), w).Tasks)

	code, _ := suite.do(http.MethodGet, "/api/tasks?status=DONE", nil, suite.manager)
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_InvalidID() {
	code, _ := suite.do(http.MethodGet, "/api/tasks/abc", nil, suite.manager)
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_HiddenAcrossCompanies() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Internal task", nil)
	outsider := suite.env.signup(suite.T(), "Globex", "mallory")

	code, _ := suite.do(http.MethodGet, taskPath(taskID, ""), nil, outsider)
	suite.Equal(http.StatusNotFound, code)

	code, _ = suite.do(http.MethodPatch, taskPath(taskID, "/status"), map[string]string{"status": "TEST"}, outsider)
	suite.Equal(http.StatusNotFound, code)

	code, _ = suite.do(http.MethodDelete, taskPath(taskID, ""), nil, outsider)
	suite.Equal(http.StatusNotFound, code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_UnassignedReporteeSeesNothing() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Not yours", nil)

	code, _ := suite.do(http.MethodGet, taskPath(taskID, ""), nil, suite.reportee)
	suite.Equal(http.StatusNotFound, code)
}

func (suite *TaskHandlerTestSuite) TestAssignTask_Success() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Assign me", nil)

	w := suite.env.do(suite.T(), http.MethodPatch, taskPath(taskID, "/assign"), map[string]any{"assigned_to_id": suite.reporteeID}, suite.manager)
	suite.Equal(http.StatusOK, w.Code)

	task := decode[dto.TaskDTO](suite.T(), w)
	suite.Require().NotNil(task.AssignedToID)
	suite.Equal(suite.reporteeID, *task.AssignedToID)
}

func (suite *TaskHandlerTestSuite) TestAssignTask_CrossCompanyReportee() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Assign me", nil)
	outsideManager := suite.env.signup(suite.T(), "Globex", "mallory")
	outsiderID, _ := suite.env.addReportee(suite.T(), outsideManager, "eve")

	w := suite.env.do(suite.T(), http.MethodPatch, taskPath(taskID, "/assign"), map[string]any{"assigned_to_id": outsiderID}, suite.manager)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_ASSIGNEE", errorCode(suite.T(), w))
}

func (suite *TaskHandlerTestSuite) TestAssignTask_ManagerIsNotAnAssignee() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Assign me", nil)
	principal, err := suite.env.codec.Decode(suite.manager.Value)
	suite.Require().NoError(err)

	code, _ := suite.do(http.MethodPatch, taskPath(taskID, "/assign"), map[string]any{"assigned_to_id": principal.SubjectID}, suite.manager)
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestSelfUpdate_CompleteOnce() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Finish me", &suite.reporteeID)

	w := suite.env.do(suite.T(), http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "COMPLETED"}, suite.reportee)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.TaskStatusCompleted, decode[dto.TaskDTO](suite.T(), w).Status)

	w = suite.env.do(suite.T(), http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "COMPLETED"}, suite.reportee)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("ALREADY_COMPLETED", errorCode(suite.T(), w))
}

func (suite *TaskHandlerTestSuite) TestSelfUpdate_OnlyCompletionAllowed() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Finish me", &suite.reporteeID)

	w := suite.env.do(suite.T(), http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "TEST"}, suite.reportee)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("ILLEGAL_TRANSITION", errorCode(suite.T(), w))

	code, _ := suite.do(http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "DONE"}, suite.reportee)
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestSelfUpdate_ManagerUsesOtherRoute() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Finish me", &suite.reporteeID)

	code, _ := suite.do(http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "COMPLETED"}, suite.manager)
	suite.Equal(http.StatusForbidden, code)

	code, _ = suite.do(http.MethodPatch, taskPath(taskID, "/status"), map[string]string{"status": "COMPLETED"}, suite.reportee)
	suite.Equal(http.StatusForbidden, code)
}

func (suite *TaskHandlerTestSuite) TestManagerUpdate_ReopensCompletedTask() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Reopen me", &suite.reporteeID)

	code, _ := suite.do(http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "COMPLETED"}, suite.reportee)
	suite.Equal(http.StatusOK, code)

	w := suite.env.do(suite.T(), http.MethodPatch, taskPath(taskID, "/status"), map[string]string{"status": "DEV"}, suite.manager)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.TaskStatusDev, decode[dto.TaskDTO](suite.T(), w).Status)
}

func (suite *TaskHandlerTestSuite) TestManagerUpdate_InvalidStatus() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Status me", nil)

	code, _ := suite.do(http.MethodPatch, taskPath(taskID, "/status"), map[string]string{"status": "ARCHIVED"}, suite.manager)
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_HidesTask() {
	taskID := suite.env.createTask(suite.T(), suite.manager, "Delete me", &suite.reporteeID)

	code, _ := suite.do(http.MethodDelete, taskPath(taskID, ""), nil, suite.manager)
	suite.Equal(http.StatusOK, code)

	code, _ = suite.do(http.MethodGet, taskPath(taskID, ""), nil, suite.manager)
	suite.Equal(http.StatusNotFound, code)

	code, _ = suite.do(http.MethodDelete, taskPath(taskID, ""), nil, suite.manager)
	suite.Equal(http.StatusNotFound, code)

	code, _ = suite.do(http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "COMPLETED"}, suite.reportee)
	suite.Equal(http.StatusNotFound, code)

	var row models.Task
	suite.Require().NoError(suite.env.db.First(&row, taskID).Error)
	suite.True(row.IsDeleted)
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	code, _ := suite.do(http.MethodPost, "/api/tasks/generate", map[string]string{"text": "Plan the product launch next week"}, suite.manager)
	suite.Equal(http.StatusServiceUnavailable, code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

type cannedSuggester struct {
	content string
}

func (s cannedSuggester) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.content}},
		},
	}, nil
}

func TestTaskHandler_GenerateTasks(t *testing.T) {
	ai := services.NewAIServiceWithClient(cannedSuggester{
		content: `{"tasks":[{"title":"Book venue","description":"Call three venues","assignee":"bob"},{"title":"x","description":"too short"}]}`,
	})
	env := setupAPITestEnv(t, withAI(ai))
	manager := env.signup(t, "Acme", "alice")
	bobID, _ := env.addReportee(t, manager, "bob")

	w := env.do(t, http.MethodPost, "/api/tasks/generate", map[string]string{"text": "We need a venue for the offsite"}, manager)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	response := decode[struct {
		Tasks []dto.GeneratedTaskDTO `json:"tasks"`
		Count int                    `json:"count"`
	}](t, w)
	if response.Count != 1 || response.Tasks[0].Title != "Book venue" {
		t.Fatalf("unexpected suggestions: %+v", response)
	}
	if id := response.Tasks[0].SuggestedAssigneeID; id == nil || *id != bobID {
		t.Fatalf("expected bob (%d) as suggested assignee, got %v", bobID, id)
	}
}

func TestTaskHandler_StrictCompletion(t *testing.T) {
	env := setupAPITestEnv(t, withStrictCompletion())
	manager := env.signup(t, "Acme", "alice")
	reporteeID, reportee := env.addReportee(t, manager, "bob")
	taskID := env.createTask(t, manager, "Close me", &reporteeID)

	w := env.do(t, http.MethodPatch, taskPath(taskID, "/status/self"), map[string]string{"status": "COMPLETED"}, reportee)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodPatch, taskPath(taskID, "/status"), map[string]string{"status": "DEV"}, manager)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}
