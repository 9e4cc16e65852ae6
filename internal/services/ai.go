package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var errNoCompletion = errors.New("assistant returned no completion")

// TaskSuggester is the chat completion call the assistant makes.
type TaskSuggester interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService drafts tasks for a manager from free text such as meeting notes.
type AIService struct {
	client TaskSuggester
}

// GeneratedTask is a drafted task. SuggestedAssigneeID is only set once the
// suggested username is matched to one of the manager's reportees.
type GeneratedTask struct {
	Title               string
	Description         string
	SuggestedAssignee   string
	SuggestedAssigneeID *uint64
}

func NewAIService(apiKey string) *AIService {
	return &AIService{client: openai.NewClient(apiKey)}
}

// NewAIServiceWithClient wires an existing client, used by tests.
func NewAIServiceWithClient(client TaskSuggester) *AIService {
	return &AIService{client: client}
}

const draftInstructions = `You turn a manager's notes into tasks for their team.
Every task starts in TODO and is tracked until COMPLETED, so each one must be a single concrete piece of work.
Reply with a JSON object of the form {"tasks": [{"title": "...", "description": "...", "assignee": "..."}]}.
Titles are short and at least three characters long.
Set "assignee" only to one of the listed reportee usernames, and leave it empty when no reportee clearly fits.
Reply with {"tasks": []} when the notes contain no work.`

// DraftTasks asks the model for tasks found in notes. reportees are the
// usernames it may propose as assignees.
func (s *AIService) DraftTasks(ctx context.Context, notes string, reportees []string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("assistant client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: draftInstructions},
			{Role: openai.ChatMessageRoleUser, Content: draftRequest(notes, reportees)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errNoCompletion
	}

	return parseDraft(resp.Choices[0].Message.Content)
}

func draftRequest(notes string, reportees []string) string {
	var b strings.Builder
	b.WriteString("Reportees: ")
	if len(reportees) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(reportees, ", "))
	}
	b.WriteString("\n\nNotes:\n")
	b.WriteString(notes)
	return b.String()
}

type draftReply struct {
	Tasks []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Assignee    string `json:"assignee"`
	} `json:"tasks"`
}

// parseDraft accepts the JSON object reply, tolerating a markdown code fence
// around it.
func parseDraft(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSpace(strings.Trim(content, "`"))

	var reply draftReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse assistant reply: %w", err)
	}

	tasks := make([]GeneratedTask, len(reply.Tasks))
	for i, t := range reply.Tasks {
		tasks[i] = GeneratedTask{
			Title:             t.Title,
			Description:       t.Description,
			SuggestedAssignee: strings.TrimSpace(t.Assignee),
		}
	}
	return tasks, nil
}
