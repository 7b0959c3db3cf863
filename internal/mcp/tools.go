package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// taskReminderText is the exact reminder injected when a task_id is
// supplied; the agent is expected to go check the task's status.
const taskReminderText = "[Timer expired] Background task %s may be complete. Check its status."

// queueUnavailableText is returned while the conversation loop that
// owns the queue has not been constructed yet.
const queueUnavailableText = "Message queue not available yet"

// ChangeTitleInput defines the input schema for change_title.
type ChangeTitleInput struct {
	Title string `json:"title" jsonschema:"New human-readable title for the session"`
}

// InjectReminderInput defines the input schema for inject_reminder.
type InjectReminderInput struct {
	Message string `json:"message" jsonschema:"Reminder text to inject into the conversation"`
	TaskID  string `json:"task_id,omitempty" jsonschema:"Background task identifier; when set a fixed timer-expiry reminder referencing it replaces message"`
}

// registerTools registers the tool set. change_title is always
// present; inject_reminder only when a queue accessor was supplied.
func (s *Server) registerTools() error {
	changeTitleSchema, err := jsonschema.For[ChangeTitleInput](nil)
	if err != nil {
		return fmt.Errorf("schema for change_title: %w", err)
	}
	if err := s.trackTool("change_title"); err != nil {
		return err
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "change_title",
		Description: "Change the human-readable title of the current session.",
		InputSchema: changeTitleSchema,
	}, s.ChangeTitle)

	if s.getQueue != nil {
		injectReminderSchema, err := jsonschema.For[InjectReminderInput](nil)
		if err != nil {
			return fmt.Errorf("schema for inject_reminder: %w", err)
		}
		if err := s.trackTool("inject_reminder"); err != nil {
			return err
		}
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "inject_reminder",
			Description: "Inject an asynchronous reminder message into the agent's conversation queue.",
			InputSchema: injectReminderSchema,
		}, s.InjectReminder)
	}

	return nil
}

// ChangeTitle handles the change_title MCP tool call. Notifier
// failures are swallowed into the result, never raised to the
// transport.
func (s *Server) ChangeTitle(ctx context.Context, req *mcp.CallToolRequest, input ChangeTitleInput) (*mcp.CallToolResult, any, error) {
	if err := s.notifier.SendSummary(ctx, input.Title); err != nil {
		s.logger.Warn("title update failed", "error", err)
		return errorResult(fmt.Sprintf("Failed to update session title: %v", err)), nil, nil
	}

	s.logger.Debug("session title updated", "title", input.Title)
	return textResult(fmt.Sprintf("Session title set to %q", input.Title)), nil, nil
}

// InjectReminder handles the inject_reminder MCP tool call. The queue
// accessor is resolved fresh on every invocation: the queue may not
// exist at server-start time and becomes available later in the
// owning process's lifecycle.
func (s *Server) InjectReminder(ctx context.Context, req *mcp.CallToolRequest, input InjectReminderInput) (*mcp.CallToolResult, any, error) {
	text := input.Message
	if input.TaskID != "" {
		text = fmt.Sprintf(taskReminderText, input.TaskID)
	}

	q := s.getQueue()
	if q == nil {
		return errorResult(queueUnavailableText), nil, nil
	}

	if err := q.Push(ctx, text, s.defaultMode); err != nil {
		s.logger.Warn("reminder push failed", "error", err)
		return errorResult(fmt.Sprintf("Failed to queue reminder: %v", err)), nil, nil
	}

	s.logger.Debug("reminder queued", "task_id", input.TaskID)
	return textResult("Reminder queued"), nil, nil
}
