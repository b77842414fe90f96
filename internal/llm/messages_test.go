package llm

import (
	"testing"

	"tasktalk/internal/chat"

	"github.com/google/go-cmp/cmp"
	"github.com/tmc/langchaingo/llms"
)

func TestConvertHistoryRoles(t *testing.T) {
	history := []chat.Message{
		{Role: chat.RoleSystem, Content: "You manage tasks."},
		{Role: chat.RoleUser, Content: "add buy milk"},
		{Role: chat.RoleAssistant, ToolCalls: []chat.ToolCall{
			{ID: "call-1", Name: "add_task", Arguments: `{"name":"buy milk"}`},
		}},
		{Role: chat.RoleTool, Content: `{"id":1}`, ToolCallID: "call-1", ToolName: "add_task"},
		{Role: chat.RoleAssistant, Content: "Done."},
	}

	got := convertHistory(history)
	if len(got) != 5 {
		t.Fatalf("converted %d messages, want 5", len(got))
	}

	wantRoles := []llms.ChatMessageType{
		llms.ChatMessageTypeSystem,
		llms.ChatMessageTypeHuman,
		llms.ChatMessageTypeAI,
		llms.ChatMessageTypeTool,
		llms.ChatMessageTypeAI,
	}
	for i, want := range wantRoles {
		if got[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, got[i].Role, want)
		}
	}

	// The assistant's function call survives with id, name and raw arguments.
	call, ok := got[2].Parts[0].(llms.ToolCall)
	if !ok {
		t.Fatalf("assistant part is %T, want llms.ToolCall", got[2].Parts[0])
	}
	if call.ID != "call-1" || call.Type != "function" {
		t.Fatalf("call = %+v", call)
	}
	if call.FunctionCall == nil || call.FunctionCall.Name != "add_task" {
		t.Fatalf("function call = %+v", call.FunctionCall)
	}
	if call.FunctionCall.Arguments != `{"name":"buy milk"}` {
		t.Fatalf("arguments = %s", call.FunctionCall.Arguments)
	}

	// The tool result pairs back to its call by id and function name.
	resp, ok := got[3].Parts[0].(llms.ToolCallResponse)
	if !ok {
		t.Fatalf("tool part is %T, want llms.ToolCallResponse", got[3].Parts[0])
	}
	want := llms.ToolCallResponse{ToolCallID: "call-1", Name: "add_task", Content: `{"id":1}`}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("tool response mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertHistoryAssistantWithTextAndCalls(t *testing.T) {
	got := convertHistory([]chat.Message{
		{
			Role:    chat.RoleAssistant,
			Content: "Let me check.",
			ToolCalls: []chat.ToolCall{
				{Name: "get_active_tasks", Arguments: `{}`},
			},
		},
	})

	parts := got[0].Parts
	if len(parts) != 2 {
		t.Fatalf("assistant has %d parts, want text plus call", len(parts))
	}
	if text, ok := parts[0].(llms.TextContent); !ok || text.Text != "Let me check." {
		t.Fatalf("first part = %#v", parts[0])
	}
	if _, ok := parts[1].(llms.ToolCall); !ok {
		t.Fatalf("second part = %#v", parts[1])
	}
}

func TestConvertHistoryPadsEmptyAssistantTurn(t *testing.T) {
	got := convertHistory([]chat.Message{
		{Role: chat.RoleAssistant},
	})

	parts := got[0].Parts
	if len(parts) != 1 {
		t.Fatalf("assistant has %d parts, want 1", len(parts))
	}
	text, ok := parts[0].(llms.TextContent)
	if !ok || text.Text != " " {
		t.Fatalf("empty assistant turn must become a blank text part, got %#v", parts[0])
	}
}

func TestCollectToolCalls(t *testing.T) {
	choice := &llms.ContentChoice{
		ToolCalls: []llms.ToolCall{
			{ID: "call-1", FunctionCall: &llms.FunctionCall{Name: "add_task", Arguments: `{"name":"x"}`}},
			{ID: "broken"},
			{FunctionCall: &llms.FunctionCall{Name: "get_active_tasks", Arguments: `{}`}},
		},
	}

	got := collectToolCalls(choice)
	want := []chat.ToolCall{
		{ID: "call-1", Name: "add_task", Arguments: `{"name":"x"}`},
		{Name: "get_active_tasks", Arguments: `{}`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tool calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectToolCallsEmpty(t *testing.T) {
	if got := collectToolCalls(&llms.ContentChoice{}); len(got) != 0 {
		t.Fatalf("expected no calls, got %+v", got)
	}
}
