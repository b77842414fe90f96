package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"tasktalk/internal/log"
	"tasktalk/internal/skills"

	"github.com/tmc/langchaingo/llms"
)

var (
	// ErrBusy is returned when a send arrives while another is in flight.
	ErrBusy = errors.New("a message is already being processed")
	// ErrEmptyResponse is returned when the model produces neither text nor
	// function calls.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrToolRoundsExceeded is returned when the model keeps requesting
	// functions past the round cap.
	ErrToolRoundsExceeded = errors.New("max function call rounds reached")
)

// errorNotice is the generic transcript entry for a failed turn. The real
// error goes to the log, not to the user.
const errorNotice = "Something went wrong, please try again."

const (
	defaultMaxToolRounds   = 10
	defaultMaxHistoryTurns = 200
)

// Service owns one conversation: the model-facing history, the user-visible
// transcript, and the resolve loop that executes function calls until the
// model settles on a text reply.
type Service struct {
	adapter Adapter
	skills  *skills.Manager
	tools   []llms.Tool

	systemPrompt    string
	maxToolRounds   int
	maxHistoryTurns int

	mu      sync.Mutex
	history []Message
	display []DisplayTurn

	busy atomic.Bool
}

type ServiceOption func(*Service)

// WithSkills wires the function catalog and its handlers into the service.
func WithSkills(mgr *skills.Manager) ServiceOption {
	return func(s *Service) {
		s.skills = mgr
		s.tools = mgr.Catalog()
	}
}

// WithSystemPrompt sets the instruction kept at the head of every model
// request. It is not part of the stored history.
func WithSystemPrompt(prompt string) ServiceOption {
	return func(s *Service) {
		s.systemPrompt = strings.TrimSpace(prompt)
	}
}

// WithMaxToolRounds caps how many function call rounds one send may take.
func WithMaxToolRounds(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxToolRounds = n
		}
	}
}

// WithMaxHistoryTurns bounds how much trailing history is sent to the model.
func WithMaxHistoryTurns(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxHistoryTurns = n
		}
	}
}

func NewService(adapter Adapter, opts ...ServiceOption) *Service {
	s := &Service{
		adapter:         adapter,
		history:         make([]Message, 0, 16),
		maxToolRounds:   defaultMaxToolRounds,
		maxHistoryTurns: defaultMaxHistoryTurns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send runs one full turn: it appends the user message, then alternates model
// calls and function executions until the model answers with plain text or
// the round cap is hit. The returned string is the final assistant text.
//
// Function handler failures are fed back to the model as error payloads and
// do not abort the turn. Transport failures do: on the first round the
// provisional user turn is rolled back so a failed call never pollutes the
// history; on later rounds the committed turns stay, because the function
// calls they record have already run.
func (s *Service) Send(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty input")
	}
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.busy.Store(false)

	s.appendMessage(Message{Role: RoleUser, Content: input})
	s.appendDisplay(DisplayTurn{Sender: SenderUser, Text: input})

	for round := 0; round < s.maxToolRounds; round++ {
		window := s.window()
		log.Debug(ctx, "requesting model reply", "round", round, "window", len(window))
		text, calls, err := s.adapter.Reply(ctx, window, s.tools)
		if err != nil {
			err = fmt.Errorf("model request: %w", err)
			s.failTurn(ctx, round, err)
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" && len(calls) == 0 {
			s.failTurn(ctx, round, ErrEmptyResponse)
			return "", ErrEmptyResponse
		}

		s.appendMessage(Message{Role: RoleAssistant, Content: text, ToolCalls: calls})
		if len(calls) == 0 {
			s.appendDisplay(DisplayTurn{Sender: SenderSystem, Text: text})
			return text, nil
		}

		for _, call := range calls {
			content := s.runSkill(ctx, call)
			s.appendMessage(Message{Role: RoleTool, Content: content, ToolCallID: call.ID, ToolName: call.Name})
		}
	}

	s.failTurn(ctx, s.maxToolRounds, ErrToolRoundsExceeded)
	return "", ErrToolRoundsExceeded
}

// runSkill executes one function call and returns the result payload fed back
// to the model. Unknown functions and handler errors become error payloads
// the model can react to.
func (s *Service) runSkill(ctx context.Context, call ToolCall) string {
	var skill skills.Skill
	if s.skills != nil {
		skill, _ = s.skills.Get(call.Name)
	}
	if skill == nil {
		err := fmt.Errorf("unknown function %q", call.Name)
		log.Warn(ctx, "function call rejected", "function", call.Name, "reason", err.Error())
		return errorPayload(err)
	}

	log.Debug(ctx, "executing function call", "function", call.Name, "args", call.Arguments)
	result, err := skill.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		log.Warn(ctx, "function call failed", "function", call.Name, "reason", err.Error())
		return errorPayload(err)
	}
	return result
}

// failTurn records a terminal failure: the transcript gets the generic
// notice, the log gets the real error, and a first-round failure rolls the
// provisional user turn back out of the history.
func (s *Service) failTurn(ctx context.Context, round int, err error) {
	log.Error(ctx, "turn failed", err, "round", round)
	s.mu.Lock()
	if round == 0 && len(s.history) > 0 {
		s.history = s.history[:len(s.history)-1]
	}
	s.display = append(s.display, DisplayTurn{Sender: SenderSystem, Text: errorNotice})
	s.mu.Unlock()
}

// window returns the messages sent to the model: the system prompt when one
// is configured, then the trailing maxHistoryTurns turns extended back to the
// nearest user turn so an assistant's function calls are never separated from
// their results.
func (s *Service) window() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.history
	if len(msgs) > s.maxHistoryTurns {
		start := len(msgs) - s.maxHistoryTurns
		for start > 0 && msgs[start].Role != RoleUser {
			start--
		}
		msgs = msgs[start:]
	}

	out := make([]Message, 0, len(msgs)+1)
	if s.systemPrompt != "" {
		out = append(out, Message{Role: RoleSystem, Content: s.systemPrompt})
	}
	return append(out, msgs...)
}

func (s *Service) appendMessage(m Message) {
	s.mu.Lock()
	s.history = append(s.history, m)
	s.mu.Unlock()
}

func (s *Service) appendDisplay(t DisplayTurn) {
	s.mu.Lock()
	s.display = append(s.display, t)
	s.mu.Unlock()
}

// DisplayTurns returns a snapshot of the user-visible transcript.
func (s *Service) DisplayTurns() []DisplayTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DisplayTurn, len(s.display))
	copy(out, s.display)
	return out
}

// History returns a snapshot of the model-facing conversation history.
func (s *Service) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Busy reports whether a send is in flight.
func (s *Service) Busy() bool {
	return s.busy.Load()
}

// Clear resets the conversation. Stored tasks are unaffected.
func (s *Service) Clear() {
	s.mu.Lock()
	s.history = s.history[:0]
	s.display = s.display[:0]
	s.mu.Unlock()
}

// errorPayload wraps a handler error as the JSON result fed back to the model.
func errorPayload(err error) string {
	data, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "error", Message: err.Error()})
	return string(data)
}
