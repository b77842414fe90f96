package tasks

import (
	"context"
	"encoding/json"
	"strings"
)

// The four chat functions exposed to the model. Arguments arrive as the raw
// JSON the model produced and are decoded into typed structs; anything that
// does not fit is an InvalidArgumentsError, never a silent default.

func decodeArgs(function string, raw json.RawMessage, v any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &InvalidArgumentsError{Function: function, Reason: err.Error()}
	}
	return nil
}

func marshalPayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// taskList is the result payload shared by the two query functions.
type taskList struct {
	Tasks []Task `json:"tasks"`
}

// AddTaskSkill creates tasks.
type AddTaskSkill struct {
	Store *Store
}

func (s *AddTaskSkill) Name() string { return "add_task" }
func (s *AddTaskSkill) Description() string {
	return "Adds a new task to the user's task list. New tasks start out active, not completed."
}
func (s *AddTaskSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "The name of the task.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Optional details about the task.",
			},
		},
		"required": []string{"name"},
	}
}
func (s *AddTaskSkill) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeArgs(s.Name(), args, &a); err != nil {
		return "", err
	}
	if a.Name == "" {
		return "", &InvalidArgumentsError{Function: s.Name(), Reason: "name is required"}
	}
	return marshalPayload(s.Store.Add(a.Name, a.Description))
}

// CompletedTasksSkill lists finished tasks.
type CompletedTasksSkill struct {
	Store *Store
}

func (s *CompletedTasksSkill) Name() string { return "get_completed_tasks" }
func (s *CompletedTasksSkill) Description() string {
	return "Lists completed tasks, optionally narrowed to those whose name or description contains the given filters."
}
func (s *CompletedTasksSkill) Parameters() map[string]any {
	return queryParameters()
}
func (s *CompletedTasksSkill) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return runQuery(s.Name(), s.Store, true, args)
}

// ActiveTasksSkill lists tasks still to do.
type ActiveTasksSkill struct {
	Store *Store
}

func (s *ActiveTasksSkill) Name() string { return "get_active_tasks" }
func (s *ActiveTasksSkill) Description() string {
	return "Lists active (not yet completed) tasks, optionally narrowed to those whose name or description contains the given filters."
}
func (s *ActiveTasksSkill) Parameters() map[string]any {
	return queryParameters()
}
func (s *ActiveTasksSkill) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return runQuery(s.Name(), s.Store, false, args)
}

func queryParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Only return tasks whose name contains this text.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Only return tasks whose description contains this text.",
			},
		},
	}
}

func runQuery(function string, store *Store, completed bool, args json.RawMessage) (string, error) {
	var a struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeArgs(function, args, &a); err != nil {
		return "", err
	}
	return marshalPayload(taskList{Tasks: store.Query(completed, a.Name, a.Description)})
}

// UpdateTaskSkill patches a task addressed by name.
type UpdateTaskSkill struct {
	Store *Store
}

func (s *UpdateTaskSkill) Name() string { return "update_task" }
func (s *UpdateTaskSkill) Description() string {
	return "Updates the task with the given name. Omitted fields keep their current value; set completed to true to mark the task done."
}
func (s *UpdateTaskSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "The name of the task to update.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "New details for the task.",
			},
			"completed": map[string]any{
				"type":        "boolean",
				"description": "New completion state for the task.",
			},
		},
		"required": []string{"name"},
	}
}
func (s *UpdateTaskSkill) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := decodeArgs(s.Name(), args, &a); err != nil {
		return "", err
	}
	if a.Name == nil || *a.Name == "" {
		return "", &InvalidArgumentsError{Function: s.Name(), Reason: "name is required"}
	}
	t, err := s.Store.Update(*a.Name, Patch{Description: a.Description, Completed: a.Completed})
	if err != nil {
		return "", err
	}
	return marshalPayload(t)
}
