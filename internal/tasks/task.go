// Package tasks holds the session task list and the chat functions that
// operate on it.
package tasks

import "fmt"

// Task is a single entry in the session task list. Description is a pointer so
// a task without one serializes as an explicit null rather than "".
type Task struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

// clone returns a copy that shares no memory with the receiver.
func (t Task) clone() Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}

// Patch describes a partial update. Nil fields leave the task untouched.
type Patch struct {
	Description *string
	Completed   *bool
}

// NotFoundError reports an update addressed to a task name that matches
// nothing in the store.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Task with %q id not found", e.Name)
}

// InvalidArgumentsError reports function-call arguments that failed typed
// validation.
type InvalidArgumentsError struct {
	Function string
	Reason   string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Function, e.Reason)
}
