package tasks

import (
	"strings"
	"sync"
)

// Store is the in-memory task list for one session. Tasks are kept in id
// order; ids are assigned monotonically and never reused. Nothing is ever
// deleted, so an append-only slice keeps every read in id order for free.
//
// The store hands out copies and replaces whole records on update, so callers
// never observe a half-applied mutation.
type Store struct {
	mu     sync.RWMutex
	tasks  []Task
	nextID int
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

// Add appends a new active task and returns the created record.
func (s *Store) Add(name string, description *string) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:          s.nextID,
		Name:        name,
		Description: description,
	}.clone()
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t.clone()
}

// Query returns the tasks in the given completion state whose fields contain
// the non-nil filters as substrings. Filters are conjunctive; a nil filter
// matches everything. Results are in id order.
func (s *Store) Query(completed bool, name, description *string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0)
	for _, t := range s.tasks {
		if t.Completed != completed {
			continue
		}
		if name != nil && !strings.Contains(t.Name, *name) {
			continue
		}
		if description != nil {
			var desc string
			if t.Description != nil {
				desc = *t.Description
			}
			if !strings.Contains(desc, *description) {
				continue
			}
		}
		out = append(out, t.clone())
	}
	return out
}

// Update applies patch to the first task whose name equals name, in id order,
// and returns the updated record. When several tasks share a name the oldest
// one wins. A miss returns *NotFoundError and leaves the store untouched.
func (s *Store) Update(name string, patch Patch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.Name != name {
			continue
		}
		if patch.Description != nil {
			d := *patch.Description
			t.Description = &d
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		s.tasks[i] = t
		return t.clone(), nil
	}
	return Task{}, &NotFoundError{Name: name}
}

// Tasks returns a snapshot of every task in id order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.clone())
	}
	return out
}

// Len reports the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
