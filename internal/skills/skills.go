package skills

import (
	"context"
	"encoding/json"

	"github.com/tmc/langchaingo/llms"
)

// Skill defines a function the model can call.
type Skill interface {
	// Name returns the unique function name (e.g. "add_task").
	Name() string
	// Description returns a human-readable description for the model.
	Description() string
	// Parameters returns the JSON schema for the arguments as a map.
	Parameters() map[string]any
	// Execute runs the skill with the raw JSON arguments the model produced
	// and returns the JSON result payload.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Manager holds the available skills in registration order.
type Manager struct {
	order  []string
	skills map[string]Skill
}

func NewManager() *Manager {
	return &Manager{
		skills: make(map[string]Skill),
	}
}

func (m *Manager) Register(s Skill) {
	if _, ok := m.skills[s.Name()]; !ok {
		m.order = append(m.order, s.Name())
	}
	m.skills[s.Name()] = s
}

func (m *Manager) Get(name string) (Skill, bool) {
	s, ok := m.skills[name]
	return s, ok
}

func (m *Manager) List() []Skill {
	list := make([]Skill, 0, len(m.order))
	for _, name := range m.order {
		list = append(list, m.skills[name])
	}
	return list
}

// Catalog renders the registered skills as the tool declarations sent with
// every model request. The catalog is fixed at startup; it never changes
// between turns.
func (m *Manager) Catalog() []llms.Tool {
	tools := make([]llms.Tool, 0, len(m.order))
	for _, s := range m.List() {
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        s.Name(),
				Description: s.Description(),
				Parameters:  s.Parameters(),
			},
		})
	}
	return tools
}
