package chat

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one turn of the model-facing conversation history.
type Message struct {
	Role    Role
	Content string

	// For assistant messages: the function calls they made
	ToolCalls []ToolCall

	// For tool messages: which call this result answers
	ToolCallID string
	ToolName   string
}

// ToolCall mirrors llms.ToolCall but keeps the chat types decoupled from the
// wire library.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Sender labels a display turn. The transcript only distinguishes the user
// from everything the application says back (final model text and error
// notices alike).
type Sender string

const (
	SenderUser   Sender = "user"
	SenderSystem Sender = "system"
)

// DisplayTurn is one entry of the user-visible transcript. Interim reasoning
// and function traffic never appear here.
type DisplayTurn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}
