package domain

// Invocation is one parsed command call.
type Invocation struct {
	ID      string // ULID, used to correlate log lines
	Command string // canonical command name
	Alias   string // name as typed by the user
	Args    []string
	Message InboundMessage
}
