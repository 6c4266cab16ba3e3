package models

// Command is a single inbound chat event.
// Name is empty when the user sent plain text instead of a /command.
type Command struct {
	SessionID string
	Name      string
	Args      []string
	Text      string
}

// IsCommand reports whether the event was a /command
func (c Command) IsCommand() bool {
	return c.Name != ""
}

// Reply is the bot's answer to one Command
type Reply struct {
	Text string `json:"reply"`
	Code string `json:"code,omitempty"`
}

// Reply codes for failed commands
const (
	CodeInvalidArguments = "invalid_arguments"
	CodeUnknownItem      = "unknown_item"
	CodeInvalidQuantity  = "invalid_quantity"
	CodeParseError       = "parse_error"
	CodeUnknownCommand   = "unknown_command"
	CodeInternal         = "internal"
)

// OK reports whether the command succeeded
func (r Reply) OK() bool {
	return r.Code == ""
}
