package domain

// ReplyKind classifies an outbound chat message.
type ReplyKind int

// Reply kinds.
const (
	ReplyInfo ReplyKind = iota
	ReplyWarning
	ReplyError
	ReplyAnswer
)

// String returns the kind name.
func (k ReplyKind) String() string {
	switch k {
	case ReplyInfo:
		return "info"
	case ReplyWarning:
		return "warning"
	case ReplyError:
		return "error"
	case ReplyAnswer:
		return "answer"
	default:
		return unknownDescription
	}
}

// Reply is a message sent to the chat transport.
type Reply struct {
	Kind      ReplyKind
	Text      string
	Citations []Citation
}

// Citation is a displayable source element attached to an answer.
type Citation struct {
	// Label is the numbered display name, e.g. "Source 1: main.py".
	Label string

	// Source is the full source path.
	Source string

	// Repository is the index the chunk came from.
	Repository string

	// Content is the chunk text.
	Content string
}
