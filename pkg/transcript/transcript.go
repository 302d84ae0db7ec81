package transcript

// Message is one entry in the transcript. It is a value type; entries are never
// modified after they are appended.
type Message struct {
	Content string
	Role    Role
}

// Transcript is the ordered record of every message exchanged in one run.
// Insertion order is the only order. It is owned by a single run and is not
// safe for concurrent use.
type Transcript struct {
	messages []Message
}

// New creates a transcript seeded with the user's request as its only message.
func New(request string) *Transcript {
	return &Transcript{
		messages: []Message{{Role: RoleUser, Content: request}},
	}
}

// Append adds msg to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// All returns a copy of the messages in chronological order.
func (t *Transcript) All() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}
