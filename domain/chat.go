package domain

// Message roles in a viva transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged entry of a conversation transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionMode selects how a viva session behaves. Fixed for the lifetime
// of a session.
type SessionMode string

const (
	// ModeExam has the AI examine the student against the entered case.
	ModeExam SessionMode = "exam"
	// ModeLearning has the student question the AI tutor.
	ModeLearning SessionMode = "learning"
	// ModeDummy has the AI generate a synthetic case from a short
	// description supplied by the student.
	ModeDummy SessionMode = "dummy"
)

// Valid reports whether m is one of the three known modes.
func (m SessionMode) Valid() bool {
	switch m {
	case ModeExam, ModeLearning, ModeDummy:
		return true
	}
	return false
}
