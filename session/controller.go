// Package session drives one AI viva conversation: mode selection,
// transcript accumulation, the send/receive cycle, and the state
// transitions around it. It is UI-agnostic; a front end supplies an
// Events sink and invokes the three commands.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// State is the controller's position in the session lifecycle.
type State int

const (
	// Idle means no session is active.
	Idle State = iota
	// AwaitingInput means the transcript is ready for a student message.
	AwaitingInput
	// WaitingOnAI means a chat call is in flight; input is disabled.
	WaitingOnAI
	// AwaitingCaseType is dummy mode's initial input state: the next
	// student message is a case-type description, not a normal turn.
	AwaitingCaseType
)

var (
	ErrSessionActive   = errors.New("a session is already active")
	ErrNoActiveSession = errors.New("no active session")
)

// Chatter sends a transcript to the chat backend and returns the
// assistant's reply text.
type Chatter interface {
	Chat(ctx context.Context, history []domain.ChatMessage) (string, error)
}

// Snapshotter supplies the form snapshot embedded in the initial system
// prompt. The snapshot is taken once, at session start.
type Snapshotter interface {
	Collect() domain.FormDocument
}

// Events receives UI-facing notifications. All methods are invoked with
// the controller's lock released. Implementations may be nil-safe stubs.
type Events interface {
	// StateChanged fires on every transition, including session start.
	StateChanged(state State)
	// AssistantReplied delivers a successful AI reply.
	AssistantReplied(text string)
	// NoticePosted shows a transient error notice. Any previous notice
	// was already cleared.
	NoticePosted(text string)
	// NoticeCleared removes the visible notice, if any.
	NoticeCleared()
	// SessionEnded delivers the terminal notice after EndSession.
	SessionEnded(notice string)
}

// Controller owns the conversation transcript and the session state
// machine described above.
type Controller struct {
	chatter Chatter
	form    Snapshotter
	events  Events

	mu         sync.Mutex
	state      State
	mode       domain.SessionMode
	transcript []domain.ChatMessage
	// generation fences in-flight replies: a reply delivered with a
	// stale generation is discarded, not appended.
	generation  string
	notice      string
	studentName string
	// firstDummyReply routes dummy mode's opening AI reply into
	// AwaitingCaseType instead of AwaitingInput.
	firstDummyReply bool
}

// New creates an idle controller.
func New(chatter Chatter, form Snapshotter, events Events) *Controller {
	if events == nil {
		events = noopEvents{}
	}
	return &Controller{
		chatter: chatter,
		form:    form,
		events:  events,
		state:   Idle,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode returns the active session's mode.
func (c *Controller) Mode() domain.SessionMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ChatMessage(nil), c.transcript...)
}

// Notice returns the currently visible error notice, empty when none.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// StartSession begins a session in the given mode. The transcript is
// reset to a single system entry holding the mode instructions and a
// snapshot of the form taken now; later form edits do not affect it.
// Exam and dummy modes immediately trigger the first AI call.
func (c *Controller) StartSession(ctx context.Context, mode domain.SessionMode, studentName string) error {
	if !mode.Valid() {
		mode = domain.ModeExam
	}

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrSessionActive
	}

	snapshot := c.form.Collect().Indented()
	c.mode = mode
	c.studentName = studentName
	c.generation = uuid.New().String()
	c.notice = ""
	c.transcript = []domain.ChatMessage{{
		Role:    domain.RoleSystem,
		Content: initialPrompt(mode, studentName, snapshot),
	}}
	c.firstDummyReply = mode == domain.ModeDummy

	if mode == domain.ModeLearning {
		c.state = AwaitingInput
		c.mu.Unlock()
		c.events.StateChanged(AwaitingInput)
		return nil
	}

	// Exam and dummy open with an AI turn.
	c.state = WaitingOnAI
	gen := c.generation
	history := append([]domain.ChatMessage(nil), c.transcript...)
	c.mu.Unlock()

	c.events.StateChanged(WaitingOnAI)
	go c.requestReply(ctx, gen, history)
	return nil
}

// SendMessage submits one student message. It is a no-op when the
// controller is not accepting input or the trimmed text is empty. In
// AwaitingCaseType the message is treated as the case-type description
// and a case-generation instruction is injected before the call.
func (c *Controller) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	if c.state != AwaitingInput && c.state != AwaitingCaseType {
		c.mu.Unlock()
		return
	}

	hadNotice := c.notice != ""
	c.notice = ""
	c.transcript = append(c.transcript, domain.ChatMessage{Role: domain.RoleUser, Content: text})
	if c.state == AwaitingCaseType {
		c.transcript = append(c.transcript, domain.ChatMessage{
			Role:    domain.RoleSystem,
			Content: caseGenerationInstruction,
		})
	}
	c.state = WaitingOnAI
	gen := c.generation
	history := append([]domain.ChatMessage(nil), c.transcript...)
	c.mu.Unlock()

	if hadNotice {
		c.events.NoticeCleared()
	}
	c.events.StateChanged(WaitingOnAI)
	go c.requestReply(ctx, gen, history)
}

// EndSession terminates the active session from any state. The transcript
// is discarded; a reply still in flight will be dropped on arrival.
func (c *Controller) EndSession() error {
	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	c.state = Idle
	c.generation = ""
	c.transcript = nil
	c.notice = ""
	c.firstDummyReply = false
	c.mu.Unlock()

	c.events.SessionEnded("Viva session ended.")
	c.events.StateChanged(Idle)
	return nil
}

// requestReply performs the chat call and delivers the outcome through
// the generation fence.
func (c *Controller) requestReply(ctx context.Context, gen string, history []domain.ChatMessage) {
	reply, err := c.chatter.Chat(ctx, history)
	c.receive(gen, reply, err)
}

func (c *Controller) receive(gen, reply string, err error) {
	c.mu.Lock()
	if gen != c.generation || c.state != WaitingOnAI {
		// Stale: the session ended or restarted while this call was in
		// flight. Drop the result.
		c.mu.Unlock()
		return
	}

	if err != nil {
		// A failed opening turn in dummy mode still accepts a case-type
		// description next, so the mode is not lost to one bad call.
		next := AwaitingInput
		if c.firstDummyReply {
			next = AwaitingCaseType
			c.firstDummyReply = false
		}
		c.state = next
		c.notice = "Error getting AI response: " + err.Error()
		notice := c.notice
		c.mu.Unlock()

		c.events.NoticePosted(notice)
		c.events.StateChanged(next)
		return
	}

	c.transcript = append(c.transcript, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	next := AwaitingInput
	if c.firstDummyReply {
		next = AwaitingCaseType
		c.firstDummyReply = false
	}
	c.state = next
	c.mu.Unlock()

	c.events.AssistantReplied(reply)
	c.events.StateChanged(next)
}

type noopEvents struct{}

func (noopEvents) StateChanged(State)      {}
func (noopEvents) AssistantReplied(string) {}
func (noopEvents) NoticePosted(string)     {}
func (noopEvents) NoticeCleared()          {}
func (noopEvents) SessionEnded(string)     {}
