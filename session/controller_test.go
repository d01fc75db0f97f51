package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// scriptedChatter answers each Chat call from a queue of replies. A call
// blocks until Release is invoked, so tests control when the reply lands.
type scriptedChatter struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   [][]domain.ChatMessage
	gate    chan struct{}
}

func newScriptedChatter() *scriptedChatter {
	return &scriptedChatter{gate: make(chan struct{}, 16)}
}

func (s *scriptedChatter) queue(reply string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, reply)
	s.errs = append(s.errs, err)
}

func (s *scriptedChatter) Release() {
	s.gate <- struct{}{}
}

func (s *scriptedChatter) Chat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	<-s.gate
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]domain.ChatMessage(nil), history...))
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply, err := s.replies[0], s.errs[0]
	s.replies, s.errs = s.replies[1:], s.errs[1:]
	return reply, err
}

func (s *scriptedChatter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type staticForm struct{ doc domain.FormDocument }

func (f staticForm) Collect() domain.FormDocument { return f.doc }

// recordingEvents captures every callback and signals each state change.
type recordingEvents struct {
	mu      sync.Mutex
	states  []State
	replies []string
	notices []string
	cleared int
	ended   []string
	stateCh chan State
}

func newRecordingEvents() *recordingEvents {
	return &recordingEvents{stateCh: make(chan State, 16)}
}

func (e *recordingEvents) StateChanged(s State) {
	e.mu.Lock()
	e.states = append(e.states, s)
	e.mu.Unlock()
	e.stateCh <- s
}

func (e *recordingEvents) AssistantReplied(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replies = append(e.replies, text)
}

func (e *recordingEvents) NoticePosted(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, text)
}

func (e *recordingEvents) NoticeCleared() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleared++
}

func (e *recordingEvents) SessionEnded(notice string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ended = append(e.ended, notice)
}

func (e *recordingEvents) waitForState(t *testing.T, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-e.stateCh:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

func newForm() staticForm {
	doc := domain.NewFormDocument()
	doc.Fields["patient-name"] = "Jane Doe"
	doc.Fields["cc-notes"] = "knee pain"
	return staticForm{doc: doc}
}

func TestStartLearningSessionAwaitsInput(t *testing.T) {
	chatter := newScriptedChatter()
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeLearning, "Alice"))
	assert.Equal(t, AwaitingInput, c.State())
	assert.Equal(t, domain.ModeLearning, c.Mode())

	transcript := c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, domain.RoleSystem, transcript[0].Role)
	assert.Contains(t, transcript[0].Content, "Jane Doe")
	assert.Contains(t, transcript[0].Content, "Wait for the student's first question.")
	assert.Zero(t, chatter.callCount())
}

func TestStartExamSessionOpensWithAITurn(t *testing.T) {
	chatter := newScriptedChatter()
	chatter.queue("What is your first differential?", nil)
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeExam, "Alice"))
	assert.Equal(t, WaitingOnAI, c.State())

	chatter.Release()
	events.waitForState(t, AwaitingInput)

	transcript := c.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, domain.RoleSystem, transcript[0].Role)
	assert.Contains(t, transcript[0].Content, "named Alice")
	assert.Contains(t, transcript[0].Content, "Do not address the student by the patient's name.")
	assert.Contains(t, transcript[0].Content, "--- Case Data ---")
	assert.Contains(t, transcript[0].Content, `"cc-notes": "knee pain"`)
	assert.Equal(t, domain.RoleAssistant, transcript[1].Role)
	assert.Equal(t, "What is your first differential?", transcript[1].Content)
}

func TestStartSessionWhileActiveFails(t *testing.T) {
	c := New(newScriptedChatter(), newForm(), nil)
	require.NoError(t, c.StartSession(context.Background(), domain.ModeLearning, "Alice"))
	assert.ErrorIs(t, c.StartSession(context.Background(), domain.ModeLearning, "Alice"), ErrSessionActive)
}

func TestSendMessageIgnoredWhileWaiting(t *testing.T) {
	chatter := newScriptedChatter()
	chatter.queue("first question", nil)
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeExam, "Alice"))

	// The opening call is still in flight; input must be dropped.
	c.SendMessage(context.Background(), "premature answer")
	assert.Len(t, c.Transcript(), 1)

	chatter.Release()
	events.waitForState(t, AwaitingInput)
	assert.Equal(t, 1, chatter.callCount())
}

func TestSendMessageIgnoresEmptyText(t *testing.T) {
	chatter := newScriptedChatter()
	c := New(chatter, newForm(), nil)
	require.NoError(t, c.StartSession(context.Background(), domain.ModeLearning, "Alice"))

	c.SendMessage(context.Background(), "   \n\t ")
	assert.Equal(t, AwaitingInput, c.State())
	assert.Len(t, c.Transcript(), 1)
	assert.Zero(t, chatter.callCount())
}

func TestChatFailurePostsNoticeAndKeepsTranscript(t *testing.T) {
	chatter := newScriptedChatter()
	chatter.queue("", errors.New("upstream exploded"))
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeLearning, "Alice"))
	// Consume the session-start transition so the wait below observes the
	// post-reply transition, not this buffered one.
	events.waitForState(t, AwaitingInput)
	c.SendMessage(context.Background(), "What is a Colles fracture?")
	chatter.Release()
	events.waitForState(t, AwaitingInput)

	assert.Equal(t, "Error getting AI response: upstream exploded", c.Notice())
	transcript := c.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, domain.RoleUser, transcript[1].Role)

	// The next send clears the old notice before the new call.
	chatter.queue("A distal radius fracture.", nil)
	c.SendMessage(context.Background(), "Try again?")
	chatter.Release()
	events.waitForState(t, AwaitingInput)

	assert.Empty(t, c.Notice())
	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Equal(t, 1, events.cleared)
	assert.Equal(t, []string{"Error getting AI response: upstream exploded"}, events.notices)
	assert.Equal(t, []string{"A distal radius fracture."}, events.replies)
}

func TestEndSessionDiscardsInFlightReply(t *testing.T) {
	chatter := newScriptedChatter()
	chatter.queue("too late", nil)
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeExam, "Alice"))
	require.NoError(t, c.EndSession())
	assert.Equal(t, Idle, c.State())

	chatter.Release()
	// Give the goroutine a beat to deliver into the fence.
	time.Sleep(50 * time.Millisecond)

	assert.Nil(t, c.Transcript())
	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Empty(t, events.replies)
	assert.Equal(t, []string{"Viva session ended."}, events.ended)
}

func TestEndSessionWithoutSessionFails(t *testing.T) {
	c := New(newScriptedChatter(), newForm(), nil)
	assert.ErrorIs(t, c.EndSession(), ErrNoActiveSession)
}

func TestDummyModeCaseTypeFlow(t *testing.T) {
	chatter := newScriptedChatter()
	chatter.queue("What kind of case would you like to practice?", nil)
	chatter.queue("Patient Name: John Smith\nAge: 45", nil)
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeDummy, "Alice"))
	chatter.Release()
	events.waitForState(t, AwaitingCaseType)

	c.SendMessage(context.Background(), "a distal radius fracture in an elderly woman")
	chatter.Release()
	events.waitForState(t, AwaitingInput)

	transcript := c.Transcript()
	require.Len(t, transcript, 5)
	assert.Equal(t, domain.RoleUser, transcript[2].Role)
	assert.Equal(t, domain.RoleSystem, transcript[3].Role)
	assert.Contains(t, transcript[3].Content, `"Label: value"`)
	assert.Equal(t, domain.RoleAssistant, transcript[4].Role)
}

func TestDummyOpeningFailureStillAcceptsCaseType(t *testing.T) {
	chatter := newScriptedChatter()
	chatter.queue("", errors.New("upstream exploded"))
	chatter.queue("Patient Name: John Smith\nAge: 45", nil)
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeDummy, "Alice"))
	chatter.Release()
	events.waitForState(t, AwaitingCaseType)
	assert.Contains(t, c.Notice(), "upstream exploded")

	// The next message is still the case-type description and triggers
	// the generation instruction.
	c.SendMessage(context.Background(), "a hip fracture in an elderly man")
	chatter.Release()
	events.waitForState(t, AwaitingInput)

	transcript := c.Transcript()
	require.Len(t, transcript, 4)
	assert.Equal(t, domain.RoleUser, transcript[1].Role)
	assert.Equal(t, domain.RoleSystem, transcript[2].Role)
	assert.Contains(t, transcript[2].Content, `"Label: value"`)
	assert.Equal(t, domain.RoleAssistant, transcript[3].Role)
}

func TestStartSessionSnapshotsFormOnce(t *testing.T) {
	chatter := newScriptedChatter()
	form := newForm()
	c := New(chatter, form, nil)

	require.NoError(t, c.StartSession(context.Background(), domain.ModeLearning, "Alice"))
	before := c.Transcript()[0].Content

	// Mutating the source document after start must not change the prompt.
	form.doc.Fields["cc-notes"] = "changed later"
	assert.Equal(t, before, c.Transcript()[0].Content)
}

func TestInvalidModeDefaultsToExam(t *testing.T) {
	chatter := newScriptedChatter()
	chatter.queue("first question", nil)
	events := newRecordingEvents()
	c := New(chatter, newForm(), events)

	require.NoError(t, c.StartSession(context.Background(), domain.SessionMode("bogus"), "Alice"))
	assert.Equal(t, domain.ModeExam, c.Mode())
	chatter.Release()
	events.waitForState(t, AwaitingInput)
}
