package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/anketa/internal/dispatch"
	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/repository"
	"github.com/xiaot623/anketa/tests/helpers"
)

const candidate domain.UserID = 42

var jobTypes = []string{"Sotuvchi", "Marketolog", "HR", "Omborchi", "Boshqa"}

type fixture struct {
	ctx       context.Context
	machine   *Machine
	messenger *helpers.RecordingMessenger
	sessions  *repository.MemorySessionStore
	media     *repository.MediaCache
	user      domain.User
}

func newFixture(t *testing.T, reviewers ...domain.UserID) *fixture {
	t.Helper()
	ctx := context.Background()
	store := helpers.NewTestSQLiteStore(t)
	require.NoError(t, store.SeedReviewers(ctx, reviewers))

	f := &fixture{
		ctx:       ctx,
		messenger: helpers.NewRecordingMessenger(),
		sessions:  repository.NewMemorySessionStore(),
		media:     repository.NewMediaCache(ctx, store, nil, nil),
		user:      domain.User{ID: candidate, FullName: "Ali Valiyev", Username: "ali"},
	}
	f.machine = NewMachine(Config{
		JobTypes:   jobTypes,
		Messenger:  f.messenger,
		Sessions:   f.sessions,
		Media:      f.media,
		Dispatcher: dispatch.NewDispatcher(f.messenger, store, nil, nil),
	})
	return f
}

func (f *fixture) send(ev domain.Event) Outcome {
	ev.From = f.user
	return f.machine.Handle(f.ctx, ev)
}

func (f *fixture) session(t *testing.T) *domain.Session {
	t.Helper()
	s, ok := f.sessions.Get(candidate)
	require.True(t, ok, "session expected")
	return s
}

func (f *fixture) lastToCandidate(t *testing.T) helpers.Sent {
	t.Helper()
	s, ok := f.messenger.Last(candidate)
	require.True(t, ok)
	return s
}

func text(s string) domain.Event { return domain.Event{Kind: domain.EventText, Text: s} }

func choose(kind domain.SelectionKind, v string) domain.Event {
	return domain.Event{Kind: domain.EventSelection, Selection: domain.Selection{Kind: kind, Value: v}, SelectionID: "sel-1"}
}

func media(kind domain.EventKind, id string) domain.Event {
	return domain.Event{Kind: kind, FileID: id}
}

func contact(phone string) domain.Event {
	return domain.Event{Kind: domain.EventContact, Phone: phone}
}

// script answers every question with valid input, in order.
var script = []struct {
	ev   domain.Event
	next domain.State
}{
	{choose(domain.SelectionCategory, "Sotuvchi"), domain.StateQ1},
	{text("Ali Valiyev"), domain.StateQ2},
	{text("+998909998877"), domain.StateQ3},
	{text("Toshkent, Chilonzor"), domain.StateQ4},
	{text("01.01.2000"), domain.StateQ5},
	{choose(domain.SelectionEducation, "oliy"), domain.StateQ6},
	{text("Alora - sotuvchi"), domain.StateQ7},
	{choose(domain.SelectionMarital, "turmush qurmaganman"), domain.StateQ9},
	{media(domain.EventVoice, "voice-1"), domain.StateQ10},
	{choose(domain.SelectionRussianLevel, "yaxshi"), domain.StateQ11},
	{media(domain.EventVideo, "video-1"), domain.StateQ12},
	{choose(domain.SelectionConsent, "ha"), domain.StateQ13},
	{text("Direktor - Malika"), domain.StateQ14},
	{text("2 yil"), domain.StateQ15},
	{text("ha"), domain.StateQ16},
	{text("yo'q"), domain.StateQ17},
	{text("transport"), domain.StateQ18},
	{text("ehtiyoj"), domain.StateQ19},
	{text("motivatsiya"), domain.StateQ20},
	{text("3 mln"), domain.StateQ21},
	{text("4 mln"), domain.StateQ22},
	{text("Excel"), ""},
}

// advanceTo starts a session and answers validly until state is reached.
func (f *fixture) advanceTo(t *testing.T, state domain.State) {
	t.Helper()
	f.machine.Start(f.ctx, f.user)
	if state == domain.StateSelectCategory {
		return
	}
	for _, step := range script {
		f.send(step.ev)
		if step.next == state {
			return
		}
	}
	t.Fatalf("state %s not reachable", state)
}

func TestStartSendsCaptionAndMenu(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, OutcomeStarted, f.machine.Start(f.ctx, f.user))

	sent := f.messenger.To(candidate)
	require.Len(t, sent, 2)
	assert.Equal(t, "text", sent[0].Op)
	assert.Equal(t, StartCaption, sent[0].Text)
	assert.Equal(t, MenuText, sent[1].Text)
	require.NotNil(t, sent[1].Keyboard)
	require.Len(t, sent[1].Keyboard.Rows, 3)
	assert.Len(t, sent[1].Keyboard.Rows[0], 2)
	assert.Len(t, sent[1].Keyboard.Rows[2], 1)
	assert.Equal(t, "category|Sotuvchi", sent[1].Keyboard.Rows[0][0].Data)

	s := f.session(t)
	assert.Equal(t, domain.StateSelectCategory, s.State)
	assert.Equal(t, sent[1].MessageID, s.MenuMessage)
	assert.Zero(t, s.Answers.Len())
}

func TestStartUsesStoredClip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.media.Set(f.ctx, domain.MediaStartVideo, "clip-start"))

	f.machine.Start(f.ctx, f.user)

	sent := f.messenger.To(candidate)
	require.Len(t, sent, 2)
	assert.Equal(t, "video", sent[0].Op)
	assert.Equal(t, "clip-start", sent[0].Ref)
	assert.Equal(t, StartCaption, sent[0].Text)
}

func TestStartClipFailureFallsBackToText(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.media.Set(f.ctx, domain.MediaStartVideo, "clip-start"))
	f.messenger.FailOp("video")

	f.machine.Start(f.ctx, f.user)

	sent := f.messenger.To(candidate)
	require.Len(t, sent, 2)
	assert.Equal(t, "text", sent[0].Op)
	assert.Equal(t, StartCaption, sent[0].Text)
}

func TestRestartDiscardsProgress(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ4)
	require.Equal(t, 4, f.session(t).Answers.Len())

	f.send(domain.Event{Kind: domain.EventStart})

	s := f.session(t)
	assert.Equal(t, domain.StateSelectCategory, s.State)
	assert.Zero(t, s.Answers.Len())
}

func TestCategorySelectionDeletesMenu(t *testing.T) {
	f := newFixture(t)
	f.machine.Start(f.ctx, f.user)
	menu := f.session(t).MenuMessage
	f.messenger.Reset()

	assert.Equal(t, OutcomeAdvanced, f.send(choose(domain.SelectionCategory, "HR")))

	sent := f.messenger.To(candidate)
	require.Len(t, sent, 3)
	assert.Equal(t, helpers.Sent{Op: "ack", To: candidate, Text: AckSelected}, sent[0])
	assert.Equal(t, "delete", sent[1].Op)
	assert.Equal(t, menu, sent[1].MessageID)
	assert.Equal(t, Prompts[0], sent[2].Text)

	v, ok := f.session(t).Answers.Get(domain.LabelCategory)
	require.True(t, ok)
	assert.Equal(t, domain.ChoiceValue("HR"), v)
}

func TestCategoryTextRepromptsMenu(t *testing.T) {
	f := newFixture(t)
	f.machine.Start(f.ctx, f.user)

	assert.Equal(t, OutcomeRejected, f.send(text("HR")))

	last := f.lastToCandidate(t)
	assert.Equal(t, MenuText, last.Text)
	assert.Equal(t, last.MessageID, f.session(t).MenuMessage)
	assert.Equal(t, domain.StateSelectCategory, f.session(t).State)
	assert.Zero(t, f.session(t).Answers.Len())
}

func TestUnknownCategoryIsStale(t *testing.T) {
	f := newFixture(t)
	f.machine.Start(f.ctx, f.user)

	assert.Equal(t, OutcomeStale, f.send(choose(domain.SelectionCategory, "Direktor")))
	assert.Equal(t, domain.StateSelectCategory, f.session(t).State)
}

func TestCategorySelectionOutsideSelectCategoryIsStale(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ3)
	before := f.session(t).Answers.Keys()
	f.messenger.Reset()

	assert.Equal(t, OutcomeStale, f.send(choose(domain.SelectionCategory, "HR")))

	s := f.session(t)
	assert.Equal(t, domain.StateQ3, s.State)
	assert.Equal(t, before, s.Answers.Keys())
	v, _ := s.Answers.Get(domain.LabelCategory)
	assert.Equal(t, "Sotuvchi", v.Value)
	assert.Equal(t, []helpers.Sent{{Op: "ack", To: candidate, Text: StaleNotice, Alert: true}}, f.messenger.To(candidate))
}

func TestSelectionWithoutSessionIsStale(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, OutcomeStale, f.send(choose(domain.SelectionEducation, "oliy")))
	_, ok := f.sessions.Get(candidate)
	assert.False(t, ok)
}

func TestTextWithoutSessionGetsHint(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, OutcomeNoSession, f.send(text("salom")))
	assert.Equal(t, StartHint, f.lastToCandidate(t).Text)
	_, ok := f.sessions.Get(candidate)
	assert.False(t, ok)
}

func TestPhoneValidation(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ2)

	assert.Equal(t, OutcomeRejected, f.send(text("abc")))
	last := f.lastToCandidate(t)
	assert.Equal(t, PhoneRetry, last.Text)
	require.NotNil(t, last.Keyboard)
	assert.Equal(t, domain.KeyboardContact, last.Keyboard.Kind)
	assert.Equal(t, domain.StateQ2, f.session(t).State)

	assert.Equal(t, OutcomeRejected, f.send(media(domain.EventVoice, "v")))
	assert.Equal(t, domain.StateQ2, f.session(t).State)

	assert.Equal(t, OutcomeAdvanced, f.send(text("  +998909998877 ")))
	v, _ := f.session(t).Answers.Get(domain.LabelPhone)
	assert.Equal(t, "+998909998877", v.Value)

	next := f.lastToCandidate(t)
	assert.Equal(t, Prompts[2], next.Text)
	require.NotNil(t, next.Keyboard)
	assert.Equal(t, domain.KeyboardRemove, next.Keyboard.Kind)
}

func TestPhoneContactAcceptedVerbatim(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ2)

	assert.Equal(t, OutcomeAdvanced, f.send(contact("998 90 999 88 77")))
	v, _ := f.session(t).Answers.Get(domain.LabelPhone)
	assert.Equal(t, "998 90 999 88 77", v.Value)
	assert.Equal(t, domain.StateQ3, f.session(t).State)
}

func TestDateValidation(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ4)

	for _, bad := range []string{"2000-01-01", "31.13.2000", "30.02.2000"} {
		assert.Equal(t, OutcomeRejected, f.send(text(bad)), bad)
		assert.Equal(t, DateRetry, f.lastToCandidate(t).Text)
		assert.Equal(t, domain.StateQ4, f.session(t).State)
	}

	assert.Equal(t, OutcomeAdvanced, f.send(text("01.01.2000")))
	assert.Equal(t, domain.StateQ5, f.session(t).State)
	assert.Equal(t, Prompts[4], f.lastToCandidate(t).Text)
}

func TestChoiceStateAcceptsFreeText(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ5)

	f.send(text(" oliy "))
	v, _ := f.session(t).Answers.Get(domain.LabelEducation)
	assert.Equal(t, domain.ChoiceValue("oliy"), v)

	f = newFixture(t)
	f.advanceTo(t, domain.StateQ5)
	f.send(text("kollej"))
	v, _ = f.session(t).Answers.Get(domain.LabelEducation)
	assert.Equal(t, domain.TextValue("kollej"), v)
	assert.Equal(t, domain.StateQ6, f.session(t).State)
}

func TestVoiceRelayAfterMarital(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.media.Set(f.ctx, domain.MediaVoicePrompt, "prompt-voice"))
	f.advanceTo(t, domain.StateQ7)
	f.messenger.Reset()

	f.send(text("ajrashganman"))

	sent := f.messenger.To(candidate)
	require.Len(t, sent, 1)
	assert.Equal(t, "voice", sent[0].Op)
	assert.Equal(t, "prompt-voice", sent[0].Ref)
	assert.Equal(t, Prompts[8], sent[0].Text)
	assert.Equal(t, domain.StateQ9, f.session(t).State)
}

func TestVoiceRelayFallsBackToText(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ7)
	f.messenger.Reset()

	f.send(choose(domain.SelectionMarital, "turmush qurganman"))

	sent := f.messenger.To(candidate)
	require.Len(t, sent, 2)
	assert.Equal(t, "ack", sent[0].Op)
	assert.Equal(t, "text", sent[1].Op)
	assert.Equal(t, Prompts[8], sent[1].Text)
}

func TestVoiceGate(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ9)
	before := f.session(t).Answers.Len()

	for _, ev := range []domain.Event{text("salom"), media(domain.EventVideo, "v"), media(domain.EventDocument, "d")} {
		assert.Equal(t, OutcomeRejected, f.send(ev))
		assert.Equal(t, VoiceRetry, f.lastToCandidate(t).Text)
		assert.Equal(t, before, f.session(t).Answers.Len())
		assert.Equal(t, domain.StateQ9, f.session(t).State)
	}

	assert.Equal(t, OutcomeAdvanced, f.send(media(domain.EventVoice, "voice-9")))
	v, _ := f.session(t).Answers.Get(domain.LabelVoice)
	assert.Equal(t, domain.MediaReference("voice-9"), v)
	assert.Equal(t, Prompts[9], f.lastToCandidate(t).Text)
}

func TestVideoGate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.media.Set(f.ctx, domain.MediaVideoPrompt, "prompt-video"))
	f.advanceTo(t, domain.StateQ10)
	f.messenger.Reset()

	f.send(choose(domain.SelectionRussianLevel, "past"))
	last := f.lastToCandidate(t)
	assert.Equal(t, "video", last.Op)
	assert.Equal(t, Prompts[10], last.Text)

	assert.Equal(t, OutcomeRejected, f.send(media(domain.EventVoice, "v")))
	assert.Equal(t, VideoRetry, f.lastToCandidate(t).Text)
	assert.Equal(t, domain.StateQ11, f.session(t).State)

	assert.Equal(t, OutcomeAdvanced, f.send(media(domain.EventVideoNote, "note-1")))
	v, _ := f.session(t).Answers.Get(domain.LabelVideo)
	assert.Equal(t, "note-1", v.Value)
}

func TestConsentRequiresSelection(t *testing.T) {
	f := newFixture(t)
	f.advanceTo(t, domain.StateQ12)

	assert.Equal(t, OutcomeRejected, f.send(text("ha")))
	assert.Equal(t, Prompts[11], f.lastToCandidate(t).Text)
	assert.Equal(t, domain.StateQ12, f.session(t).State)

	assert.Equal(t, OutcomeAdvanced, f.send(choose(domain.SelectionConsent, "yoq")))
	sent := f.messenger.To(candidate)
	ack := sent[len(sent)-2]
	assert.Equal(t, AckAccepted, ack.Text)
	v, _ := f.session(t).Answers.Get(domain.LabelConsent)
	assert.Equal(t, domain.ChoiceValue("yoq"), v)
}

func TestEachStepAddsOneAnswer(t *testing.T) {
	f := newFixture(t, 100)
	f.machine.Start(f.ctx, f.user)

	for i, step := range script {
		outcome := f.send(step.ev)
		if step.next == "" {
			assert.Equal(t, OutcomeCompleted, outcome)
			break
		}
		require.Equal(t, OutcomeAdvanced, outcome, "step %d", i)
		s := f.session(t)
		assert.Equal(t, step.next, s.State, "step %d", i)
		assert.Equal(t, i+1, s.Answers.Len(), "step %d", i)
	}
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, 100, 200)
	f.send(domain.Event{Kind: domain.EventStart})
	for _, step := range script {
		f.send(step.ev)
	}

	for _, reviewer := range []domain.UserID{100, 200} {
		sent := f.messenger.To(reviewer)
		require.Len(t, sent, 3)
		assert.Equal(t, "text", sent[0].Op)
		lines := strings.Split(sent[0].Text, "\n")
		assert.Len(t, lines, 5+20)
		assert.Equal(t, "💼 Ish turi: Sotuvchi", lines[3])
		assert.NotContains(t, sent[0].Text, "voice-1")
		assert.Equal(t, "voice", sent[1].Op)
		assert.Equal(t, "voice-1", sent[1].Ref)
		assert.Equal(t, "video", sent[2].Op)
		assert.Equal(t, "video-1", sent[2].Ref)
	}

	last := f.lastToCandidate(t)
	assert.Equal(t, CompletionText, last.Text)
	assert.Equal(t, domain.KeyboardRemove, last.Keyboard.Kind)

	_, ok := f.sessions.Get(candidate)
	assert.False(t, ok)

	assert.Equal(t, OutcomeNoSession, f.send(text("yana")))
	_, ok = f.sessions.Get(candidate)
	assert.False(t, ok)
}

func TestReviewerFailureStillAcknowledgesUser(t *testing.T) {
	f := newFixture(t, 100, 200)
	f.messenger.FailFor(100)
	f.machine.Start(f.ctx, f.user)
	for _, step := range script {
		f.send(step.ev)
	}

	assert.Empty(t, f.messenger.To(100))
	assert.Len(t, f.messenger.To(200), 3)
	assert.Equal(t, CompletionText, f.lastToCandidate(t).Text)
	_, ok := f.sessions.Get(candidate)
	assert.False(t, ok)
}
