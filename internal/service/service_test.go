package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/anketa/internal/dispatch"
	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/flow"
	"github.com/xiaot623/anketa/internal/policy"
	"github.com/xiaot623/anketa/internal/repository"
	"github.com/xiaot623/anketa/tests/helpers"
)

const (
	primary  domain.UserID = 100
	reviewer domain.UserID = 200
	outsider domain.UserID = 7
)

type fixture struct {
	ctx       context.Context
	svc       *Service
	store     *repository.SQLiteStore
	messenger *helpers.RecordingMessenger
	sessions  *repository.MemorySessionStore
	media     *repository.MediaCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := helpers.NewTestSQLiteStore(t)
	require.NoError(t, store.SeedReviewers(ctx, []domain.UserID{primary, reviewer}))

	engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	require.NoError(t, err)

	f := &fixture{
		ctx:       ctx,
		store:     store,
		messenger: helpers.NewRecordingMessenger(),
		sessions:  repository.NewMemorySessionStore(),
		media:     repository.NewMediaCache(ctx, store, map[string]string{"start_video": "intro.mp4"}, nil),
	}
	machine := flow.NewMachine(flow.Config{
		JobTypes:   []string{"Sotuvchi", "HR"},
		Messenger:  f.messenger,
		Sessions:   f.sessions,
		Media:      f.media,
		Dispatcher: dispatch.NewDispatcher(f.messenger, store, nil, nil),
	})
	f.svc = New(Dependencies{
		Machine:   machine,
		Messenger: f.messenger,
		Sessions:  f.sessions,
		Media:     f.media,
		Captures:  repository.NewMemoryCaptureRegistry(),
		Reviewers: store,
		Policy:    engine,
	}, 8)
	return f
}

func (f *fixture) text(from domain.UserID, text string) {
	f.svc.HandleEvent(f.ctx, domain.Event{Kind: domain.EventText, From: domain.User{ID: from}, Text: text})
}

func (f *fixture) attach(from domain.UserID, kind domain.EventKind, fileID string) {
	f.svc.HandleEvent(f.ctx, domain.Event{Kind: kind, From: domain.User{ID: from}, FileID: fileID})
}

func (f *fixture) lastText(t *testing.T, to domain.UserID) string {
	t.Helper()
	last, ok := f.messenger.Last(to)
	require.True(t, ok, "no message to %s", to)
	return last.Text
}

func TestIDIsOpen(t *testing.T) {
	f := newFixture(t)
	f.text(outsider, "/id")

	last, _ := f.messenger.Last(outsider)
	assert.Equal(t, "Sizning ID: <code>7</code>", last.Text)
	assert.Equal(t, domain.ParseModeHTML, last.ParseMode)
}

func TestSetMediaRequiresReviewer(t *testing.T) {
	f := newFixture(t)
	f.text(outsider, "/setmedia start_video")
	assert.Equal(t, msgAdminsOnly, f.lastText(t, outsider))

	f.attach(outsider, domain.EventVideo, "sneaky")
	assert.Equal(t, "intro.mp4", f.media.Get(domain.MediaStartVideo))
}

func TestSetMediaValidatesKey(t *testing.T) {
	f := newFixture(t)
	f.text(reviewer, "/setmedia")
	assert.Equal(t, msgSetMediaUsage, f.lastText(t, reviewer))

	f.text(reviewer, "/setmedia intro")
	assert.Equal(t, msgBadMediaKey, f.lastText(t, reviewer))
}

func TestCaptureOverridesDefault(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "intro.mp4", f.media.Get(domain.MediaStartVideo))

	f.text(reviewer, "/setmedia start_video")
	assert.Contains(t, f.lastText(t, reviewer), "start_video")

	f.attach(reviewer, domain.EventVideoNote, "clip-42")
	assert.Equal(t, "clip-42", f.media.Get(domain.MediaStartVideo))
	assert.Equal(t, "✅ Saved `start_video` as file_id:\n`clip-42`", f.lastText(t, reviewer))

	stored, err := f.store.LoadMedia(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "clip-42", stored[domain.MediaStartVideo])

	f.svc.HandleEvent(f.ctx, domain.Event{Kind: domain.EventStart, From: domain.User{ID: outsider}})
	first := f.messenger.To(outsider)[0]
	assert.Equal(t, "video", first.Op)
	assert.Equal(t, "clip-42", first.Ref)

	// The capture is consumed by the first media event.
	f.attach(reviewer, domain.EventVideo, "clip-43")
	assert.Equal(t, "clip-42", f.media.Get(domain.MediaStartVideo))
}

func TestCaptureBypassesQuestionnaire(t *testing.T) {
	f := newFixture(t)
	f.text(reviewer, "/start")
	f.svc.HandleEvent(f.ctx, domain.Event{
		Kind:      domain.EventSelection,
		From:      domain.User{ID: reviewer},
		Selection: domain.Selection{Kind: domain.SelectionCategory, Value: "HR"},
	})
	s, ok := f.sessions.Get(reviewer)
	require.True(t, ok)
	require.Equal(t, domain.StateQ1, s.State)

	f.text(reviewer, "/setmedia q9_voice_prompt")
	f.attach(reviewer, domain.EventVoice, "voice-prompt")

	assert.Equal(t, "voice-prompt", f.media.Get(domain.MediaVoicePrompt))
	s, _ = f.sessions.Get(reviewer)
	assert.Equal(t, domain.StateQ1, s.State)
	assert.Equal(t, 1, s.Answers.Len())
}

func TestCaptureWithoutFileID(t *testing.T) {
	f := newFixture(t)
	f.text(reviewer, "/setmedia q11_video_prompt")
	f.attach(reviewer, domain.EventDocument, "")

	assert.Equal(t, msgCaptureNoFileID, f.lastText(t, reviewer))
	assert.Empty(t, f.media.Get(domain.MediaVideoPrompt))
}

func TestGetMedia(t *testing.T) {
	f := newFixture(t)
	f.text(reviewer, "/getmedia start_video")
	assert.Equal(t, "start_video => `intro.mp4`", f.lastText(t, reviewer))

	f.text(reviewer, "/getmedia q9_voice_prompt")
	assert.Equal(t, "q9_voice_prompt hozircha o'rnatilmagan.", f.lastText(t, reviewer))

	f.text(reviewer, "/getmedia")
	assert.Equal(t, msgGetMediaUsage, f.lastText(t, reviewer))

	f.text(outsider, "/getmedia start_video")
	assert.Equal(t, msgAdminsOnly, f.lastText(t, outsider))
}

func TestReviewerCommands(t *testing.T) {
	f := newFixture(t)

	f.text(outsider, "/list_admins")
	assert.Equal(t, msgListAdminsOnly, f.lastText(t, outsider))

	f.text(outsider, "/add_admin 7")
	assert.Equal(t, msgPrimaryOnly, f.lastText(t, outsider))

	f.text(reviewer, "/add_admin abc")
	assert.Equal(t, msgAddAdminUsage, f.lastText(t, reviewer))

	f.text(reviewer, "/add_admin 300")
	assert.Equal(t, "✅ Admin qo'shildi: 300", f.lastText(t, reviewer))

	f.text(reviewer, "/add_admin 300")
	assert.Equal(t, msgAlreadyAdmin, f.lastText(t, reviewer))

	f.text(primary, "/list_admins")
	assert.Equal(t, "Adminlar:\n100\n200\n300", f.lastText(t, primary))

	f.text(reviewer, "/remove_admin 100")
	assert.Equal(t, msgPrimaryRemoval, f.lastText(t, reviewer))

	f.text(reviewer, "/remove_admin 999")
	assert.Equal(t, msgNotAdmin, f.lastText(t, reviewer))

	f.text(reviewer, "/remove_admin")
	assert.Equal(t, msgRemoveUsage, f.lastText(t, reviewer))

	f.text(primary, "/remove_admin 300")
	assert.Equal(t, "✅ Admin o'chirildi: 300", f.lastText(t, primary))

	ids, err := f.svc.ListReviewers(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{primary, reviewer}, ids)
}

func TestUnknownCommandReachesQuestionnaire(t *testing.T) {
	f := newFixture(t)
	f.text(outsider, "/help")
	assert.Equal(t, flow.StartHint, f.lastText(t, outsider))
}

func TestSlashStartWithBotSuffix(t *testing.T) {
	f := newFixture(t)
	f.text(outsider, "/start@anketa_bot")
	s, ok := f.sessions.Get(outsider)
	require.True(t, ok)
	assert.Equal(t, domain.StateSelectCategory, s.State)
}

func TestSubmitQueueFull(t *testing.T) {
	f := newFixture(t)
	svc := New(Dependencies{Machine: nil, Sessions: f.sessions}, 1)

	ev := domain.Event{Kind: domain.EventText, From: domain.User{ID: outsider}, Text: "x"}
	require.NoError(t, svc.Submit(f.ctx, ev))
	assert.ErrorIs(t, svc.Submit(f.ctx, ev), ErrQueueFull)
}

func TestRunHandlesSubmittedEvents(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)
	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	user := domain.User{ID: outsider, FullName: "Ali"}
	require.NoError(t, f.svc.Submit(ctx, domain.Event{Kind: domain.EventStart, From: user}))
	require.NoError(t, f.svc.Submit(ctx, domain.Event{
		Kind:      domain.EventSelection,
		From:      user,
		Selection: domain.Selection{Kind: domain.SelectionCategory, Value: "Sotuvchi"},
	}))
	require.NoError(t, f.svc.Submit(ctx, domain.Event{Kind: domain.EventText, From: user, Text: "Ali Valiyev"}))

	require.Eventually(t, func() bool {
		s, ok := f.sessions.Get(outsider)
		return ok && s.State == domain.StateQ2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.svc.ActiveSessions())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestAdminOperations(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.SetMediaRef(f.ctx, "q9_voice_prompt", "v.ogg"))
	ref, err := f.svc.MediaRef("q9_voice_prompt")
	require.NoError(t, err)
	assert.Equal(t, "v.ogg", ref)
	assert.Len(t, f.svc.MediaRefs(), 2)

	assert.ErrorIs(t, f.svc.SetMediaRef(f.ctx, "bogus", "x"), domain.ErrUnknownMediaKey)
	_, err = f.svc.MediaRef("bogus")
	assert.ErrorIs(t, err, domain.ErrUnknownMediaKey)

	require.NoError(t, f.svc.AddReviewer(f.ctx, 300))
	assert.ErrorIs(t, f.svc.RemoveReviewer(f.ctx, primary), domain.ErrPrimaryReviewer)
	require.NoError(t, f.svc.RemoveReviewer(f.ctx, 300))
}
