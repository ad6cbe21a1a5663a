package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhofmann/dsar/internal/compose"
	"github.com/anhofmann/dsar/internal/lifecycle"
	"github.com/anhofmann/dsar/internal/request"
	"github.com/anhofmann/dsar/internal/store"
)

var day0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return day0.Add(time.Duration(n) * 24 * time.Hour)
}

type sentMail struct {
	to      string
	subject string
}

// fakeNotifier records sends and can be switched to fail
type fakeNotifier struct {
	mu       sync.Mutex
	sent     []sentMail
	failWith error
}

func (f *fakeNotifier) Send(_ context.Context, recipient, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, sentMail{to: recipient, subject: subject})
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fixture struct {
	sched    *Scheduler
	store    store.Store
	notifier *fakeNotifier
	company  *request.Company
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	if st == nil {
		st = store.NewMemoryStore()
	}
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := New(st, notifier, compose.NewComposer("de"), lifecycle.DefaultPolicy(), logger)

	co := request.NewCompany("Beispiel GmbH", "datenschutz@beispiel.example", day0)
	require.NoError(t, st.CreateCompany(context.Background(), co))

	return &fixture{sched: sched, store: st, notifier: notifier, company: co}
}

// sentRequest creates a request and commits it through DRAFT→SENT at day 0
func (f *fixture) sentRequest(t *testing.T) *request.Request {
	t.Helper()
	ctx := context.Background()
	r := request.New(f.company.ID, request.KindDeletion, "de", day0)
	require.NoError(t, f.store.CreateRequest(ctx, r))
	require.NoError(t, f.sched.SendRequest(ctx, r.ID, day0))
	got, err := f.store.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) reload(t *testing.T, id string) *request.Request {
	t.Helper()
	r, err := f.store.GetRequest(context.Background(), id)
	require.NoError(t, err)
	return r
}

func resultsByID(outcomes []Outcome) map[string]Outcome {
	m := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		m[o.RequestID] = o
	}
	return m
}

func TestSendRequestCommitsTransition(t *testing.T) {
	f := newFixture(t, nil)
	r := f.sentRequest(t)

	assert.Equal(t, request.StatusSent, r.Status)
	require.NotNil(t, r.SentAt)
	assert.Equal(t, day0, *r.SentAt)
	assert.Equal(t, 1, f.notifier.count())
	assert.Contains(t, f.notifier.sent[0].subject, "Art. 17 DSGVO")
	assert.Equal(t, f.company.Email, f.notifier.sent[0].to)
}

func TestSendRequestRejectsNonDraft(t *testing.T) {
	f := newFixture(t, nil)
	r := f.sentRequest(t)

	err := f.sched.SendRequest(context.Background(), r.ID, day(1))
	require.Error(t, err)
	assert.Equal(t, 1, f.notifier.count(), "no second send")
}

func TestRunNotDueBeforeThreshold(t *testing.T) {
	f := newFixture(t, nil)
	r := f.sentRequest(t)

	outcomes, err := f.sched.Run(context.Background(), day(13))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultSkipped, outcomes[0].Result)
	assert.Equal(t, request.StatusSent, f.reload(t, r.ID).Status)
	assert.Equal(t, 1, f.notifier.count(), "only the original send")
}

func TestRunSendsReminderAfterThreshold(t *testing.T) {
	f := newFixture(t, nil)
	r := f.sentRequest(t)

	outcomes, err := f.sched.Run(context.Background(), day(15))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultSent, outcomes[0].Result)
	assert.Equal(t, lifecycle.DecisionReminder, outcomes[0].Action)

	got := f.reload(t, r.ID)
	assert.Equal(t, request.StatusReminded, got.Status)
	assert.Equal(t, 1, got.ReminderCount)
	assert.Equal(t, day(15), *got.LastContactAt)
	assert.Contains(t, f.notifier.sent[1].subject, "Erinnerung")
}

func TestRunIsIdempotentWithinWindow(t *testing.T) {
	f := newFixture(t, nil)
	r := f.sentRequest(t)

	_, err := f.sched.Run(context.Background(), day(15))
	require.NoError(t, err)
	sends := f.notifier.count()

	outcomes, err := f.sched.Run(context.Background(), day(15))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultSkipped, outcomes[0].Result)
	assert.Equal(t, sends, f.notifier.count(), "second run must not resend")
	assert.Equal(t, 1, f.reload(t, r.ID).ReminderCount)
}

func TestRunEscalatesFromOriginalSend(t *testing.T) {
	f := newFixture(t, nil)
	r := f.sentRequest(t)

	_, err := f.sched.Run(context.Background(), day(15))
	require.NoError(t, err)

	// Well past 30 days from sent_at even though the reminder is recent.
	outcomes, err := f.sched.Run(context.Background(), day(31))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultSent, outcomes[0].Result)
	assert.Equal(t, lifecycle.DecisionEscalation, outcomes[0].Action)

	got := f.reload(t, r.ID)
	assert.Equal(t, request.StatusEscalated, got.Status)
	assert.True(t, got.Escalated)
	assert.Contains(t, f.notifier.sent[2].subject, "Letzte Mahnung")

	// Escalation fires exactly once.
	outcomes, err = f.sched.Run(context.Background(), day(60))
	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, outcomes[0].Result)
}

func TestRunTransportFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, nil)
	r := f.sentRequest(t)
	f.notifier.failWith = assert.AnError

	outcomes, err := f.sched.Run(context.Background(), day(15))
	require.NoError(t, err, "a failed send is an outcome, not a batch error")
	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultFailed, outcomes[0].Result)
	assert.ErrorIs(t, outcomes[0].Err, assert.AnError)

	got := f.reload(t, r.ID)
	assert.Equal(t, request.StatusSent, got.Status)
	assert.Equal(t, 0, got.ReminderCount)

	// The next run retries and succeeds.
	f.notifier.failWith = nil
	outcomes, err = f.sched.Run(context.Background(), day(16))
	require.NoError(t, err)
	assert.Equal(t, ResultSent, outcomes[0].Result)
	assert.Equal(t, request.StatusReminded, f.reload(t, r.ID).Status)
}

func TestRunPartialFailureDoesNotBlockOthers(t *testing.T) {
	st := store.NewMemoryStore()
	f := newFixture(t, st)
	ctx := context.Background()

	healthy := f.sentRequest(t)

	// Second request addressed to a company the store no longer knows.
	orphan := request.New("gone-company", request.KindAccess, "en", day0)
	sentAt := day0
	orphan.Status = request.StatusSent
	orphan.SentAt = &sentAt
	orphan.LastContactAt = &sentAt
	require.NoError(t, st.CreateRequest(ctx, orphan))

	outcomes, err := f.sched.Run(ctx, day(15))
	require.NoError(t, err)
	byID := resultsByID(outcomes)

	assert.Equal(t, ResultFailed, byID[orphan.ID].Result)
	assert.Equal(t, ResultSent, byID[healthy.ID].Result)
	assert.Equal(t, request.StatusReminded, f.reload(t, healthy.ID).Status)
}

// conflictingStore simulates a concurrent scheduler instance winning the
// commit race once
type conflictingStore struct {
	store.Store
	mu        sync.Mutex
	conflicts int
}

func (c *conflictingStore) SaveRequest(ctx context.Context, r *request.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conflicts > 0 {
		c.conflicts--
		return store.ErrConflict
	}
	return c.Store.SaveRequest(ctx, r)
}

func TestRunSurfacesCommitConflict(t *testing.T) {
	cs := &conflictingStore{Store: store.NewMemoryStore()}
	f := newFixture(t, cs)
	r := f.sentRequest(t)

	cs.mu.Lock()
	cs.conflicts = 1
	cs.mu.Unlock()

	outcomes, err := f.sched.Run(context.Background(), day(15))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultConflict, outcomes[0].Result)
	assert.ErrorIs(t, outcomes[0].Err, store.ErrConflict)

	// The losing commit changed nothing; the next run re-decides from the
	// persisted state.
	got := f.reload(t, r.ID)
	assert.Equal(t, request.StatusSent, got.Status)
	assert.Equal(t, 0, got.ReminderCount)
}

func TestRunIgnoresTerminalRequests(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	r := f.sentRequest(t)

	_, err := f.sched.ProcessResponse(ctx, r.ID, "Ihre Daten wurden gelöscht.", day(5))
	require.NoError(t, err)

	outcomes, err := f.sched.Run(ctx, day(90))
	require.NoError(t, err)
	assert.Empty(t, outcomes, "terminal requests are not even loaded")
}

func TestSendAllDrafts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := request.New(f.company.ID, request.KindDeletion, "de", day0)
	second := request.New(f.company.ID, request.KindAccess, "en", day0.Add(time.Minute))
	require.NoError(t, f.store.CreateRequest(ctx, first))
	require.NoError(t, f.store.CreateRequest(ctx, second))

	outcomes, err := f.sched.SendAllDrafts(ctx, day0)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, ResultSent, o.Result)
	}
	assert.Equal(t, request.StatusSent, f.reload(t, first.ID).Status)
	assert.Equal(t, request.StatusSent, f.reload(t, second.ID).Status)
}

func TestCloseRequest(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	r := f.sentRequest(t)

	require.NoError(t, f.sched.CloseRequest(ctx, r.ID, day(3)))
	assert.Equal(t, request.StatusClosed, f.reload(t, r.ID).Status)

	// Closing twice fails: terminal statuses are absorbing.
	assert.Error(t, f.sched.CloseRequest(ctx, r.ID, day(4)))
}
