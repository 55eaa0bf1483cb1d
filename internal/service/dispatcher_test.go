package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
)

type recordingNotifier struct {
	mu     sync.Mutex
	err    error
	events []string
}

func (n *recordingNotifier) Notify(ctx context.Context, event string, orderID uuid.UUID, payload map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

type recordingRenderer struct {
	mu       sync.Mutex
	rendered []uuid.UUID
}

func (r *recordingRenderer) RenderInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, invoiceID)
	return nil
}

func newDispatcherEnv(t *testing.T, notifier Notifier, renderer DocumentRenderer) (*testEnv, *OutboxDispatcher) {
	t.Helper()
	env := newTestEnv(t)
	cfg := config.OutboxConfig{BatchSize: 50, MaxAttempts: 3}
	return env, NewOutboxDispatcher(env.repos.Outbox, notifier, renderer, cfg, zap.NewNop())
}

func TestDispatchOnceDeliversPendingEffects(t *testing.T) {
	notifier := &recordingNotifier{}
	renderer := &recordingRenderer{}
	env, dispatcher := newDispatcherEnv(t, notifier, renderer)

	// Checkout enqueues order.created plus an invoice render effect
	env.createOrder(t)

	n, err := dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, notifier.events, "order.created")
	assert.Len(t, renderer.rendered, 1)

	// Nothing left pending
	pending, err := env.repos.Outbox.ListPending(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second drain is a no-op
	n, err = dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatchFailureIncrementsAttempts(t *testing.T) {
	notifier := &recordingNotifier{err: stderrors.New("endpoint down")}
	env, dispatcher := newDispatcherEnv(t, notifier, &recordingRenderer{})

	order, _ := env.createOrder(t)

	n, err := dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "render effect still delivers when notify fails")

	pending, err := env.repos.Outbox.ListPending(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.EffectTypeNotify, pending[0].EffectType)
	assert.Equal(t, order.ID, pending[0].SubjectID)
	assert.Equal(t, 1, pending[0].Attempts)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "endpoint down", *pending[0].LastError)
}

func TestDispatchGivesUpAtMaxAttempts(t *testing.T) {
	notifier := &recordingNotifier{err: stderrors.New("endpoint down")}
	env, dispatcher := newDispatcherEnv(t, notifier, &recordingRenderer{})

	env.createOrder(t)

	for i := 0; i < 3; i++ {
		_, err := dispatcher.DispatchOnce(context.Background())
		require.NoError(t, err)
	}

	// Third failure is terminal: the entry leaves the pending queue for good
	pending, err := env.repos.Outbox.ListPending(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Recovery after giving up does not resurrect the entry
	notifier.err = nil
	n, err := dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatchRetriesUntilRecovery(t *testing.T) {
	notifier := &recordingNotifier{err: stderrors.New("endpoint down")}
	env, dispatcher := newDispatcherEnv(t, notifier, &recordingRenderer{})

	env.createOrder(t)
	_, err := dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)

	notifier.err = nil
	n, err := dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, notifier.events, "order.created")

	pending, err := env.repos.Outbox.ListPending(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
