package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/taskboard/domain"
)

type recorder struct {
	name  string
	calls *[]string
	err   error
	panic bool
}

func (r *recorder) HandleTaskChange(_ context.Context, ev domain.ChangeEvent) error {
	*r.calls = append(*r.calls, r.name+":"+string(ev.Kind))
	if r.panic {
		panic("boom")
	}
	return r.err
}

func newEvent(kind domain.ChangeKind) domain.ChangeEvent {
	return domain.ChangeEvent{
		Task:       &domain.Task{ID: "t1", Title: "Write report", CreatedBy: "u1"},
		Kind:       kind,
		OccurredAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	var calls []string
	bus := New(zaptest.NewLogger(t))
	bus.Subscribe(&recorder{name: "a", calls: &calls})
	bus.Subscribe(&recorder{name: "b", calls: &calls})
	bus.Subscribe(&recorder{name: "c", calls: &calls})

	require.NoError(t, bus.Publish(context.Background(), newEvent(domain.ChangeCreated)))
	assert.Equal(t, []string{"a:created", "b:created", "c:created"}, calls)
}

func TestBus_SubscribeIsIdempotent(t *testing.T) {
	var calls []string
	bus := New(nil)
	obs := &recorder{name: "a", calls: &calls}

	bus.Subscribe(obs)
	bus.Subscribe(obs)
	bus.Subscribe(nil)

	require.NoError(t, bus.Publish(context.Background(), newEvent(domain.ChangeUpdated)))
	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, []string{"a:updated"}, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	var calls []string
	bus := New(nil)
	a := &recorder{name: "a", calls: &calls}
	b := &recorder{name: "b", calls: &calls}
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Unsubscribe(a)
	bus.Unsubscribe(&recorder{name: "never", calls: &calls})

	require.NoError(t, bus.Publish(context.Background(), newEvent(domain.ChangeDeleted)))
	assert.Equal(t, []string{"b:deleted"}, calls)
}

func TestBus_FailuresAreIsolated(t *testing.T) {
	var calls []string
	bus := New(zaptest.NewLogger(t))
	failure := errors.New("disk full")
	bus.Subscribe(&recorder{name: "a", calls: &calls, err: failure})
	bus.Subscribe(&recorder{name: "b", calls: &calls, panic: true})
	bus.Subscribe(&recorder{name: "c", calls: &calls})

	err := bus.Publish(context.Background(), newEvent(domain.ChangeCompleted))

	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, []string{"a:completed", "b:completed", "c:completed"}, calls)
}

type mutator struct{}

func (mutator) HandleTaskChange(_ context.Context, ev domain.ChangeEvent) error {
	ev.Task.Title = "changed"
	return nil
}

type titleCapture struct{ title string }

func (c *titleCapture) HandleTaskChange(_ context.Context, ev domain.ChangeEvent) error {
	c.title = ev.Task.Title
	return nil
}

func TestBus_ObserversGetPrivateSnapshots(t *testing.T) {
	bus := New(nil)
	capture := &titleCapture{}
	bus.Subscribe(mutator{})
	bus.Subscribe(capture)

	ev := newEvent(domain.ChangeUpdated)
	require.NoError(t, bus.Publish(context.Background(), ev))

	assert.Equal(t, "Write report", capture.title)
	assert.Equal(t, "Write report", ev.Task.Title)
}

type observerFunc func(ctx context.Context, ev domain.ChangeEvent) error

func (f observerFunc) HandleTaskChange(ctx context.Context, ev domain.ChangeEvent) error {
	return f(ctx, ev)
}

type taggedObserver struct {
	tags  []string
	calls *[]string
}

func (o taggedObserver) HandleTaskChange(_ context.Context, ev domain.ChangeEvent) error {
	*o.calls = append(*o.calls, o.tags[0]+":"+string(ev.Kind))
	return nil
}

func TestBus_NonComparableObservers(t *testing.T) {
	var calls []string
	bus := New(zaptest.NewLogger(t))
	fn := observerFunc(func(_ context.Context, ev domain.ChangeEvent) error {
		calls = append(calls, "fn:"+string(ev.Kind))
		return nil
	})
	tagged := taggedObserver{tags: []string{"tagged"}, calls: &calls}
	ptr := &recorder{name: "ptr", calls: &calls}

	require.NotPanics(t, func() {
		bus.Subscribe(ptr)
		bus.Subscribe(fn)
		bus.Subscribe(tagged)
		bus.Unsubscribe(fn)
		bus.Unsubscribe(tagged)
		bus.Unsubscribe(ptr)
	})
	assert.Equal(t, 2, bus.Len())

	require.NoError(t, bus.Publish(context.Background(), newEvent(domain.ChangeCompleted)))
	assert.Equal(t, []string{"fn:completed", "tagged:completed"}, calls)
}
