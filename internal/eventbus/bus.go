package eventbus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// Observer reacts to task changes. Only comparable implementations (usually
// pointers) are deduplicated by Subscribe and removable by Unsubscribe.
type Observer interface {
	HandleTaskChange(ctx context.Context, ev domain.ChangeEvent) error
}

// Bus fans a change event out to every subscribed observer, synchronously
// and in subscription order.
type Bus struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe registers o once; repeated calls are no-ops.
func (b *Bus) Subscribe(o Observer) {
	if o == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.ContainsFunc(b.observers, func(cur Observer) bool { return sameObserver(cur, o) }) {
		return
	}
	if !reflect.TypeOf(o).Comparable() {
		b.logger.Warn("observer is not comparable and cannot be unsubscribed",
			zap.String("observer", fmt.Sprintf("%T", o)),
		)
	}
	b.observers = append(b.observers, o)
}

// Unsubscribe removes o; unknown observers are ignored.
func (b *Bus) Unsubscribe(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = slices.DeleteFunc(b.observers, func(cur Observer) bool { return sameObserver(cur, o) })
}

// sameObserver compares identities without panicking on observers whose
// dynamic type does not support ==.
func sameObserver(a, b Observer) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

// Publish delivers ev to every observer. Each observer receives its own copy
// of the task snapshot. A failing or panicking observer does not stop
// delivery; all failures are returned joined.
func (b *Bus) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	b.mu.RLock()
	observers := slices.Clone(b.observers)
	b.mu.RUnlock()

	var errs []error
	for _, o := range observers {
		delivered := ev
		delivered.Task = ev.Task.Clone()
		if err := b.deliver(ctx, o, delivered); err != nil {
			b.logger.Warn("observer failed",
				zap.String("observer", fmt.Sprintf("%T", o)),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, o Observer, ev domain.ChangeEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer %T panicked: %v", o, r)
		}
	}()
	return o.HandleTaskChange(ctx, ev)
}
