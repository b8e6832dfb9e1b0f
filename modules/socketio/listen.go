package socketio

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/callable"
	"github.com/vk/actorgrid/internal/options"
	"github.com/zishang520/engine.io/v2/types"
)

// Listen is a standalone that connects to a server and forwards the first
// argument of every matching event to a callable sink. It returns after
// Count events, after Duration or when the run ends, whichever comes
// first. With neither Count nor Duration set it listens until the run
// ends.
type Listen struct {
	actor.Base
	Connection

	Event    string
	Callable string
	Count    int
	Duration time.Duration

	ref *callable.Reference
}

func NewListen() *Listen { return &Listen{} }

func (l *Listen) Configure(o *options.Options) error {
	if err := l.configure(o); err != nil {
		return err
	}
	var err error
	if l.Event, err = o.String("event", ""); err != nil {
		return err
	}
	if l.Callable, err = o.String("callable", ""); err != nil {
		return err
	}
	if l.Count, err = o.Int("count", 0); err != nil {
		return err
	}
	l.Duration, err = o.Duration("duration", 0)
	return err
}

func (l *Listen) SetUp(context.Context) error {
	if err := l.validate(); err != nil {
		return err
	}
	if l.Event == "" {
		return errors.New("no event configured")
	}
	if l.Count < 0 {
		return errors.New("count must not be negative")
	}
	l.ref = callable.NewReference(l.Callable, actor.RoleSink)
	_, err := l.ref.Resolve(l)
	return err
}

func (l *Listen) Execute(ctx context.Context) error {
	target, err := l.ref.Resolve(l)
	if err != nil {
		return err
	}
	logger := l.Logger(ctx)
	client, err := l.dial(ctx, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect()

	var listenCtx context.Context
	var cancel context.CancelFunc
	if l.Duration > 0 {
		listenCtx, cancel = context.WithTimeout(ctx, l.Duration)
	} else {
		listenCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	event := l.Expand(l.Event)
	var seen atomic.Int64
	failed := make(chan error, 1)
	notify := make(chan struct{}, 1)
	client.On(types.EventName(event), func(data ...any) {
		if listenCtx.Err() != nil || (l.Count > 0 && seen.Load() >= int64(l.Count)) {
			return
		}
		var payload any
		if len(data) > 0 {
			payload = fromWire(data[0])
		}
		if _, err := callable.Invoke(listenCtx, target, l.NewToken(payload)); err != nil {
			select {
			case failed <- err:
			default:
			}
			return
		}
		seen.Add(1)
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	logger.Debug("Listening for events.", "event", event, "count", l.Count, "duration", l.Duration)

	for {
		select {
		case err := <-failed:
			return err
		case <-notify:
			if l.Count > 0 && seen.Load() >= int64(l.Count) {
				logger.Debug("Received all events.", "count", seen.Load())
				return nil
			}
		case <-listenCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Debug("Listening time elapsed.", "received", seen.Load())
			return nil
		}
	}
}

func (l *Listen) CleanUp() { l.ref = nil }
