// Package dispatch serializes game events per user and drives the
// engine against the session store. It also owns the timers that wake
// defeated players once their recovery rest is over.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/questline-rpg/engine/internal/store"
	"github.com/questline-rpg/engine/pkg/engine"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/session"
)

// Notifier pushes unsolicited narrations to a user, such as the wake-up
// message after recovery. A nil notifier drops them; the next inbound
// event still resumes play lazily.
type Notifier func(userID string, msgs []narration.Narration)

// Dispatcher routes events into the engine one at a time per user.
type Dispatcher struct {
	engine *engine.Engine
	store  store.Store
	logger *slog.Logger
	notify Notifier

	mu     sync.Mutex
	users  map[string]*sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// New creates a dispatcher over an engine and a session store.
func New(eng *engine.Engine, st store.Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		engine: eng,
		store:  st,
		logger: logger,
		users:  make(map[string]*sync.Mutex),
		timers: make(map[string]*time.Timer),
	}
}

// SetNotifier installs the push channel for scheduled wake-ups.
func (d *Dispatcher) SetNotifier(n Notifier) {
	d.notify = n
}

// Dispatch handles one inbound action for a user. A missing session is
// created on first contact. Events for the same user never interleave.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, action string) ([]narration.Narration, error) {
	if userID == "" {
		return nil, fmt.Errorf("dispatch: user id is required")
	}
	lock := d.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := d.store.Load(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		sess = session.New(userID, time.Now())
		d.logger.Info("session created", "user_id", userID)
	} else if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	out, err := d.engine.HandleEvent(sess, action)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	if err := d.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	if sess.Mode == session.ModeRecovering {
		d.scheduleResume(userID, sess.RecoverUntil)
	}
	return out, nil
}

// Reset deletes a user's session, restarting the game on next contact.
func (d *Dispatcher) Reset(ctx context.Context, userID string) error {
	lock := d.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	d.cancelResume(userID)
	return d.store.Delete(ctx, userID)
}

// Close stops every pending wake-up timer.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}

func (d *Dispatcher) userLock(userID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		d.users[userID] = lock
	}
	return lock
}

// scheduleResume arms a timer that ends the user's recovery rest. The
// deadline check in the engine stays authoritative; the timer only
// avoids waiting for the next inbound event.
func (d *Dispatcher) scheduleResume(userID string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[userID]; ok {
		t.Stop()
	}
	delay := max(time.Until(at), 0) + 50*time.Millisecond
	d.timers[userID] = time.AfterFunc(delay, func() { d.resume(userID) })
}

func (d *Dispatcher) cancelResume(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[userID]; ok {
		t.Stop()
		delete(d.timers, userID)
	}
}

func (d *Dispatcher) resume(userID string) {
	d.cancelResume(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lock := d.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := d.store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			d.logger.Error("Failed to load session for wake-up", "user_id", userID, "error", err)
		}
		return
	}

	out, changed := d.engine.ResumeIfRecovered(sess)
	if !changed {
		return
	}
	if err := d.store.Save(ctx, sess); err != nil {
		d.logger.Error("Failed to save resumed session", "user_id", userID, "error", err)
		return
	}
	if d.notify != nil {
		d.notify(userID, out)
	}
}
