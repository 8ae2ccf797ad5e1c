package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/i18n"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/salawat"
)

// ErrBusy is returned by Submit while a previous submission is in flight.
var ErrBusy = errors.New("client: submission already in flight")

// State is the phase of the current submission.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateOptimisticallyApplied
	StateAwaitingServer
	StateReconciled
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateOptimisticallyApplied:
		return "optimistically_applied"
	case StateAwaitingServer:
		return "awaiting_server"
	case StateReconciled:
		return "reconciled"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageSuccess
	MessageError
)

// View is a consistent snapshot of everything a renderer needs.
type View struct {
	Stats       domain.Stats
	State       State
	Amount      string
	Name        string
	Message     string
	MessageKind MessageKind
	Submitting  bool
}

// Submitter is the increment half of Client.
type Submitter interface {
	Increment(ctx context.Context, amount int64, name string) Result
}

// Tracker holds the locally displayed totals and drives one submission at a
// time through validation, optimistic apply and reconciliation. The local
// totals are a cache: Apply overwrites them with authoritative values.
type Tracker struct {
	mu         sync.Mutex
	api        Submitter
	locale     string
	successTTL time.Duration

	stats    domain.Stats
	state    State
	amount   string
	name     string
	message  string
	msgKind  MessageKind
	msgSeq   uint64
	inFlight bool
	applied  uint64
	timer    *time.Timer

	observers []func(View)
}

type TrackerOption func(*Tracker)

// WithSuccessTTL controls how long the success message stays visible. Zero
// keeps it until the next input change.
func WithSuccessTTL(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.successTTL = d }
}

func NewTracker(api Submitter, locale string, opts ...TrackerOption) *Tracker {
	t := &Tracker{api: api, locale: locale, successTTL: 3 * time.Second}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange registers fn to be called with a fresh View after every change.
// Callbacks run outside the tracker lock, in the goroutine that made the change.
func (t *Tracker) OnChange(fn func(View)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

// SetInput records the form fields. Editing clears a previous success message.
func (t *Tracker) SetInput(amount, name string) {
	t.update(func() {
		t.amount, t.name = amount, name
		if t.msgKind == MessageSuccess {
			t.clearMessageLocked()
		}
	})
}

// Apply overwrites the local totals with values read from the server.
func (t *Tracker) Apply(stats domain.Stats) {
	t.update(func() {
		t.stats = stats
		t.applied++
	})
}

// Submit validates the current input, bumps the local totals optimistically
// and sends the increment. On failure the totals captured before the bump are
// restored and the input is kept for a retry.
func (t *Tracker) Submit(ctx context.Context) error {
	var (
		amount   int64
		name     string
		snapshot domain.Stats
		epoch    uint64
		err      error
	)

	t.mu.Lock()
	if t.inFlight {
		t.setMessageLocked(MessageError, i18n.Message(t.locale, i18n.KeySubmitBusy))
		t.mu.Unlock()
		t.notify()
		return ErrBusy
	}
	t.inFlight = true
	t.state = StateValidating
	t.clearMessageLocked()
	t.mu.Unlock()
	t.notify()

	t.update(func() {
		amount, err = salawat.ParseAmountText(t.amount)
		if err != nil {
			key := i18n.KeyAmountInvalid
			if errors.Is(err, salawat.ErrAmountRequired) {
				key = i18n.KeyAmountRequired
			}
			t.setMessageLocked(MessageError, i18n.Message(t.locale, key))
			t.state = StateIdle
			t.inFlight = false
			return
		}
		name = t.name
		snapshot, epoch = t.stats, t.applied
		t.stats = snapshot.Add(amount)
		t.state = StateOptimisticallyApplied
	})
	if err != nil {
		return err
	}

	t.update(func() { t.state = StateAwaitingServer })

	res := t.api.Increment(ctx, amount, name)

	t.update(func() {
		t.inFlight = false
		if res.Err == nil {
			t.stats = res.Stats
			t.amount, t.name = "", ""
			t.state = StateReconciled
			t.setMessageLocked(MessageSuccess, i18n.Message(t.locale, i18n.KeySubmitSuccess))
			t.scheduleClearLocked()
			return
		}
		// Totals applied from the server mid-flight are newer than the snapshot.
		if t.applied == epoch {
			t.stats = snapshot
		}
		key := i18n.KeySubmitFailed
		if res.Kind == KindValidation {
			key = i18n.KeyAmountInvalid
		}
		t.setMessageLocked(MessageError, i18n.Message(t.locale, key))
		t.state = StateRolledBack
	})
	return res.Err
}

// Close stops the success message timer.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker) update(fn func()) {
	t.mu.Lock()
	fn()
	t.mu.Unlock()
	t.notify()
}

func (t *Tracker) notify() {
	t.mu.Lock()
	view := t.viewLocked()
	observers := append([]func(View){}, t.observers...)
	t.mu.Unlock()
	for _, fn := range observers {
		fn(view)
	}
}

func (t *Tracker) viewLocked() View {
	return View{
		Stats:       t.stats,
		State:       t.state,
		Amount:      t.amount,
		Name:        t.name,
		Message:     t.message,
		MessageKind: t.msgKind,
		Submitting:  t.inFlight,
	}
}

func (t *Tracker) setMessageLocked(kind MessageKind, msg string) {
	t.msgSeq++
	t.message, t.msgKind = msg, kind
}

func (t *Tracker) clearMessageLocked() {
	t.setMessageLocked(MessageNone, "")
}

func (t *Tracker) scheduleClearLocked() {
	if t.successTTL <= 0 {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	seq := t.msgSeq
	t.timer = time.AfterFunc(t.successTTL, func() {
		t.mu.Lock()
		if t.msgSeq != seq {
			t.mu.Unlock()
			return
		}
		t.clearMessageLocked()
		if t.state == StateReconciled {
			t.state = StateIdle
		}
		t.mu.Unlock()
		t.notify()
	})
}
