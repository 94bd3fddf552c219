package replicate

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultSuppressWindow covers the local change callback fired by
	// applying a remote value, without blocking a fast follow-up edit.
	DefaultSuppressWindow = 100 * time.Millisecond

	// DefaultDebounce coalesces rapid local edits into one network write.
	DefaultDebounce = 500 * time.Millisecond
)

// Sender writes one complete message to a named topic.
type Sender interface {
	Send(topic, text string) error
}

// Document replicates one mutable text value over a topic with
// last-writer-wins semantics. A suppress latch prevents a freshly applied
// remote update from being re-broadcast as a local edit, and a single-slot
// trailing-edge debounce timer limits outbound writes. If both participants
// edit within the debounce window one edit is silently discarded; that is
// the accepted trade-off for a two-party pairing session, not a bug.
type Document struct {
	topic  string
	sender Sender

	suppressWindow time.Duration
	debounce       time.Duration

	mu            sync.Mutex
	value         string
	suppressed    bool
	suppressTimer *time.Timer
	pendingSend   *time.Timer
	closed        bool
}

type Option func(*Document)

// WithTimings overrides the suppress window and debounce interval.
func WithTimings(suppress, debounce time.Duration) Option {
	return func(d *Document) {
		d.suppressWindow = suppress
		d.debounce = debounce
	}
}

func NewDocument(topic string, sender Sender, opts ...Option) *Document {
	d := &Document{
		topic:          topic,
		sender:         sender,
		suppressWindow: DefaultSuppressWindow,
		debounce:       DefaultDebounce,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ApplyRemote installs a value received from the counterpart and arms the
// suppress latch. The latch self-clears after the suppress window so
// genuinely new local edits are not permanently blocked.
func (d *Document) ApplyRemote(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.value = value
	d.suppressed = true

	// A debounced local edit that is overtaken by the remote value loses
	// outright; flushing it now would broadcast the counterpart's own
	// value back at them.
	if d.pendingSend != nil {
		d.pendingSend.Stop()
		d.pendingSend = nil
	}

	if d.suppressTimer != nil {
		d.suppressTimer.Stop()
	}

	d.suppressTimer = time.AfterFunc(d.suppressWindow, func() {
		d.mu.Lock()
		d.suppressed = false
		d.mu.Unlock()
	})
}

// LocalEdit records a local change and (re)schedules the single debounced
// outbound write. Edits observed while the suppress latch is armed are
// echoes of ApplyRemote and are dropped entirely.
func (d *Document) LocalEdit(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.suppressed {
		return
	}

	d.value = value

	if d.pendingSend != nil {
		d.pendingSend.Stop()
	}

	d.pendingSend = time.AfterFunc(d.debounce, d.flush)
}

func (d *Document) flush() {
	d.mu.Lock()

	// suppressed covers the race where the timer fires while ApplyRemote
	// is cancelling it; the value held here is the remote's own.
	if d.closed || d.suppressed {
		d.mu.Unlock()
		return
	}

	value := d.value
	d.pendingSend = nil

	d.mu.Unlock()

	// Replication is best-effort: the next debounced write is the retry.
	if err := d.sender.Send(d.topic, value); err != nil {
		slog.Warn("replicate send", slog.String("topic", d.topic), slog.Any("error", err))
	}
}

func (d *Document) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.value
}

// Close cancels pending timers. A timer that already fired becomes a no-op.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true

	if d.suppressTimer != nil {
		d.suppressTimer.Stop()
	}

	if d.pendingSend != nil {
		d.pendingSend.Stop()
	}
}
