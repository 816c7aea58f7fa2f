package audit

import (
	"context"
	"time"

	evbus "github.com/asaskevich/EventBus"
)

const topicRecord = "audit.record"

// Action labels what an administrator did with a resource.
type Action string

const (
	ActionList    Action = "list"
	ActionView    Action = "view"
	ActionPublish Action = "publish"
	ActionDelete  Action = "delete"
)

// Entry is one immutable audit record. Once handed to the recorder it is
// append-only; nothing in the core updates or deletes audit rows.
type Entry struct {
	ActorID      uint
	Action       Action
	ResourceType string
	ResourceID   string
	Description  string
	Metadata     map[string]any
	RequestID    string
	IP           string
	UserAgent    string
	CreatedAt    time.Time
}

// Sink persists audit entries. The storage layer provides the implementation.
type Sink interface {
	Append(ctx context.Context, entry *Entry) error
}

// Recorder queues audit entries on an async bus and writes them off the
// request path. A write failure is handed to the error sink and swallowed;
// it never fails the operation being audited.
type Recorder struct {
	bus     evbus.Bus
	sink    Sink
	onError func(error)
	timeout time.Duration
}

func NewRecorder(sink Sink, onError func(error)) (*Recorder, error) {
	r := &Recorder{
		bus:     evbus.New(),
		sink:    sink,
		onError: onError,
		timeout: 10 * time.Second,
	}
	if err := r.bus.SubscribeAsync(topicRecord, r.handle, false); err != nil {
		return nil, err
	}
	return r, nil
}

// Record queues the entry. It returns immediately; the caller cannot observe
// persistence failures.
func (r *Recorder) Record(entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.bus.Publish(topicRecord, entry)
}

func (r *Recorder) handle(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.sink.Append(ctx, &entry); err != nil && r.onError != nil {
		r.onError(err)
	}
}

// Close drains queued entries, blocking until every in-flight write handler
// has finished. Called once during shutdown.
func (r *Recorder) Close() {
	r.bus.WaitAsync()
}
