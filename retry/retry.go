// Package retry wraps fallible operations with classified retry and
// exponential backoff, and keeps the session-scoped record of failures.
package retry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexcrawl/lexcrawl"
)

// Log is a session-scoped error list. Every finished call chain that failed
// at least once leaves a record here, whether or not it eventually
// succeeded. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	records []*lexcrawl.ErrorRecord
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a terminal record.
func (l *Log) Append(r *lexcrawl.ErrorRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
}

// Records returns a snapshot of the accumulated records.
func (l *Log) Records() []*lexcrawl.ErrorRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*lexcrawl.ErrorRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Unresolved returns the records whose call chains never succeeded.
func (l *Log) Unresolved() []*lexcrawl.ErrorRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*lexcrawl.ErrorRecord
	for _, r := range l.records {
		if !r.Resolved {
			out = append(out, r)
		}
	}
	return out
}

// Options configures one retried call chain.
type Options struct {
	// MaxRetries bounds re-invocations after the initial attempt.
	// Defaults to 3.
	MaxRetries int

	// BaseDelay is the backoff unit; retry n sleeps BaseDelay << n.
	// Defaults to one second.
	BaseDelay time.Duration

	// JobID and Context annotate the ErrorRecord.
	JobID   string
	Context map[string]any

	// Log receives the terminal ErrorRecord. Optional.
	Log *Log

	// Logger reports retry attempts. Optional.
	Logger *slog.Logger
}

func (o Options) maxRetries() int {
	if o.MaxRetries <= 0 {
		return 3
	}
	return o.MaxRetries
}

func (o Options) baseDelay() time.Duration {
	if o.BaseDelay <= 0 {
		return time.Second
	}
	return o.BaseDelay
}

// Do invokes op, retrying transient failures with exponential backoff.
//
// Failures classified retryable by lexcrawl.Retryable trigger a backoff
// sleep and re-invocation, up to MaxRetries. Anything else short-circuits
// immediately. The first failure creates an ErrorRecord tracking the chain;
// when the chain finishes the record is appended to opts.Log and returned
// alongside the result, marked resolved if a later attempt succeeded.
//
// Exhausted or fatal chains return the last error together with the record,
// so callers can drop the one item and carry on.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts Options) (T, *lexcrawl.ErrorRecord, error) {
	var zero T
	var record *lexcrawl.ErrorRecord

	finish := func(err error) {
		if record == nil {
			return
		}
		record.Resolved = err == nil
		if opts.Log != nil {
			opts.Log.Append(record)
		}
	}

	for attempt := 0; ; attempt++ {
		val, err := op(ctx)
		if err == nil {
			finish(nil)
			return val, record, nil
		}

		if record == nil {
			record = &lexcrawl.ErrorRecord{
				JobID:      opts.JobID,
				Code:       lexcrawl.ErrorCode(err),
				Context:    opts.Context,
				ErrorID:    uuid.New().String(),
				OccurredAt: time.Now().UTC(),
			}
		}
		record.Code = lexcrawl.ErrorCode(err)

		if !lexcrawl.Retryable(err) || attempt >= opts.maxRetries() {
			finish(err)
			return zero, record, err
		}

		delay := opts.baseDelay() << attempt
		if opts.Logger != nil {
			opts.Logger.Warn("retrying after failure",
				slog.String("job_id", opts.JobID),
				slog.String("code", lexcrawl.ErrorCode(err)),
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			finish(ctx.Err())
			return zero, record, ctx.Err()
		case <-time.After(delay):
		}
		record.TimesRetried++
	}
}
