// Package digest fetches a user's profile, labels and recent messages from
// Gmail concurrently and reduces them to their essential fields.
package digest

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"

	"go.withmatt.com/maildigest/internal/gmail"
	"go.withmatt.com/maildigest/internal/parallel"
)

// topLevelCalls is the number of independent requests FetchAll starts:
// profile, labels and the recent message batch.
const topLevelCalls = 3

// MailService is the remote mail API. Implementations may block; every call
// is made off the caller's goroutine.
type MailService interface {
	GetProfile(ctx context.Context) (*gmailapi.Profile, error)
	ListLabels(ctx context.Context) ([]*gmailapi.Label, error)
	ListMessageIDs(ctx context.Context, limit int64) ([]string, error)
	GetMessage(ctx context.Context, messageID string) (*gmailapi.Message, error)
}

// Digest is the combined result of FetchAll.
type Digest struct {
	Profile gmail.Profile   `json:"profile"`
	Labels  []gmail.Label   `json:"labels"`
	Emails  []gmail.Message `json:"emails"`
}

// Fetcher orchestrates calls against a MailService.
type Fetcher struct {
	svc     MailService
	workers int
	logf    func(format string, args ...any)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithWorkers bounds how many message bodies are fetched at once.
// Zero or less fetches every message in the batch at once.
func WithWorkers(n int) Option {
	return func(f *Fetcher) { f.workers = n }
}

// WithLogger sets a printf-style debug logger.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(f *Fetcher) {
		if logf != nil {
			f.logf = logf
		}
	}
}

// New creates a Fetcher for svc.
func New(svc MailService, opts ...Option) *Fetcher {
	f := &Fetcher{
		svc:  svc,
		logf: func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll fetches the profile, labels and up to maxMessages recent emails
// concurrently. Any remote failure aborts the whole call and no partial
// Digest is returned.
func (f *Fetcher) FetchAll(ctx context.Context, maxMessages int) (*Digest, error) {
	if maxMessages < 0 {
		return nil, ErrNegativeLimit
	}

	f.logf("FetchAll start max=%d", maxMessages)

	var d Digest
	err := parallel.Run(ctx, topLevelCalls,
		func(ctx context.Context) (err error) {
			d.Profile, err = f.Profile(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Labels, err = f.Labels(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Emails, err = f.RecentEmails(ctx, maxMessages)
			return err
		},
	)
	if err != nil {
		f.logf("FetchAll error err=%v", err)
		return nil, err
	}

	f.logf("FetchAll done labels=%d emails=%d", len(d.Labels), len(d.Emails))
	return &d, nil
}

// Profile fetches the user's profile.
func (f *Fetcher) Profile(ctx context.Context) (gmail.Profile, error) {
	p, err := f.svc.GetProfile(ctx)
	if err != nil {
		return gmail.Profile{}, remoteErr(OpGetProfile, err)
	}
	return gmail.ToProfile(p), nil
}

// Labels fetches all of the user's labels.
func (f *Fetcher) Labels(ctx context.Context) ([]gmail.Label, error) {
	labels, err := f.svc.ListLabels(ctx)
	if err != nil {
		return nil, remoteErr(OpListLabels, err)
	}
	return gmail.ToLabels(labels), nil
}

// RecentEmails fetches up to maxResults of the most recent messages, in the
// order the service lists them. Zero returns an empty slice without calling
// the service.
func (f *Fetcher) RecentEmails(ctx context.Context, maxResults int) ([]gmail.Message, error) {
	if maxResults < 0 {
		return nil, ErrNegativeLimit
	}
	if maxResults == 0 {
		return []gmail.Message{}, nil
	}

	ids, err := f.svc.ListMessageIDs(ctx, int64(maxResults))
	if err != nil {
		return nil, remoteErr(OpListMessageIDs, err)
	}
	f.logf("ListMessageIDs count=%d", len(ids))

	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}

	workers := f.workers
	if workers <= 0 {
		workers = len(ids)
	}

	return parallel.Map(ctx, workers, ids, func(ctx context.Context, id string) (gmail.Message, error) {
		msg, err := f.svc.GetMessage(ctx, id)
		if err != nil {
			f.logf("GetMessage error id=%s err=%v", id, err)
			return gmail.Message{}, &RemoteServiceError{Op: OpGetMessage, ID: id, Err: err}
		}
		return gmail.ToMessage(msg), nil
	})
}

// String summarizes the digest for log lines.
func (d *Digest) String() string {
	return fmt.Sprintf("%s: %d labels, %d emails", d.Profile.EmailAddress, len(d.Labels), len(d.Emails))
}
