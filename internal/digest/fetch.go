package digest

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"go.withmatt.com/maildigest/internal/gmail"
)

// FetchAll dials Gmail with the given credentials and fetches a complete
// Digest with up to maxMessages recent emails.
func FetchAll(
	ctx context.Context,
	ts oauth2.TokenSource,
	maxMessages int,
	opts ...Option,
) (*Digest, error) {
	client, err := gmail.Dial(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return New(client, opts...).FetchAll(ctx, maxMessages)
}

var _ MailService = (*gmail.Client)(nil)
