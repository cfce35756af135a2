package gmail

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// maxPageSize is the largest page Users.Messages.List will return.
const maxPageSize = 500

// Client wraps Gmail API service
type Client struct {
	srv *gmail.Service
}

// NewClient creates a new Gmail client
func NewClient(srv *gmail.Service) *Client {
	return &Client{srv: srv}
}

// Dial creates a Gmail client authorized by ts. Extra options are passed
// through to the API service, which is how tests point it at a fake server.
func Dial(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(srv), nil
}

// GetProfile fetches the authenticated user's profile
func (c *Client) GetProfile(ctx context.Context) (*gmail.Profile, error) {
	return c.srv.Users.GetProfile("me").Context(ctx).Do()
}

// ListLabels fetches all labels
func (c *Client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	res, err := c.srv.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return res.Labels, nil
}

// ListMessageIDs returns up to limit of the most recent message IDs, newest
// first, following page tokens when limit exceeds a single page.
func (c *Client) ListMessageIDs(ctx context.Context, limit int64) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	ids := make([]string, 0, min(limit, maxPageSize))
	pageToken := ""
	for int64(len(ids)) < limit {
		req := c.srv.Users.Messages.List("me").
			MaxResults(min(limit-int64(len(ids)), maxPageSize)).
			Context(ctx)

		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, err
		}

		for _, ref := range res.Messages {
			if int64(len(ids)) == limit {
				break
			}
			ids = append(ids, ref.Id)
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	return ids, nil
}

// GetMessage fetches a single message with full body
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	return c.srv.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
}
