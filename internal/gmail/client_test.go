package gmail

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/nalgeon/be"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(
		context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	be.Err(t, err, nil)
	return NewClient(svc)
}

func TestClientGetProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"emailAddress":"me@example.com","messagesTotal":3,"threadsTotal":2,"historyId":"99"}`)
	})
	c := newTestClient(t, mux)

	p, err := c.GetProfile(context.Background())
	be.Err(t, err, nil)
	be.Equal(t, ToProfile(p), Profile{
		EmailAddress:  "me@example.com",
		MessagesTotal: 3,
		ThreadsTotal:  2,
		HistoryID:     "99",
	})
}

func TestClientListLabels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"labels":[{"id":"INBOX","name":"INBOX","type":"system"},{"id":"Label_1","name":"Work","type":"user"}]}`)
	})
	c := newTestClient(t, mux)

	labels, err := c.ListLabels(context.Background())
	be.Err(t, err, nil)
	be.Equal(t, len(labels), 2)
	be.Equal(t, labels[1].Name, "Work")
}

func TestClientListMessageIDsPages(t *testing.T) {
	var maxResults []string
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		maxResults = append(maxResults, q.Get("maxResults"))
		if q.Get("pageToken") == "" {
			fmt.Fprint(w, `{"messages":[{"id":"a"},{"id":"b"}],"nextPageToken":"p2"}`)
			return
		}
		fmt.Fprint(w, `{"messages":[{"id":"c"},{"id":"d"}],"nextPageToken":"p3"}`)
	})
	c := newTestClient(t, mux)

	ids, err := c.ListMessageIDs(context.Background(), 3)
	be.Err(t, err, nil)
	be.Equal(t, ids, []string{"a", "b", "c"})
	be.Equal(t, maxResults, []string{"3", "1"})
}

func TestClientListMessageIDsLastPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[{"id":"only"}]}`)
	})
	c := newTestClient(t, mux)

	ids, err := c.ListMessageIDs(context.Background(), 10)
	be.Err(t, err, nil)
	be.Equal(t, ids, []string{"only"})

	ids, err = c.ListMessageIDs(context.Background(), 0)
	be.Err(t, err, nil)
	be.Equal(t, len(ids), 0)
}

func TestClientGetMessage(t *testing.T) {
	var format string
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		format = r.URL.Query().Get("format")
		fmt.Fprint(w, `{
			"id": "m1",
			"threadId": "t1",
			"labelIds": ["INBOX"],
			"internalDate": "1700000000000",
			"payload": {
				"mimeType": "text/plain",
				"headers": [{"name": "From", "value": "a@x.com"}, {"name": "Subject", "value": "Hi"}],
				"body": {"data": "aGVsbG8="}
			}
		}`)
	})
	c := newTestClient(t, mux)

	msg, err := c.GetMessage(context.Background(), "m1")
	be.Err(t, err, nil)
	be.Equal(t, format, "full")
	be.Equal(t, ToMessage(msg), Message{
		ID:        "m1",
		ThreadID:  "t1",
		Timestamp: "2023-11-14T22:13:20Z",
		LabelIDs:  []string{"INBOX"},
		Sender:    "a@x.com",
		Subject:   "Hi",
		Text:      "hello",
	})
}

func TestClientErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"rate limited"}}`)
	})
	c := newTestClient(t, mux)

	_, err := c.GetProfile(context.Background())
	be.Err(t, err, strconv.Itoa(http.StatusTooManyRequests))
}
