package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/nalgeon/be"

	"go.withmatt.com/maildigest/internal/digest"
	"go.withmatt.com/maildigest/internal/gmail"
)

// plain renders without any ANSI styling so output can be matched directly.
var plain = Styles{
	Heading: lipgloss.NewStyle(),
	Label:   lipgloss.NewStyle(),
	Dim:     lipgloss.NewStyle(),
}

func TestPreview(t *testing.T) {
	be.Equal(t, Preview("hello\nworld\t again"), "hello world again")
	be.Equal(t, Preview(""), "")

	long := strings.Repeat("x", 150)
	got := Preview(long)
	be.Equal(t, len(got), previewWidth)
	be.True(t, strings.HasSuffix(got, ellipsis))
}

func TestLabelSummary(t *testing.T) {
	be.Equal(t, labelSummary(nil), "")
	be.Equal(t, labelSummary([]string{"INBOX", "UNREAD"}), "INBOX, UNREAD")
	be.Equal(t, labelSummary([]string{"A", "B", "C", "D"}), "A, B, C...")
}

func TestText(t *testing.T) {
	d := &digest.Digest{
		Profile: gmail.Profile{EmailAddress: "me@example.com", MessagesTotal: 1200, ThreadsTotal: 800, HistoryID: "42"},
		Labels: []gmail.Label{
			{ID: "INBOX", Name: "INBOX", Type: gmail.LabelTypeSystem},
			{ID: "Label_1", Name: "Receipts", Type: gmail.LabelTypeUser},
		},
		Emails: []gmail.Message{{
			ID:        "m1",
			Sender:    "a@x.com",
			Subject:   "Hi",
			Timestamp: "2023-11-14T22:13:20Z",
			LabelIDs:  []string{"INBOX"},
			Text:      "hello\nthere",
		}},
	}

	var buf bytes.Buffer
	be.Err(t, Text(&buf, d, plain), nil)
	out := buf.String()

	be.True(t, strings.Contains(out, "Email: me@example.com"))
	be.True(t, strings.Contains(out, "Messages: 1200"))
	be.True(t, strings.Contains(out, "system: INBOX"))
	be.True(t, strings.Contains(out, "user: Receipts"))
	be.True(t, strings.Contains(out, "Recent emails (1)"))
	be.True(t, strings.Contains(out, "Preview: hello there"))
}

func TestJSONKeepsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	be.Err(t, JSON(&buf, []gmail.Message{gmail.ToMessage(nil)}), nil)

	var decoded []map[string]any
	be.Err(t, json.Unmarshal(buf.Bytes(), &decoded), nil)
	be.Equal(t, len(decoded), 1)
	for _, key := range []string{"messageId", "threadId", "messageTimestamp", "labelIds", "sender", "subject", "messageText"} {
		_, ok := decoded[0][key]
		be.True(t, ok)
	}
	be.Equal(t, decoded[0]["labelIds"], any([]any{}))
}
