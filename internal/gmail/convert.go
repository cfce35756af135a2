package gmail

import (
	"encoding/base64"
	"slices"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

// maxPartDepth bounds the MIME walk. Gmail never nests anywhere near this deep.
const maxPartDepth = 64

const mimeTextPlain = "text/plain"

// ToMessage converts a Gmail API message to our Message type.
// It never fails: anything missing or undecodable falls back to a default.
func ToMessage(msg *gmail.Message) Message {
	if msg == nil {
		msg = &gmail.Message{}
	}

	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return Message{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Timestamp: formatInternalDate(msg.InternalDate),
		LabelIDs:  orEmpty(msg.LabelIds),
		Sender:    headerValue(headers, "From"),
		Subject:   headerValue(headers, "Subject"),
		Text:      PlainText(msg.Payload),
	}
}

// ToProfile converts a Gmail API profile to our Profile type
func ToProfile(p *gmail.Profile) Profile {
	if p == nil {
		return Profile{}
	}
	profile := Profile{
		EmailAddress:  p.EmailAddress,
		MessagesTotal: p.MessagesTotal,
		ThreadsTotal:  p.ThreadsTotal,
	}
	if p.HistoryId != 0 {
		profile.HistoryID = strconv.FormatUint(p.HistoryId, 10)
	}
	return profile
}

// ToLabel converts a Gmail API label to our Label type
func ToLabel(l *gmail.Label) Label {
	if l == nil {
		return Label{}
	}
	return Label{
		ID:                    l.Id,
		Name:                  l.Name,
		Type:                  l.Type,
		MessageListVisibility: l.MessageListVisibility,
		LabelListVisibility:   l.LabelListVisibility,
	}
}

// ToLabels converts a list of Gmail API labels, skipping nil entries.
func ToLabels(in []*gmail.Label) []Label {
	labels := make([]Label, 0, len(in))
	for _, l := range in {
		if l == nil {
			continue
		}
		labels = append(labels, ToLabel(l))
	}
	return labels
}

// PlainText returns the decoded content of the first text/plain part found
// in a depth-first, children-in-order walk of the payload. Parts of any other
// type are only descended into, never decoded.
func PlainText(payload *gmail.MessagePart) string {
	return plainText(payload, 0)
}

func plainText(part *gmail.MessagePart, depth int) string {
	if part == nil || depth > maxPartDepth {
		return ""
	}

	if strings.EqualFold(part.MimeType, mimeTextPlain) && part.Body != nil && part.Body.Data != "" {
		if text, ok := decodeBody(part.Body.Data); ok && text != "" {
			return text
		}
	}

	for _, child := range part.Parts {
		if text := plainText(child, depth+1); text != "" {
			return text
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body data. Gmail normally pads, but
// unpadded data shows up from some senders.
func decodeBody(data string) (string, bool) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", false
		}
	}
	return strings.ToValidUTF8(string(decoded), ""), true
}

// headerValue returns the first header matching name, case-insensitively.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// formatInternalDate renders Gmail's epoch-millisecond internal date in UTC.
// Gmail never reports a zero date, so zero and negative values mean missing.
func formatInternalDate(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

func orEmpty(s []string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return slices.Clone(s)
}
