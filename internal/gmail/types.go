package gmail

// Message is the essential projection of a Gmail message.
// Every field is always present when encoded; missing source data maps to
// an empty string or an empty slice.
type Message struct {
	ID        string   `json:"messageId"`
	ThreadID  string   `json:"threadId"`
	Timestamp string   `json:"messageTimestamp"` // RFC 3339, UTC
	LabelIDs  []string `json:"labelIds"`
	Sender    string   `json:"sender"`
	Subject   string   `json:"subject"`
	Text      string   `json:"messageText"`
}

// Profile is the essential projection of a Gmail user profile
type Profile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int64  `json:"messagesTotal"`
	ThreadsTotal  int64  `json:"threadsTotal"`
	HistoryID     string `json:"historyId"`
}

// Label represents a Gmail label
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // "system" or "user"

	MessageListVisibility string `json:"messageListVisibility,omitempty"`
	LabelListVisibility   string `json:"labelListVisibility,omitempty"`
}

const (
	LabelTypeSystem = "system"
	LabelTypeUser   = "user"
)
