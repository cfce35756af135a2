// Package render formats a digest for terminals.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"go.withmatt.com/maildigest/internal/config"
	"go.withmatt.com/maildigest/internal/digest"
	"go.withmatt.com/maildigest/internal/gmail"
)

const (
	subjectWidth = 50
	previewWidth = 100
	labelsShown  = 3
	ellipsis     = "..."
)

// Styles used by Text.
type Styles struct {
	Heading lipgloss.Style
	Label   lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles resolves configured colors into lipgloss styles.
func NewStyles(s config.Style) Styles {
	s = s.WithDefaults()
	return Styles{
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.HeadingFg)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(s.LabelFg)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(s.DimFg)),
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Text writes a human-readable summary of d.
func Text(w io.Writer, d *digest.Digest, st Styles) error {
	var b strings.Builder
	writeProfile(&b, d.Profile, st)
	b.WriteString("\n")
	writeLabels(&b, d.Labels, st)
	b.WriteString("\n")
	writeEmails(&b, d.Emails, st)
	_, err := io.WriteString(w, b.String())
	return err
}

// Profile writes just the profile section.
func Profile(w io.Writer, p gmail.Profile, st Styles) error {
	var b strings.Builder
	writeProfile(&b, p, st)
	_, err := io.WriteString(w, b.String())
	return err
}

// Labels writes just the labels section.
func Labels(w io.Writer, labels []gmail.Label, st Styles) error {
	var b strings.Builder
	writeLabels(&b, labels, st)
	_, err := io.WriteString(w, b.String())
	return err
}

// Emails writes just the emails section.
func Emails(w io.Writer, emails []gmail.Message, st Styles) error {
	var b strings.Builder
	writeEmails(&b, emails, st)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeProfile(b *strings.Builder, p gmail.Profile, st Styles) {
	fmt.Fprintln(b, st.Heading.Render("Profile"))
	field(b, st, "Email", p.EmailAddress)
	field(b, st, "Messages", fmt.Sprint(p.MessagesTotal))
	field(b, st, "Threads", fmt.Sprint(p.ThreadsTotal))
	field(b, st, "History ID", p.HistoryID)
}

func writeLabels(b *strings.Builder, labels []gmail.Label, st Styles) {
	fmt.Fprintln(b, st.Heading.Render(fmt.Sprintf("Labels (%d)", len(labels))))
	for _, kind := range []string{gmail.LabelTypeSystem, gmail.LabelTypeUser} {
		var names []string
		for _, l := range labels {
			if l.Type == kind {
				names = append(names, l.Name)
			}
		}
		field(b, st, kind, strings.Join(names, ", "))
	}
}

func writeEmails(b *strings.Builder, emails []gmail.Message, st Styles) {
	fmt.Fprintln(b, st.Heading.Render(fmt.Sprintf("Recent emails (%d)", len(emails))))
	for i, m := range emails {
		fmt.Fprintf(b, "\n%s\n", st.Dim.Render(fmt.Sprintf("#%d %s", i+1, m.ID)))
		field(b, st, "From", m.Sender)
		field(b, st, "Subject", runewidth.Truncate(m.Subject, subjectWidth, ellipsis))
		field(b, st, "Date", m.Timestamp)
		field(b, st, "Labels", labelSummary(m.LabelIDs))
		field(b, st, "Preview", Preview(m.Text))
	}
}

func field(b *strings.Builder, st Styles, name, value string) {
	fmt.Fprintf(b, "  %s %s\n", st.Label.Render(name+":"), value)
}

func labelSummary(ids []string) string {
	if len(ids) <= labelsShown {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:labelsShown], ", ") + ellipsis
}

// Preview flattens text to a single line no wider than previewWidth cells.
func Preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(flat, previewWidth, ellipsis)
}
