package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"go.withmatt.com/maildigest/internal/config"
	"go.withmatt.com/maildigest/internal/digest"
	"go.withmatt.com/maildigest/internal/gmail"
	"go.withmatt.com/maildigest/internal/log"
	"go.withmatt.com/maildigest/internal/oauth"
	"go.withmatt.com/maildigest/internal/render"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch profile, labels and recent emails",
	Long: `Fetch the profile, labels and most recent emails concurrently.
Either every request succeeds or nothing is printed.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the account profile",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List labels",
	Args:  cobra.NoArgs,
	RunE:  runLabels,
}

var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "Show the most recent emails",
	Args:  cobra.NoArgs,
	RunE:  runEmails,
}

func init() {
	for _, c := range []*cobra.Command{fetchCmd, profileCmd, labelsCmd, emailsCmd} {
		c.Flags().String("format", formatJSON, "output format: json or text")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{fetchCmd, emailsCmd} {
		c.Flags().Int("max", 0, "number of recent emails to fetch (default from config, 10)")
		c.Flags().Int("workers", 0, "concurrent message fetches (default one per message)")
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateFormat(cmd); err != nil {
		return err
	}

	ts, err := tokenSource(cmd, cfg)
	if err != nil {
		return err
	}

	d, err := digest.FetchAll(cmd.Context(), ts, maxMessages(cmd, cfg), fetcherOptions(cmd, cfg)...)
	if err != nil {
		return err
	}
	log.Printf("fetched %s", d)

	return output(cmd, cfg, d, func(w io.Writer, st render.Styles) error {
		return render.Text(w, d, st)
	})
}

func runProfile(cmd *cobra.Command, args []string) error {
	f, cfg, err := newFetcher(cmd)
	if err != nil {
		return err
	}

	p, err := f.Profile(cmd.Context())
	if err != nil {
		return err
	}

	return output(cmd, cfg, p, func(w io.Writer, st render.Styles) error {
		return render.Profile(w, p, st)
	})
}

func runLabels(cmd *cobra.Command, args []string) error {
	f, cfg, err := newFetcher(cmd)
	if err != nil {
		return err
	}

	labels, err := f.Labels(cmd.Context())
	if err != nil {
		return err
	}

	return output(cmd, cfg, labels, func(w io.Writer, st render.Styles) error {
		return render.Labels(w, labels, st)
	})
}

func runEmails(cmd *cobra.Command, args []string) error {
	f, cfg, err := newFetcher(cmd)
	if err != nil {
		return err
	}

	emails, err := f.RecentEmails(cmd.Context(), maxMessages(cmd, cfg))
	if err != nil {
		return err
	}

	return output(cmd, cfg, emails, func(w io.Writer, st render.Styles) error {
		return render.Emails(w, emails, st)
	})
}

// newFetcher builds a Fetcher for the configured credentials.
func newFetcher(cmd *cobra.Command) (*digest.Fetcher, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	if err := validateFormat(cmd); err != nil {
		return nil, cfg, err
	}

	ts, err := tokenSource(cmd, cfg)
	if err != nil {
		return nil, cfg, err
	}
	client, err := gmail.Dial(cmd.Context(), ts)
	if err != nil {
		return nil, cfg, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	return digest.New(client, fetcherOptions(cmd, cfg)...), cfg, nil
}

// tokenSource uses the stored login of the configured account, or else
// credentials from the environment.
func tokenSource(cmd *cobra.Command, cfg config.Config) (oauth2.TokenSource, error) {
	if cfg.Account != "" {
		return oauth.TokenSource(cmd.Context(), cfg.Account)
	}

	ts, err := oauth.FromEnv(cmd.Context())
	if errors.Is(err, oauth.ErrNoCredentials) {
		return nil, errors.New(
			"no credentials: set GMAIL_ACCESS_TOKEN or GMAIL_REFRESH_TOKEN, or pass --account after 'maildigest auth login'",
		)
	}
	return ts, err
}

func fetcherOptions(cmd *cobra.Command, cfg config.Config) []digest.Option {
	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	return []digest.Option{digest.WithWorkers(workers), digest.WithLogger(log.Printf)}
}

func maxMessages(cmd *cobra.Command, cfg config.Config) int {
	if cmd.Flags().Changed("max") {
		n, _ := cmd.Flags().GetInt("max")
		return n
	}
	return cfg.MaxMessages
}

func validateFormat(cmd *cobra.Command) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatJSON, formatText:
		return nil
	default:
		return fmt.Errorf("unknown format %q: want %s or %s", format, formatJSON, formatText)
	}
}

func output(
	cmd *cobra.Command,
	cfg config.Config,
	v any,
	text func(io.Writer, render.Styles) error,
) error {
	format, _ := cmd.Flags().GetString("format")
	if format == formatText {
		return text(cmd.OutOrStdout(), render.NewStyles(cfg.Style))
	}
	return render.JSON(cmd.OutOrStdout(), v)
}
