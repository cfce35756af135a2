package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.withmatt.com/maildigest/internal/config"
	"go.withmatt.com/maildigest/internal/oauth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Gmail logins",
}

var authLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authorize read-only access to a Gmail account",
	Long: `Open a browser to authorize read-only Gmail access and store the token in
the system keyring. Requires GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout <email>",
	Short: "Remove a stored Gmail login",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogout,
}

func init() {
	authLoginCmd.Flags().Bool("default", false, "make this the default account in config.toml")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	email := args[0]
	// Loads the env file so client credentials can live there too.
	if _, err := loadConfig(cmd); err != nil {
		return err
	}

	if err := oauth.Login(cmd.Context(), email); err != nil {
		return fmt.Errorf("login failed for %s: %w", email, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", email)

	if makeDefault, _ := cmd.Flags().GetBool("default"); makeDefault {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("unable to load config: %w", err)
		}
		cfg.Account = email
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("unable to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default account set to %s.\n", email)
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	email := args[0]
	if err := oauth.DeleteToken(email); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}
	if cfg.Account == email {
		cfg.Account = ""
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("unable to save config: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s.\n", email)
	return nil
}
