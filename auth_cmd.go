package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lecternapp/lectern/internal/authflow"
	"github.com/lecternapp/lectern/internal/config"
	"github.com/lecternapp/lectern/internal/tokenfile"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize Google Drive access in the browser",
		RunE:  runLogin,
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved Drive credential",
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the state of the saved Drive credential",
		RunE:  runWhoami,
	}
}

// newAuthorizer wires the Drive authorizer from the resolved config. Errors
// when no OAuth client secret is configured, since every auth operation
// needs one.
func newAuthorizer(logger *slog.Logger) (*authflow.Authorizer, error) {
	secretPath := resolvedCfg.Drive.ClientSecretPath
	if secretPath == "" {
		return nil, fmt.Errorf("drive.client_secret_path is not configured; " +
			"set it in the config file or via LECTERN_CLIENT_SECRET")
	}

	return authflow.New(secretPath, config.CredentialPath(), openBrowser, logger)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()

	auth, err := newAuthorizer(logger)
	if err != nil {
		return err
	}

	if _, err := auth.Login(cmd.Context()); err != nil {
		return err
	}

	statusf("Login successful.\n")

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	if err := tokenfile.Remove(config.CredentialPath()); err != nil {
		return err
	}

	logger.Info("credential removed", slog.String("path", config.CredentialPath()))
	statusf("Logged out.\n")

	return nil
}

func runWhoami(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	auth, err := newAuthorizer(logger)
	if err != nil {
		return err
	}

	state, expiry := auth.Status()

	switch state {
	case authflow.StateAbsent:
		fmt.Println("Not logged in. Run 'lectern login' to authorize Drive access.")
	case authflow.StateExpired:
		fmt.Printf("Credential expired at %s. It will be refreshed on next use.\n",
			expiry.Local().Format("2006-01-02 15:04:05"))
	case authflow.StateValid:
		fmt.Printf("Logged in. Credential valid until %s.\n",
			expiry.Local().Format("2006-01-02 15:04:05"))
	}

	return nil
}
