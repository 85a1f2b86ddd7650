package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/hikelog/internal/auth"
)

type tokenResult struct {
	Token     string    `json:"token"     yaml:"token"`
	Subject   string    `json:"subject"   yaml:"subject"`
	ExpiresAt time.Time `json:"expiresAt" yaml:"expires_at"`
}

func newTokenCommand(a *app) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the API (needs auth.secret)",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Auth.Enabled() {
				return NewExitError(ExitCommandError, "auth.secret is not set; the API is open and needs no token")
			}
			tokens, err := auth.NewTokenService(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid auth configuration", err)
			}
			token, expires, err := tokens.Generate(subject)
			if err != nil {
				return err
			}

			a.out.VerboseLog("token for %q expires %s", subject, expires.Format(time.RFC3339))
			return a.out.Done(token, tokenResult{Token: token, Subject: subject, ExpiresAt: expires})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "who the token is issued to")
	return cmd
}
