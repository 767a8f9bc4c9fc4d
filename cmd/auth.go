package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxtasks/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth [auth-code]",
		Short: "Authorize access to a Google account",
		Long: `Obtain and store a Google OAuth token for an account.

Without arguments, prints the authorization URL. Open it in a browser, grant
access, and run the command again with the code Google hands back:

  inboxtasks auth --account work <auth-code>

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := google.ValidateAccountName(account); err != nil {
				return err
			}

			if len(args) == 0 {
				fmt.Printf("Open the following URL in your browser and authorize access for account %q:\n\n%s\n\n", account, google.GetAuthURL())
				fmt.Printf("Then run: inboxtasks auth --account %s <auth-code>\n", account)
				return nil
			}

			if err := google.SaveTokenForAccount(context.Background(), account, strings.TrimSpace(args[0])); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Token saved for account %q\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name to store the token under")
	return cmd
}
