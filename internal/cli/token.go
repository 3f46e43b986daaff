package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ArticleGate/internal/app"
	"ArticleGate/internal/domain"
	"ArticleGate/internal/infrastructure/auth"
)

var (
	tokenUser  string
	tokenName  string
	tokenAdmin bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed access token for local testing",
	Long: `Sign a token with the configured secret, issuer and audience.

Examples:
  articlegate token --user 5b0c4b5e-8a5e-4a55-9d0e-2f0d3f0f9a11 --name alice
  articlegate token --user 5b0c4b5e-8a5e-4a55-9d0e-2f0d3f0f9a11 --admin`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (uuid); random when empty")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "username claim")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant the admin role")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	id := uuid.New()
	if tokenUser != "" {
		parsed, err := uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		id = parsed
	}

	signer, err := auth.NewJWT(app.AuthConfig(cfg))
	if err != nil {
		return err
	}
	token, err := signer.Issue(domain.Principal{UserID: id, Username: tokenName, Admin: tokenAdmin})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
