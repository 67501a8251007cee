package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/api"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for local testing",
	Long: `Token signs an HS256 access token for a user id with auth.jwt_secret.

Example:
  export CREDENCE_AUTH_JWT_SECRET=change-me
  TOKEN=$(credence token --user alice)
  curl -H "Authorization: Bearer $TOKEN" localhost:8080/analysis/history`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := currentConfig()
		if err != nil {
			return err
		}
		ttl := cfg.Auth.TokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}

		token, err := api.NewTokenManager(cfg.Auth.JWTSecret, ttl).Issue(tokenUser)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id to put in the subject claim (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	_ = tokenCmd.MarkFlagRequired("user")
}
