package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/costrules/internal/core/config"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var secretID string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Issue an API key signed with a configured HMAC secret",
		Long: fmt.Sprintf(`Issues a new API key for 'generate --server'. The key is signed with the
secret named by --secret-id, taken from %s or %s_N. Rotating the
secret revokes every key it signed.`, config.HMACSecretEnv, config.HMACSecretEnv),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authenticator, err := loadAuthenticator()
			if err != nil {
				return err
			}
			if authenticator == nil {
				return fmt.Errorf("no HMAC secret configured (set %s)", config.HMACSecretEnv)
			}

			if secretID == "" {
				secrets, err := config.HMACSecrets()
				if err != nil {
					return err
				}
				if len(secrets) > 1 {
					ids := make([]string, 0, len(secrets))
					for id := range secrets {
						ids = append(ids, id)
					}
					sort.Strings(ids)
					return fmt.Errorf("multiple HMAC secrets configured, choose one with --secret-id: %s", strings.Join(ids, ", "))
				}
				for id := range secrets {
					secretID = id
				}
			}

			key, err := authenticator.IssueKey(secretID)
			if err != nil {
				return fmt.Errorf("secret %s: %w", secretID, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
	cmd.Flags().StringVar(&secretID, "secret-id", "", "secret to sign with (required when several are configured)")

	return cmd
}
