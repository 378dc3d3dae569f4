package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"assetdesk/internal/domain/auth"
)

const cliUser = "reportctl"

var (
	tokenUser        string
	tokenEmail       string
	tokenPermissions []string
	tokenBranches    []string
	tokenAdmin       bool
	tokenTTL         time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Sign an access token with JWT_SECRET, for local testing of the API.

Examples:
  reportctl token --user u1 --permission report:audit:read
  reportctl token --user u2 --branch north --branch south --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUser, "user", cliUser, "user id")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "user email")
	tokenCmd.Flags().StringArrayVar(&tokenPermissions, "permission", nil, "permission to grant (repeatable)")
	tokenCmd.Flags().StringArrayVar(&tokenBranches, "branch", nil, "branch the user may report on (repeatable)")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant every permission")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default from config)")
}

func runToken(cmd *cobra.Command, args []string) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	jwtCfg := cfg.JWT()
	if tokenTTL > 0 {
		jwtCfg.AccessTokenTTL = tokenTTL
	}

	token, expiresAt, err := auth.NewJWTService(jwtCfg).GenerateAccessToken(auth.Claims{
		UserID:      tokenUser,
		Email:       tokenEmail,
		Permissions: tokenPermissions,
		BranchIDs:   tokenBranches,
		IsAdmin:     tokenAdmin,
	})
	if err != nil {
		return err
	}

	log.Debugw("token minted", "user_id", tokenUser, "expires_at", expiresAt)
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
