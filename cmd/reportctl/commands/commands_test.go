package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/domain/auth"
	"assetdesk/internal/domain/reports"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReportsCommand(t *testing.T) {
	out, err := run(t, "reports")
	require.NoError(t, err)

	for _, def := range reports.DefaultRegistry().List() {
		assert.Contains(t, out, def.ID)
	}
	assert.True(t, strings.HasPrefix(out, "ID"))

	out, err = run(t, "reports", "--json")
	require.NoError(t, err)
	var summaries []reports.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	assert.Len(t, summaries, len(reports.DefaultRegistry().List()))
	reportsJSON = false
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ISSUER", "")

	out, err := run(t, "token", "--user", "u7", "--permission", auth.PermissionAuditRead, "--branch", "north")
	require.NoError(t, err)

	user, err := auth.NewJWTService(auth.DefaultJWTConfig(testSecret)).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u7", user.UserID)
	assert.Equal(t, []string{auth.PermissionAuditRead}, user.Permissions)
	assert.Equal(t, []string{"north"}, user.BranchIDs)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestExportCommand_RequiresBackend(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")

	_, err := run(t, "export", "asset-register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_BASE_URL")
}
