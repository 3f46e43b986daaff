package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"ArticleGate/internal/app"
	"ArticleGate/internal/infrastructure/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		cfgFile, verbose = "", false
		tokenUser, tokenName, tokenAdmin = "", "", false
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_SubcommandsList(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("root --help failed: %v", err)
	}
	for _, name := range []string{"serve", "migrate", "token"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected help output to list %q, got:\n%s", name, out)
		}
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	if _, err := execute(t, "nonexistent-command"); err == nil {
		t.Fatal("expected error for unknown command, got nil")
	}
}

func TestTokenCmd_IssuesVerifiableToken(t *testing.T) {
	t.Setenv("ARTICLEGATE_CONFIG", "")
	t.Setenv("AUTH_TOKEN_SECRET", "cli-secret")
	id := uuid.New()

	out, err := execute(t, "token", "--user", id.String(), "--name", "alice", "--admin")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}

	verifier, err := auth.NewJWT(app.AuthConfig(cfg))
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	principal, err := verifier.Authenticate(context.Background(), strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("authenticate issued token: %v", err)
	}
	if principal.UserID != id || principal.Username != "alice" || !principal.Admin {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestTokenCmd_RejectsBadUser(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "cli-secret")
	if _, err := execute(t, "token", "--user", "not-a-uuid"); err == nil {
		t.Fatal("expected error for invalid user id")
	}
}

func TestMigrateCmd_RequiresPostgres(t *testing.T) {
	t.Setenv("ARTICLEGATE_CONFIG", "")
	t.Setenv("DATABASE_DRIVER", "memory")
	_, err := execute(t, "migrate", "status")
	if err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("expected postgres driver error, got %v", err)
	}
}
