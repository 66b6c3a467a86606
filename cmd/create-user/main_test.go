package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/app"
	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/storage/sqlstore"
)

func sqliteEnv(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{
		"SHOP_STORAGE_DRIVER": "sqlite",
		"SHOP_SQLITE_PATH":    filepath.Join(t.TempDir(), "users.db"),
		"SHOP_BCRYPT_COST":    "4",
	}
}

func mapLookup(values map[string]string) app.EnvLookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func runCLI(t *testing.T, env map[string]string, stdin string, args ...string) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := run(ctx, args, strings.NewReader(stdin), &out, mapLookup(env))
	return out.String(), err
}

func TestRun_CreatesUserFromFlags(t *testing.T) {
	env := sqliteEnv(t)

	out, err := runCLI(t, env, "", "-email=Admin@Example.com", "-password=secret-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "User created successfully!")

	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, env["SHOP_SQLITE_PATH"])
	require.NoError(t, err)
	defer store.Close()

	user, err := store.GetUserByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.NoError(t, auth.NewPasswordHasher(4).Compare(user.PasswordHash, "secret-pass"))
}

func TestRun_PromptsForMissingValues(t *testing.T) {
	out, err := runCLI(t, sqliteEnv(t), "buyer@example.com\nlong-password\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "User created successfully!")
}

func TestRun_ExistingEmailIsReported(t *testing.T) {
	env := sqliteEnv(t)

	_, err := runCLI(t, env, "", "-email=dup@example.com", "-password=secret-pass")
	require.NoError(t, err)

	// Пароль не запрашивается, если email уже занят.
	out, err := runCLI(t, env, "DUP@example.com\n")
	require.NoError(t, err)
	assert.Contains(t, out, "User with email dup@example.com already exists.")
	assert.NotContains(t, out, "Password: ")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{name: "unknown flag", args: []string{"-bogus"}, want: "flag provided but not defined"},
		{name: "empty email", stdin: "\n", want: "read email"},
		{name: "empty password", stdin: "a@example.com\n\n", want: "read password"},
		{name: "short password", args: []string{"-email=a@example.com", "-password=short"}, want: "at least 8 characters"},
		{name: "invalid email", args: []string{"-email=nobody", "-password=secret-pass"}, want: "email is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, sqliteEnv(t), tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_PostgresRequiresDSN(t *testing.T) {
	_, err := runCLI(t, map[string]string{"SHOP_STORAGE_DRIVER": "postgres"}, "", "-email=a@example.com", "-password=secret-pass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres dsn is required")
}
