package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faitltd/FAIT-sub005/internal/config"
	"github.com/Faitltd/FAIT-sub005/pkg/jwt"
)

func testDeps(out *bytes.Buffer) issueTokenDeps {
	return issueTokenDeps{
		loadEnv: func() error { return errors.New("no .env") },
		loadCfg: func() *config.Config {
			return &config.Config{JWT: config.JWTConfig{Secret: "cli-secret", AccessExpiry: 15 * time.Minute}}
		},
		out: out,
	}
}

func TestParseUserID(t *testing.T) {
	_, err := parseUserID("")
	assert.Error(t, err)
	_, err = parseUserID("bad-uuid")
	assert.Error(t, err)

	id := uuid.New()
	got, err := parseUserID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseRole(t *testing.T) {
	role, err := parseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	_, err = parseRole("root")
	assert.Error(t, err)
}

func TestRunIssueToken(t *testing.T) {
	var out bytes.Buffer
	id := uuid.New()

	err := runIssueToken([]string{"-user-id", id.String(), "-role", "admin", "-ttl", "2h"}, testDeps(&out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "role=admin")
	assert.Contains(t, out.String(), "expires_in=2h0m0s")

	var token string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "TOKEN=") {
			token = strings.TrimPrefix(line, "TOKEN=")
		}
	}
	require.NotEmpty(t, token)

	claims, err := jwt.NewJWTService("cli-secret", time.Minute).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestRunIssueToken_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runIssueToken(nil, testDeps(&out)))
	assert.Error(t, runIssueToken([]string{"-user-id", uuid.NewString(), "-role", "root"}, testDeps(&out)))
	assert.Error(t, runIssueToken([]string{"-unknown"}, testDeps(&out)))
	assert.Empty(t, out.String())
}
