package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Faitltd/FAIT-sub005/internal/config"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/middleware"
	"github.com/Faitltd/FAIT-sub005/pkg/jwt"
)

type issueTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	out     io.Writer
}

func defaultIssueTokenDeps() issueTokenDeps {
	return issueTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		out:     os.Stdout,
	}
}

func parseUserID(userID string) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, fmt.Errorf("--user-id is required")
	}
	return uuid.Parse(userID)
}

func parseRole(role string) (string, error) {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case middleware.RoleProvider, middleware.RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("--role must be %q or %q", middleware.RoleProvider, middleware.RoleAdmin)
	}
}

// runIssueToken signs a bearer token with the service secret, for operators and local testing.
func runIssueToken(args []string, deps issueTokenDeps) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	userIDFlag := fs.String("user-id", "", "subject UUID (required)")
	roleFlag := fs.String("role", middleware.RoleProvider, "provider or admin")
	emailFlag := fs.String("email", "", "email claim (optional)")
	ttlFlag := fs.Duration("ttl", 0, "token lifetime (defaults to JWT_ACCESS_EXPIRY)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID, err := parseUserID(*userIDFlag)
	if err != nil {
		return err
	}
	role, err := parseRole(*roleFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	ttl := cfg.JWT.AccessExpiry
	if *ttlFlag > 0 {
		ttl = *ttlFlag
	}

	token, err := jwt.NewJWTService(cfg.JWT.Secret, ttl).IssueAccessToken(userID, *emailFlag, role)
	if err != nil {
		return fmt.Errorf("failed signing token: %w", err)
	}

	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", userID)
	_, _ = fmt.Fprintf(deps.out, "role=%s\n", role)
	_, _ = fmt.Fprintf(deps.out, "expires_in=%s\n", ttl.Round(time.Second))
	_, _ = fmt.Fprintf(deps.out, "TOKEN=%s\n", token)
	return nil
}

func main() {
	if err := runIssueToken(os.Args[1:], defaultIssueTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
