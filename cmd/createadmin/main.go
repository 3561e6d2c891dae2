// Command createadmin bootstraps an administrator account.
//
//	createadmin -username root            # prompts for the password
//	CATFRAME_ADMIN_PASSWORD=... createadmin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"catframe/internal/auth"
	"catframe/internal/config"
	"catframe/internal/logger"
	"catframe/internal/models"
	"catframe/internal/repository"
	"catframe/internal/repository/db"
	"catframe/internal/service"
	"catframe/internal/validation"

	"golang.org/x/term"
)

const (
	passwordEnv = "CATFRAME_ADMIN_PASSWORD"
	runTimeout  = 30 * time.Second
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// admins is the part of the auth service this command needs.
type admins interface {
	CreateAdmin(ctx context.Context, username, password string) (*models.User, error)
}

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yml")
	username := flag.String("username", "admin", "username of the administrator to create")
	flag.Parse()

	if err := run(*configDir, *username); err != nil {
		fmt.Fprintln(os.Stderr, "createadmin:", err)
		os.Exit(1)
	}
}

func run(configDir, username string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	password, err := adminPassword(os.Stderr)
	if err != nil {
		return err
	}

	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	conn, err := db.InitDB(ctx, db.Options{Dialect: dialect, DSN: cfg.Database.DSN}, log)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	users := repository.NewUserRepository(conn, dialect)
	svc := service.NewAuthService(users, auth.NewPasswordHasher(cfg.Auth.BcryptCost), nil,
		validation.New(), cfg.Auth.ResetTokenTTL, nil)

	u, err := createAdmin(ctx, svc, username, password, os.Stdout)
	if err != nil {
		return err
	}
	log.Infow("admin_created", "user_id", u.ID, "username", u.Username)
	return nil
}

// adminPassword takes the password from the environment, or prompts without echo.
func adminPassword(w io.Writer) (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}
	if _, err := fmt.Fprintf(w, "Password for the new administrator (or set %s): ", passwordEnv); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// createAdmin runs the bootstrap and reports the outcome on w in plain words.
func createAdmin(ctx context.Context, svc admins, username, password string, w io.Writer) (*models.User, error) {
	username = strings.TrimSpace(username)
	u, err := svc.CreateAdmin(ctx, username, password)
	if err != nil {
		if ve, ok := validation.AsErrors(err); ok {
			return nil, ve
		}
		if errors.Is(err, service.ErrUsernameTaken) {
			return nil, fmt.Errorf("user %q already exists", username)
		}
		return nil, err
	}
	fmt.Fprintf(w, "Administrator %q created (id %d).\n", u.Username, u.ID)
	return u, nil
}
