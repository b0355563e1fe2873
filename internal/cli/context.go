package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/terraincognita07/pilltrack/internal/db"
	"github.com/terraincognita07/pilltrack/internal/services"
)

// Context carries what every command needs. Zero fields fall back to the
// process defaults.
type Context struct {
	DBPath       string
	SecretKey    string
	Out          io.Writer
	Stdin        *os.File
	Now          func() time.Time
	ReadPassword func() ([]byte, error)
}

func (ctx *Context) out() io.Writer {
	if ctx.Out == nil {
		return os.Stdout
	}
	return ctx.Out
}

func (ctx *Context) now() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return ctx.Now()
}

func (ctx *Context) readPassword() ([]byte, error) {
	if ctx.ReadPassword != nil {
		return ctx.ReadPassword()
	}
	if ctx.Stdin != nil {
		return promptPassword(ctx.Stdin)
	}
	return promptPassword(os.Stdin)
}

func (ctx *Context) openRepositories() (*db.Repositories, func(), error) {
	database, err := db.OpenSQLite(ctx.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	return db.NewRepositories(database), func() { _ = sqlDB.Close() }, nil
}

func normalizeEmail(email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("email is required")
	}
	normalized := services.NormalizeAccountEmail(email)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", services.ErrInvalidEmail, email)
	}
	return normalized, nil
}
