package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/pilltrack/internal/security"
)

// TokenCmd prints a bearer token for an existing account.
type TokenCmd struct {
	Email string        `required:"" help:"Account email address."`
	TTL   time.Duration `name:"ttl" default:"720h" help:"Token lifetime."`
}

func (cmd *TokenCmd) Run(ctx *Context) error {
	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		return err
	}
	if ctx.SecretKey == "" {
		return errors.New("secret key is required")
	}

	repositories, closeDB, err := ctx.openRepositories()
	if err != nil {
		return err
	}
	defer closeDB()

	user, found, err := repositories.Users.FindByNormalizedEmail(email)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s not found", email)
	}

	token, err := security.IssueToken([]byte(ctx.SecretKey), user.ID, user.Role, cmd.TTL, ctx.now())
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.out(), token)
	return nil
}
