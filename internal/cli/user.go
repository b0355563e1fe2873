package cli

import (
	"fmt"
	"strings"

	"github.com/terraincognita07/pilltrack/internal/models"
	"github.com/terraincognita07/pilltrack/internal/security"
	"github.com/terraincognita07/pilltrack/internal/services"
)

const generatedPasswordLength = 12

// UserCmd creates an account, or resets the password of an existing one.
type UserCmd struct {
	Email  string `required:"" help:"Account email address."`
	Name   string `help:"Full name used in reminder greetings."`
	Role   string `default:"customer" enum:"customer,staff" help:"Account role."`
	Prompt bool   `help:"Read the password from the terminal instead of generating one."`
}

func (cmd *UserCmd) Run(ctx *Context) error {
	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		return err
	}

	password, generated, err := cmd.password(ctx)
	if err != nil {
		return err
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return err
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

	out := ctx.out()
	if found {
		if err := repositories.Users.UpdatePasswordHash(user.ID, passwordHash); err != nil {
			return fmt.Errorf("update user password: %w", err)
		}
		fmt.Fprintf(out, "Password reset for %s (id %d)\n", email, user.ID)
	} else {
		user = models.User{
			Email:        email,
			FullName:     strings.TrimSpace(cmd.Name),
			PasswordHash: passwordHash,
			Role:         cmd.Role,
		}
		if err := repositories.Users.Create(&user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(out, "Created %s %s (id %d)\n", user.Role, email, user.ID)
	}

	if generated {
		fmt.Fprintf(out, "Generated password: %s\n", password)
	}
	return nil
}

func (cmd *UserCmd) password(ctx *Context) (string, bool, error) {
	if !cmd.Prompt {
		password, err := security.GeneratePassword(generatedPasswordLength)
		return password, true, err
	}

	fmt.Fprint(ctx.out(), "Password: ")
	raw, err := ctx.readPassword()
	fmt.Fprintln(ctx.out())
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimSpace(string(raw))
	if err := services.ValidatePasswordStrength(password); err != nil {
		return "", false, fmt.Errorf("%w: use at least 8 characters with upper, lower and digit", err)
	}
	return password, false, nil
}
