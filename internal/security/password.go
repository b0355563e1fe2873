package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const generatedPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

var errInvalidPasswordLength = errors.New("password length must be positive")

// GeneratePassword draws length characters uniformly from a look-alike free alphabet.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", errInvalidPasswordLength
	}

	alphabetSize := big.NewInt(int64(len(generatedPasswordAlphabet)))
	password := make([]byte, length)
	for index := range password {
		position, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		password[index] = generatedPasswordAlphabet[position.Int64()]
	}
	return string(password), nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func PasswordMatches(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
