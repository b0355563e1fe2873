package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultTimezone         = "Asia/Ho_Chi_Minh"
	DefaultPort             = "8080"
	DefaultSMTPPort         = 587
	DefaultAppName          = "Pilltrack"
	DefaultReminderInterval = time.Minute
	minSecretKeyLength      = 32
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":    {},
	"changeme":  {},
	"change_me": {},
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough settings are present to deliver mail.
func (smtp SMTPConfig) Enabled() bool {
	return smtp.Host != "" && smtp.From != ""
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

func (telegram TelegramConfig) Enabled() bool {
	return telegram.BotToken != "" && telegram.ChatID != 0
}

type Config struct {
	Location         *time.Location
	DBPath           string
	Port             string
	SecretKey        string
	ReminderInterval time.Duration
	AppName          string
	AppURL           string
	SMTP             SMTPConfig
	Telegram         TelegramConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	secretKey, err := ResolveSecretKey()
	if err != nil {
		return nil, err
	}
	port, err := ResolvePort()
	if err != nil {
		return nil, err
	}
	interval, err := resolveReminderInterval()
	if err != nil {
		return nil, err
	}
	smtpConfig, err := resolveSMTP()
	if err != nil {
		return nil, err
	}
	telegramConfig, err := resolveTelegram()
	if err != nil {
		return nil, err
	}

	return &Config{
		Location:         MustLoadLocation(getEnv("TZ", DefaultTimezone)),
		DBPath:           getEnv("DB_PATH", filepath.Join("data", "pilltrack.db")),
		Port:             port,
		SecretKey:        secretKey,
		ReminderInterval: interval,
		AppName:          getEnv("APP_NAME", DefaultAppName),
		AppURL:           strings.TrimRight(getEnv("APP_URL", ""), "/"),
		SMTP:             smtpConfig,
		Telegram:         telegramConfig,
	}, nil
}

func ResolveSecretKey() (string, error) {
	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secretKey == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secretKey)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secretKey) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secretKey, nil
}

func ResolvePort() (string, error) {
	raw := getEnv("PORT", DefaultPort)
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return strconv.Itoa(port), nil
}

func resolveReminderInterval() (time.Duration, error) {
	raw := getEnv("REMINDER_INTERVAL", "")
	if raw == "" {
		return DefaultReminderInterval, nil
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		return 0, fmt.Errorf("invalid REMINDER_INTERVAL %q", raw)
	}
	return interval, nil
}

func resolveSMTP() (SMTPConfig, error) {
	port := DefaultSMTPPort
	if raw := getEnv("SMTP_PORT", ""); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 65535 {
			return SMTPConfig{}, fmt.Errorf("invalid SMTP_PORT %q", raw)
		}
		port = parsed
	}
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     port,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnv("SMTP_FROM", ""),
	}, nil
}

func resolveTelegram() (TelegramConfig, error) {
	telegram := TelegramConfig{BotToken: getEnv("TELEGRAM_BOT_TOKEN", "")}
	if raw := getEnv("TELEGRAM_CHAT_ID", ""); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return TelegramConfig{}, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", raw)
		}
		telegram.ChatID = chatID
	}
	return telegram, nil
}

func MustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
