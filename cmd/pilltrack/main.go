package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/pilltrack/internal/api"
	"github.com/terraincognita07/pilltrack/internal/cli"
	"github.com/terraincognita07/pilltrack/internal/config"
	"github.com/terraincognita07/pilltrack/internal/db"
	"github.com/terraincognita07/pilltrack/internal/notify"
)

const shutdownTimeout = 10 * time.Second

type commandLine struct {
	Serve serveCmd     `cmd:"" default:"1" help:"Run the HTTP API and the reminder scanner."`
	User  cli.UserCmd  `cmd:"" help:"Create an account or reset its password."`
	Token cli.TokenCmd `cmd:"" help:"Print a bearer token for an account."`
}

type serveCmd struct{}

func main() {
	commands := commandLine{}
	parser := kong.Parse(&commands,
		kong.Name("pilltrack"),
		kong.Description("Contraceptive pill schedule tracking with reminders."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := execute(parser, cfg); err != nil {
		log.Fatalf("%s: %v", parser.Command(), err)
	}
}

// execute runs the parsed command. The configured zone reaches the services
// through cfg.Location only; the process-wide time.Local is left alone.
func execute(parser *kong.Context, cfg *config.Config) error {
	return parser.Run(&cli.Context{DBPath: cfg.DBPath, SecretKey: cfg.SecretKey}, cfg)
}

func (cmd *serveCmd) Run(cfg *config.Config) error {
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	handler, err := api.NewHandler(database, api.HandlerOptions{
		SecretKey:        cfg.SecretKey,
		Location:         cfg.Location,
		Dispatcher:       notify.FromConfig(cfg),
		ReminderInterval: cfg.ReminderInterval,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(handler, cfg.AppName)

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	scanner := handler.ReminderScanner().Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		scanner.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("%s listening on http://0.0.0.0:%s (db: %s, tz: %s)", cfg.AppName, cfg.Port, cfg.DBPath, cfg.Location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	scanner.Stop()
	return nil
}

func newApp(handler *api.Handler, appName string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}
