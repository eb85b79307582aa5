package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/2beens/fitcoach/internal/config"
	"github.com/2beens/fitcoach/internal/logging"
)

// coachctl - fitcoach admin tasks, run next to the service

var CLI struct {
	Env     string `help:"Environment [dev | prod | ddev]." default:"development"`
	Config  string `help:"Path for the TOML config file." type:"path" default:"./config.toml"`
	DotEnv  string `name:"dotenv" help:"Env file with secrets, loaded when present." default:".env"`
	Verbose bool   `short:"v" help:"Debug logs."`

	Migrate      MigrateCmd      `cmd:"" help:"Apply the pending schema migrations."`
	HashPassword HashPasswordCmd `cmd:"" name:"hash-password" help:"Print a bcrypt hash for the coach password."`
	Client       struct {
		Create ClientCreateCmd `cmd:"" help:"Create a client account and profile."`
		List   ClientListCmd   `cmd:"" help:"List all clients."`
		Delete ClientDeleteCmd `cmd:"" help:"Delete a client profile with its days and messages."`
	} `cmd:"" help:"Manage clients."`
	Day struct {
		Show DayShowCmd `cmd:"" help:"Show the effective view of a client's day."`
	} `cmd:"" help:"Inspect days."`
	Backup BackupCmd `cmd:"" help:"Export every client to google drive."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("coachctl"),
		kong.Description("fitcoach admin tool"),
		kong.UsageOnError(),
	)

	if err := godotenv.Load(CLI.DotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: load %s: %v\n", CLI.DotEnv, err)
		os.Exit(1)
	}

	cfg, err := config.Load(CLI.Env, CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logLevel := "warn"
	if CLI.Verbose {
		logLevel = "debug"
	}
	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    logLevel,
		Environment: cfg.Environment,
	})

	appCtx := NewContext(cfg, os.Stdout)
	if err := kctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
