package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/2beens/fitcoach/internal/auth"
	"github.com/2beens/fitcoach/internal/backup"
	"github.com/2beens/fitcoach/internal/coaching"
	"github.com/2beens/fitcoach/internal/coaching/ai"
	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/coaching/store"
	"github.com/2beens/fitcoach/internal/config"
	"github.com/2beens/fitcoach/internal/db"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"
	"github.com/2beens/fitcoach/pkg"
)

const generatedPasswordLength = 12

// Context is handed to every command's Run.
type Context struct {
	Config  *config.Config
	Out     io.Writer
	Metrics *metrics.Manager
	NowFunc func() time.Time
	// OpenStore opens the configured store; the returned func releases it.
	OpenStore func(ctx context.Context) (store.Store, func(), error)
}

func NewContext(cfg *config.Config, out io.Writer) *Context {
	return &Context{
		Config:  cfg,
		Out:     out,
		Metrics: metrics.NewManager("fitcoach", "coachctl", prometheus.NewRegistry()),
		NowFunc: time.Now,
		OpenStore: func(ctx context.Context) (store.Store, func(), error) {
			return openStore(ctx, cfg)
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.StoreDriver == "sqlite" {
		s, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("FITCOACH_POSTGRES_PASS"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("new db pool: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return store.NewPostgres(pool), pool.Close, nil
}

// service builds a coaching service without sessions and without the AI coach.
func (c *Context) service(s store.Store) *coaching.Service {
	authService := auth.NewAuthService(
		&auth.Coach{Email: c.Config.CoachEmail},
		s,
		"",
		0,
		nil,
	)
	service := coaching.NewService(s, ai.NewCoach(nil, 1, time.Second, c.Metrics), authService, c.Metrics)
	service.NowFunc = c.NowFunc
	return service
}

func (c *Context) printJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type MigrateCmd struct{}

// Run opens the store, which applies the pending migrations on both drivers.
func (cmd *MigrateCmd) Run(ctx *Context) error {
	_, release, err := ctx.OpenStore(context.Background())
	if err != nil {
		return err
	}
	defer release()

	fmt.Fprintf(ctx.Out, "%s store migrated\n", ctx.Config.StoreDriver)
	return nil
}

// HashPasswordCmd prints the bcrypt hash expected in FITCOACH_COACH_PASSWORD_HASH.
type HashPasswordCmd struct {
	Password string `arg:"" help:"Plain coach password."`
}

func (cmd *HashPasswordCmd) Run(ctx *Context) error {
	hash, err := pkg.HashPassword(cmd.Password)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, hash)
	return nil
}

type ClientCreateCmd struct {
	Email       string `arg:"" help:"Client sign-in email."`
	Name        string `help:"Display name (defaults to the email)."`
	Password    string `help:"Initial password; generated when empty."`
	LicenseDays int    `name:"license-days" help:"License length in days, 0 for none." default:"30"`
}

func (cmd *ClientCreateCmd) Run(ctx *Context) error {
	s, release, err := ctx.OpenStore(context.Background())
	if err != nil {
		return err
	}
	defer release()

	password := cmd.Password
	if password == "" {
		if password, err = pkg.GenerateRandomString(generatedPasswordLength); err != nil {
			return fmt.Errorf("generate password: %w", err)
		}
	}

	newClient := roster.NewClient{
		Email:       cmd.Email,
		Password:    password,
		Name:        cmd.Name,
		LicenseDays: cmd.LicenseDays,
	}
	if err := newClient.Validate(); err != nil {
		return err
	}

	profile, err := ctx.service(s).CreateClient(context.Background(), newClient)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "client created: %s (%s)\n", profile.ID, profile.Email)
	if cmd.Password == "" {
		fmt.Fprintf(ctx.Out, "generated password: %s\n", password)
	}
	if profile.SubscriptionExpiresAt != nil {
		fmt.Fprintf(ctx.Out, "license expires: %s\n", profile.SubscriptionExpiresAt.Format(time.RFC3339))
	}
	return nil
}

type ClientListCmd struct {
	JSON bool `name:"json" help:"Print JSON."`
}

func (cmd *ClientListCmd) Run(ctx *Context) error {
	s, release, err := ctx.OpenStore(context.Background())
	if err != nil {
		return err
	}
	defer release()

	clients, err := ctx.service(s).ListClients(context.Background())
	if err != nil {
		return err
	}

	if cmd.JSON {
		return ctx.printJSON(clients)
	}

	if len(clients) == 0 {
		fmt.Fprintln(ctx.Out, "No clients found")
		return nil
	}

	now := ctx.NowFunc()
	fmt.Fprintln(ctx.Out, "Clients:")
	for _, c := range clients {
		status := "active"
		if err := c.CheckAccess(now); err != nil {
			status = err.Error()
		}
		fmt.Fprintf(ctx.Out, "  [%s] %s <%s> - %s, %.0f kcal\n",
			status, c.ID, c.Email, c.DisplayName(), c.Targets.Calories())
	}
	return nil
}

type ClientDeleteCmd struct {
	ID string `arg:"" help:"Client id."`
}

func (cmd *ClientDeleteCmd) Run(ctx *Context) error {
	s, release, err := ctx.OpenStore(context.Background())
	if err != nil {
		return err
	}
	defer release()

	if err := ctx.service(s).DeleteClient(context.Background(), cmd.ID); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "client deleted: %s\n", cmd.ID)
	return nil
}

type DayShowCmd struct {
	Client string `arg:"" help:"Client id."`
	Date   string `arg:"" help:"Date (YYYY-MM-DD)."`
}

func (cmd *DayShowCmd) Run(ctx *Context) error {
	date, err := day.ParseDate(cmd.Date)
	if err != nil {
		return err
	}

	s, release, err := ctx.OpenStore(context.Background())
	if err != nil {
		return err
	}
	defer release()

	view, err := ctx.service(s).Effective(context.Background(), cmd.Client, date)
	if err != nil {
		return err
	}

	return ctx.printJSON(view)
}

type BackupCmd struct {
	Credentials string `help:"Google drive service account credentials json (defaults to drive_credentials_path)." type:"path"`
	ShareWith   string `name:"share-with" help:"Email that gets reader access to the backup files."`
}

func (cmd *BackupCmd) Run(ctx *Context) error {
	credentialsPath := cmd.Credentials
	if credentialsPath == "" {
		credentialsPath = ctx.Config.DriveCredentialsPath
	}
	if credentialsPath == "" {
		return fmt.Errorf("google drive credentials json not specified")
	}

	exists, err := pkg.PathExists(credentialsPath, false)
	if err != nil {
		return fmt.Errorf("check credentials file: %w", err)
	}
	if !exists {
		return fmt.Errorf("credentials file %s not found", credentialsPath)
	}

	credentialsJson, err := os.ReadFile(credentialsPath)
	if err != nil {
		return fmt.Errorf("unable to read credentials file: %w", err)
	}

	s, release, err := ctx.OpenStore(context.Background())
	if err != nil {
		return err
	}
	defer release()

	uploader, err := backup.NewDriveUploader(context.Background(), credentialsJson, cmd.ShareWith)
	if err != nil {
		return err
	}

	return cmd.run(ctx, s, uploader)
}

func (cmd *BackupCmd) run(ctx *Context, source backup.Source, uploader backup.Uploader) error {
	result, err := backup.
		NewService(source, uploader, ctx.Config.DriveBackupFolder, ctx.Metrics).
		DoBackup(context.Background(), ctx.NowFunc())
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "backup done: %d files in folder %s\n", len(result.Files), result.FolderID)
	for _, name := range result.Files {
		fmt.Fprintf(ctx.Out, " -- %s\n", name)
	}
	return nil
}
