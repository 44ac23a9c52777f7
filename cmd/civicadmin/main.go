package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"civic-backend/internal/bootstrap"
	"civic-backend/internal/config"
	"civic-backend/internal/mailer"
	"civic-backend/internal/repository"
	"civic-backend/internal/service"
	"civic-backend/pkg/logger"
)

// backend is what the commands operate on.
type backend struct {
	Complaints repository.ComplaintRepository
	Auth       *service.AuthService
	Migrate    func(ctx context.Context) error
	Close      func()
}

type openFunc func(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backend, error)

// openBackend connects to the configured stores.
func openBackend(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backend, error) {
	stores, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	auth := service.NewAuthService(stores.Users, mailer.New(cfg.Mail, log), service.AuthOptions{
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		ClientURL:     cfg.ClientURL,
	}, log)
	return &backend{
		Complaints: stores.Complaints,
		Auth:       auth,
		Migrate:    stores.Migrate,
		Close:      stores.Close,
	}, nil
}

// cli holds the state shared by every command.
type cli struct {
	open    openFunc
	timeout time.Duration
	verbose bool

	log zerolog.Logger
	be  *backend
}

func newRootCmd(open openFunc) *cobra.Command {
	c := &cli{open: open, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "civicadmin",
		Short: "Administer the civic backend stores",
		Long: `civicadmin works directly against the database configured for the API
(DB_DRIVER with DB_DSN or MONGO_URI). It lists and updates IVR complaints,
exports them to a spreadsheet, promotes users and applies migrations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsStores(cmd) {
				return nil
			}
			cfg := config.Load()
			c.log = logger.New(cfg.Env)
			if !c.verbose {
				c.log = c.log.Level(zerolog.WarnLevel)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()
			be, err := c.open(ctx, cfg, c.log)
			if err != nil {
				return fmt.Errorf("open stores: %w", err)
			}
			c.be = be
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.be != nil && c.be.Close != nil {
				c.be.Close()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "Timeout for connecting and for each operation")

	root.AddCommand(c.complaintsCmd())
	root.AddCommand(c.usersCmd())
	root.AddCommand(c.migrateCmd())
	return root
}

// needsStores is false for cobra's own help and completion commands.
func needsStores(cmd *cobra.Command) bool {
	for p := cmd; p != nil; p = p.Parent() {
		switch p.Name() {
		case "help", "completion":
			return false
		}
	}
	return true
}

// ctx bounds a single command by --timeout.
func (c *cli) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema or create the mongo indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			if err := c.be.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openBackend).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
