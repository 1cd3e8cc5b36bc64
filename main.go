package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/server"
	"github.com/Zachkp/folio/internal/store"
)

const banner = `
   ___     _ _
  / __|___| (_)___
 | _/ _ \ | | / _ \
 |_|\___/_|_|_\___/
`

var (
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio site with an owner edit mode",
	Long: `folio serves a single-page portfolio (skills, achievements and
experience) and lets the logged-in owner edit it in place.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, err = newLogger(cfg.Logging.Level, debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, resetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zc.Level = lvl
	}
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func adminCredentials(c *config.Config) server.Credentials {
	creds := server.Credentials{
		Username:     c.AdminUsername(),
		Password:     c.Admin.Password,
		PasswordHash: c.Admin.PasswordHash,
	}
	if creds.Password == "" && creds.PasswordHash == "" {
		creds.Password = config.DefaultAdminPassword
	}
	return creds
}

func newSubmitter(c *config.Config) contact.Submitter {
	smtpCfg := contact.SMTPConfig{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		User:     c.SMTP.User,
		Password: c.SMTP.Password,
		To:       c.SMTP.To,
	}
	if smtpCfg.To == "" {
		smtpCfg.To = smtpCfg.User
	}
	if smtpCfg.Configured() {
		return contact.NewSMTPSubmitter(smtpCfg)
	}
	return contact.Simulated{Delay: c.Contact.SimulatedDelay}
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.Addr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Mode:      %s\n\n", cfg.Server.Mode)
	for _, w := range cfg.DevDefaults() {
		yellow.Print("    ⚠ ")
		fmt.Println(w)
		logger.Warn(w)
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	p, err := portfolio.Open(ctx, db,
		portfolio.WithLogger(logger),
		portfolio.WithResetExperience(cfg.Migrations.ResetExperience))
	if err != nil {
		return fmt.Errorf("loading portfolio: %w", err)
	}

	opts := server.Options{
		Portfolio: p,
		Contact:   contact.NewService(newSubmitter(cfg), logger),
		Admin:     adminCredentials(cfg),
		Site:      site,
		Mode:      cfg.Server.Mode,
		StaticDir: "./static",
		Logger:    logger,
	}
	if cfg.Visitors.Enabled {
		opts.Visits = db
		opts.VisitRetention = cfg.Visitors.Retention
		logger.Info("visitor tracking enabled with hashed IP addresses")
	}
	srv, err := server.New(opts)
	if err != nil {
		return err
	}
	if _, err := srv.PurgeVisits(ctx); err != nil {
		logger.Warn("startup privacy cleanup failed", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if cfg.Visitors.Enabled {
		g.Go(func() error {
			t := time.NewTicker(24 * time.Hour)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					if _, err := srv.PurgeVisits(gctx); err != nil {
						logger.Warn("privacy cleanup failed", zap.Error(err))
					}
				}
			}
		})
	}
	return g.Wait()
}
