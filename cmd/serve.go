package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/audit"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/dashboard"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/db"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/markdown"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/server"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/session"
)

const sessionPurgeInterval = time.Hour

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin panel",
	Long:  `Starts the ContentHub admin panel: server-rendered pages, the JSON API used by the page script, and the audit trail API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dbPath := databasePath(cfg)
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	backend := pocketbase.New(cfg.PocketBase.URL, pocketbase.WithTimeout(cfg.PocketBase.Timeout))
	sessions := session.NewStore(database, cfg.Server.SessionTTL)
	auditStore := audit.NewStore(database)

	dash, err := dashboard.New(dashboard.Options{
		Backend:  backend,
		Sessions: sessions,
		Audit:    auditStore,
		Markdown: markdown.New(markdown.Options{
			HighlightStyle: cfg.Markdown.HighlightStyle,
			AllowHTML:      cfg.Markdown.AllowHTML,
		}),
		Logger:         logger,
		AuthCollection: cfg.PocketBase.AuthCollection,
		PerPage:        cfg.Listing.PerPage,
		MaxPerPage:     cfg.Listing.MaxPerPage,
		SecureCookies:  cfg.Server.SecureCookies,
	})
	if err != nil {
		return fmt.Errorf("creating dashboard: %w", err)
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		AllowAll: cfg.Server.AllowAllOrigins,
	}, database, logger)

	dash.RegisterRoutes(srv.Router())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := backend.Health(checkCtx); err != nil {
		logger.Warn("backend not reachable; pages will fail until it is",
			zap.String("url", cfg.PocketBase.URL), zap.Error(err))
	}
	cancel()

	go purgeSessions(ctx, sessions, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("contenthub starting",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
		zap.String("database", dbPath),
		zap.String("backend", cfg.PocketBase.URL),
	)
	return srv.Start()
}

// purgeSessions drops expired sessions until ctx is done.
func purgeSessions(ctx context.Context, sessions *session.Store, logger *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purging sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}
