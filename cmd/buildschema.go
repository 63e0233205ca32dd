package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/config"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/progress"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/schema"
)

var buildSchemaCmd = &cobra.Command{
	Use:   "build-schema",
	Short: "Import collection definitions into the backend",
	Long: `Reads the schema file (a JSON array of collection definitions), signs in as
a superuser and imports every collection of the fixed import order that is not
an auth collection and does not exist yet.

Requires POCKETBASE_URL, POCKETBASE_ADMIN_EMAIL and POCKETBASE_ADMIN_PASSWORD.
A rejected collection is reported and the run continues; --strict turns any
rejection into a failing exit status.`,
	RunE: runBuildSchema,
}

func init() {
	buildSchemaCmd.Flags().String("schema", "", "schema file (defaults to schema.file from config)")
	buildSchemaCmd.Flags().StringSlice("exclude", nil, "glob patterns of collections to skip (added to schema.exclude)")
	buildSchemaCmd.Flags().Bool("dry-run", false, "report what would be imported without importing")
	buildSchemaCmd.Flags().Bool("strict", false, "exit non-zero when any collection fails to import")
	rootCmd.AddCommand(buildSchemaCmd)
}

func runBuildSchema(cmd *cobra.Command, args []string) error {
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	schemaPath, _ := cmd.Flags().GetString("schema")
	if schemaPath == "" {
		schemaPath = cfg.Schema.File
	}
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	strict, _ := cmd.Flags().GetBool("strict")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := pocketbase.New(creds.URL, pocketbase.WithTimeout(cfg.PocketBase.Timeout))
	if err := client.AuthSuperuser(ctx, creds.Email, creds.Password); err != nil {
		return fmt.Errorf("authenticating as superuser: %w", err)
	}
	logger.Info("authenticated", zap.String("url", creds.URL), zap.String("email", creds.Email))

	defs, err := schema.LoadFile(schemaPath)
	if err != nil {
		return err
	}
	logger.Info("loaded schema", zap.String("file", schemaPath), zap.Int("collections", len(defs)))

	p := &schema.Provisioner{
		Backend:  client,
		Order:    schema.ImportOrder,
		Exclude:  append(append([]string{}, cfg.Schema.Exclude...), exclude...),
		DryRun:   dryRun,
		Logger:   logger,
		Reporter: progress.NewReporter("Importing collections"),
	}
	summary, err := p.Run(ctx, defs)
	if err != nil {
		return err
	}

	if _, err := summary.WriteTo(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	if strict && summary.HasFailures() {
		return fmt.Errorf("%d collection(s) failed to import", len(summary.Failed))
	}
	return nil
}
