package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"resumeforge/internal/config"
	"resumeforge/internal/render"
	"resumeforge/internal/render/pdf"
	"resumeforge/internal/templates"
)

// cli 持有各子命令共享的状态。
type cli struct {
	verbose bool
	catalog string
	logger  *slog.Logger
	cfg     config.RenderConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "resumectl",
		Short: "Render resumes, CVs and cover letters from JSON documents",
		Long: `resumectl renders documents offline with the same template catalog
and engines the API uses. It needs no database, redis or object storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cfg, err := config.LoadRender()
			if err != nil {
				return fmt.Errorf("load render config: %w", err)
			}
			if c.catalog != "" {
				cfg.CatalogPath = c.catalog
			}
			c.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&c.catalog, "catalog", "", "Extra template catalog YAML (overrides RENDER_CATALOG_PATH)")

	rootCmd.AddCommand(newTemplatesCmd(c))
	rootCmd.AddCommand(newRenderCmd(c))
	rootCmd.AddCommand(newValidateCmd(c))

	return rootCmd
}

func (c *cli) engine() (*render.Engine, error) {
	catalog, err := templates.LoadCatalog(c.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("catalog loaded", slog.Int("templates", len(catalog.Entries())))

	return render.NewEngine(catalog,
		pdf.WithCompression(c.cfg.PDFCompression),
		pdf.WithWatermark(c.cfg.WatermarkText),
	).WithDefaultTemplate(c.cfg.DefaultTemplate), nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
