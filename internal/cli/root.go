// Package cli implements the pdfsplit command line.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfsplit/internal/config"
	"github.com/Lllllllleong/pdfsplit/internal/docservice"
	"github.com/Lllllllleong/pdfsplit/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	configPath string
	logFormat  string
	logLevel   string

	cfg       = config.Default()
	appLogger = slog.Default()

	docs docservice.Service = docservice.NewPDFService()
)

var rootCmd = &cobra.Command{
	Use:   "pdfsplit",
	Short: "Split PDF documents into fixed-size segments",
	Long: `pdfsplit partitions a PDF into consecutive segments of a fixed number
of pages and writes each segment to its own file named <name>_<n>.pdf.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.pdfsplit/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// Execute runs the root command. Cancelling ctx stops a split between
// segments.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadSettings(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}

	loaded := config.Default()
	if path != "" {
		var err error
		if loaded, err = config.Load(path); err != nil {
			return err
		}
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}

	l, err := logger.New(logger.Options{
		Format: loaded.Log.Format,
		Level:  loaded.Log.Level,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	cfg = loaded
	appLogger = l
	return nil
}
