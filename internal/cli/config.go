package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfsplit/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Long: `Writes the built-in defaults to --config, or ~/.pdfsplit/config.toml.
An existing file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate config file: %w", err)
		}
		path = p
	}

	if !configInitForce {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("config file %s already exists (use --force to replace it)", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	cmd.Printf("Wrote default configuration to %s\n", path)
	return nil
}
