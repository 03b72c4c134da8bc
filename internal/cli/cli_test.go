package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/Lllllllleong/pdfsplit/internal/docservice"
)

// runCLI executes rootCmd with a throwaway config file so the user's
// ~/.pdfsplit is never read.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags() {
	configPath, logFormat, logLevel = "", "", ""
	splitOut, splitPages, splitYes = "", 0, false
	splitGCSBucket, splitGCSPrefix = "", ""
	planOut, planPages, planJSON = "", 0, false
	configInitForce = false

	// pflag remembers which flags were set by the previous Execute.
	unset := func(f *pflag.Flag) { f.Changed = false }
	rootCmd.PersistentFlags().VisitAll(unset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(unset)
		for _, sub := range c.Commands() {
			sub.Flags().VisitAll(unset)
		}
	}
}

func useDocs(t *testing.T, d docservice.Service) {
	t.Helper()
	old := docs
	docs = d
	t.Cleanup(func() { docs = old })
}
