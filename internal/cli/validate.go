package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfsplit/internal/splitter"
)

var validateCmd = &cobra.Command{
	Use:   "validate <input.pdf>",
	Short: "Check that a file can be split",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := splitter.NewValidator(docs).Validate(path); err != nil {
		return err
	}

	h, err := docs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer docs.Close(h)

	cmd.Printf("%s is a valid PDF with %d page(s)\n", path, docs.PageCount(h))
	return nil
}
