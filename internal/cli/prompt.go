package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfsplit/internal/models"
	"github.com/Lllllllleong/pdfsplit/internal/services"
)

// promptConfirmer asks on the command's input. Anything but y or yes,
// including end of input, declines.
type promptConfirmer struct {
	cmd    *cobra.Command
	reader *bufio.Reader
}

func newPromptConfirmer(cmd *cobra.Command) *promptConfirmer {
	return &promptConfirmer{cmd: cmd, reader: bufio.NewReader(cmd.InOrStdin())}
}

func (p *promptConfirmer) ConfirmUnevenSplit(_ context.Context, plan models.SplitPlan) (bool, error) {
	p.cmd.Println(services.UnevenSplitMessage(plan))
	return p.ask("Do you want to proceed anyway?")
}

func (p *promptConfirmer) ConfirmOverwrite(_ context.Context, existing []string) (bool, error) {
	p.cmd.Println(services.OverwriteMessage(existing))
	return p.ask("Do you want to overwrite them?")
}

func (p *promptConfirmer) ask(question string) (bool, error) {
	p.cmd.Printf("%s [y/N]: ", question)
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
