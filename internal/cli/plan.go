package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfsplit/internal/models"
	"github.com/Lllllllleong/pdfsplit/internal/services"
	"github.com/Lllllllleong/pdfsplit/internal/splitter"
)

var (
	planOut   string
	planPages int
	planJSON  bool
)

var planCmd = &cobra.Command{
	Use:   "plan <input.pdf>",
	Short: "Show how a PDF would be split",
	Long: `Validates the input and prints the segments a split would write,
without writing anything. Output files that already exist are listed.
The output directory defaults to the input's directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "output directory to check for existing files")
	planCmd.Flags().IntVarP(&planPages, "pages", "p", 0, "pages per segment (default from config, or 1)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "output the plan as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	req := models.SplitRequest{
		InputPath:       args[0],
		OutputDir:       firstNonEmpty(planOut, cfg.Split.OutputDir, filepath.Dir(args[0])),
		PagesPerSegment: pagesPerSegment(cmd, planPages),
	}

	orchestrator := services.NewOrchestrator(docs, services.AutoConfirmer{}, appLogger)
	report, err := orchestrator.Preview(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	if planJSON {
		data, err := json.MarshalIndent(report.Plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	plan := report.Plan
	cmd.Printf("%s: %d pages, %d segment(s) of up to %d pages\n",
		req.InputPath, plan.PageCount, plan.SegmentCount(), plan.PagesPerSegment)
	for _, seg := range plan.Segments {
		cmd.Printf("  [%d] pages %d-%d -> %s\n", seg.Index, seg.FirstPage+1, seg.LastPage+1,
			splitter.OutputFileName(report.BaseName, seg.Index))
	}
	if !plan.EvenlyDivisible {
		cmd.Println()
		cmd.Println(services.UnevenSplitMessage(plan))
	}
	if len(report.Existing) > 0 {
		cmd.Println()
		cmd.Println(services.OverwriteMessage(report.Existing))
	}
	return nil
}
