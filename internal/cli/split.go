package cli

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfsplit/internal/gcp"
	"github.com/Lllllllleong/pdfsplit/internal/models"
	"github.com/Lllllllleong/pdfsplit/internal/services"
)

var (
	splitOut       string
	splitPages     int
	splitYes       bool
	splitGCSBucket string
	splitGCSPrefix string
)

// newPublisher opens a bucket publisher. The returned func releases the
// client.
var newPublisher = func(ctx context.Context, config gcp.PublisherConfig) (services.Publisher, func() error, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return gcp.NewBucketPublisher(client, config, appLogger), client.Close, nil
}

var splitCmd = &cobra.Command{
	Use:   "split <input.pdf>",
	Short: "Split a PDF into segments",
	Long: `Splits a PDF into consecutive segments of --pages pages each and writes
them to --out as <name>_1.pdf, <name>_2.pdf and so on.
An uneven last segment and existing output files are confirmed first
unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitOut, "out", "o", "", "output directory")
	splitCmd.Flags().IntVarP(&splitPages, "pages", "p", 0, "pages per segment (default from config, or 1)")
	splitCmd.Flags().BoolVarP(&splitYes, "yes", "y", false, "proceed without asking for confirmation")
	splitCmd.Flags().StringVar(&splitGCSBucket, "gcs-bucket", "", "upload written segments to this bucket")
	splitCmd.Flags().StringVar(&splitGCSPrefix, "gcs-prefix", "", "object name prefix for uploaded segments")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	req := models.SplitRequest{
		InputPath:       args[0],
		OutputDir:       firstNonEmpty(splitOut, cfg.Split.OutputDir),
		PagesPerSegment: pagesPerSegment(cmd, splitPages),
	}

	var confirmer services.Confirmer = newPromptConfirmer(cmd)
	if splitYes || cfg.Split.AssumeYes {
		confirmer = services.AutoConfirmer{AllowUneven: true, AllowOverwrite: true}
	}

	orchestrator := services.NewOrchestrator(docs, confirmer, appLogger)
	report, err := orchestrator.Run(ctx, req, func(p models.SplitProgress) {
		cmd.Printf("Wrote segment %d of %d\n", p.CompletedSegments, p.TotalSegments)
	})
	if err != nil {
		printIncomplete(cmd, report)
		return fmt.Errorf("split failed: %w", err)
	}
	if report.Status == models.StatusDeclined {
		cmd.Println("Split cancelled. No files were written.")
		return nil
	}
	cmd.Printf("Split %s into %d file(s) in %s\n", req.InputPath, len(report.Written), req.OutputDir)

	bucket := firstNonEmpty(splitGCSBucket, cfg.Publish.Bucket)
	if bucket == "" {
		return nil
	}
	return publish(ctx, cmd, gcp.PublisherConfig{
		Bucket:    bucket,
		Prefix:    firstNonEmpty(splitGCSPrefix, cfg.Publish.Prefix),
		Overwrite: cfg.Publish.Overwrite,
	}, report.Written)
}

func publish(ctx context.Context, cmd *cobra.Command, config gcp.PublisherConfig, paths []string) error {
	publisher, closeFn, err := newPublisher(ctx, config)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := publisher.Publish(ctx, paths)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	for _, obj := range result.Uploaded() {
		cmd.Printf("Uploaded gs://%s/%s\n", config.Bucket, obj)
	}
	for _, obj := range result.Skipped {
		cmd.Printf("Skipped gs://%s/%s (already exists)\n", config.Bucket, obj)
	}
	return nil
}

func printIncomplete(cmd *cobra.Command, report *services.Report) {
	if report == nil || (len(report.Written) == 0 && len(report.Missing) == 0) {
		return
	}
	if len(report.Written) > 0 {
		cmd.Println("Files written before the failure:")
		for _, p := range report.Written {
			cmd.Printf("  %s\n", p)
		}
	}
	if len(report.Missing) > 0 {
		cmd.Println("Files not written:")
		for _, p := range report.Missing {
			cmd.Printf("  %s\n", p)
		}
	}
}

// pagesPerSegment prefers an explicit --pages, whatever its value, over the
// configured default.
func pagesPerSegment(cmd *cobra.Command, flagValue int) int {
	if cmd.Flags().Changed("pages") {
		return flagValue
	}
	return cfg.Split.PagesPerSegment
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
