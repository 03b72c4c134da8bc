package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/pdfsplit/internal/models"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ObjectFetcher downloads GCS objects to local files.
type ObjectFetcher struct {
	client *storage.Client
}

// NewObjectFetcher wraps client.
func NewObjectFetcher(client *storage.Client) *ObjectFetcher {
	return &ObjectFetcher{client: client}
}

// Fetch streams gs://bucket/object into destPath.
func (f *ObjectFetcher) Fetch(ctx context.Context, bucket, object, destPath string) error {
	gcsReader, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer gcsReader.Close()
	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()
	if _, err := io.Copy(localFile, gcsReader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return nil
}

// PublisherConfig configures a BucketPublisher.
type PublisherConfig struct {
	Bucket string
	Prefix string
	// Overwrite replaces existing objects. When false, objects that already
	// exist are left alone and reported as skipped.
	Overwrite   bool
	Concurrency int
	MaxRetries  int
	Backoff     time.Duration
}

// BucketPublisher uploads written segment files to a bucket.
type BucketPublisher struct {
	client *storage.Client
	config PublisherConfig
	logger *slog.Logger
	upload func(ctx context.Context, localPath, destObject string) error
}

// NewBucketPublisher applies defaults of 10 concurrent uploads and 4
// attempts starting at a one second backoff.
func NewBucketPublisher(client *storage.Client, config PublisherConfig, logger *slog.Logger) *BucketPublisher {
	if config.Concurrency <= 0 {
		config.Concurrency = 10
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 4
	}
	if config.Backoff <= 0 {
		config.Backoff = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &BucketPublisher{client: client, config: config, logger: logger}
	p.upload = p.uploadOnce
	return p
}

// ObjectName returns the object a local file is published to.
func (p *BucketPublisher) ObjectName(localPath string) string {
	return ObjectName(p.config.Prefix, localPath)
}

// ObjectName joins the file name of localPath onto prefix.
func ObjectName(prefix, localPath string) string {
	return path.Join(prefix, filepath.Base(localPath))
}

// Publish uploads every file concurrently. Objects that already exist are
// left alone unless Overwrite is set and are reported in Skipped. The first
// failed upload cancels the rest.
func (p *BucketPublisher) Publish(ctx context.Context, localPaths []string) (models.PublishResult, error) {
	p.logger.Info("Starting concurrent upload of segments.", "bucket", p.config.Bucket, "count", len(localPaths))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.config.Concurrency)

	objects := make([]string, len(localPaths))
	skipped := make([]bool, len(localPaths))
	for i, localPath := range localPaths {
		i, localPath := i, localPath
		objects[i] = p.ObjectName(localPath)
		destObject := objects[i]
		eg.Go(func() error {
			existed, err := p.uploadFile(gctx, localPath, destObject)
			if err != nil {
				return fmt.Errorf("segment %s: %w", filepath.Base(localPath), err)
			}
			skipped[i] = existed
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return models.PublishResult{}, err
	}

	result := models.PublishResult{Objects: objects}
	for i, s := range skipped {
		if s {
			result.Skipped = append(result.Skipped, objects[i])
		}
	}
	p.logger.Info("All segments published.", "bucket", p.config.Bucket, "skipped", len(result.Skipped))
	return result, nil
}

// uploadFile reports true when the object already existed and was skipped.
func (p *BucketPublisher) uploadFile(ctx context.Context, localPath, destObject string) (bool, error) {
	backoff := p.config.Backoff
	var lastErr error

	for i := 0; i < p.config.MaxRetries; i++ {
		err := p.upload(ctx, localPath, destObject)
		if err == nil {
			return false, nil
		}
		if IsPreconditionFailed(err) {
			p.logger.Info("SKIPPING: Object already exists.", "gcsObject", destObject)
			return true, nil
		}

		lastErr = err
		p.logger.Warn(
			"Upload failed, will retry.",
			"gcsObject", destObject,
			"attempt", i+1,
			"maxRetries", p.config.MaxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			p.logger.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", destObject, "error", ctx.Err())
			return false, ctx.Err()
		}
	}
	p.logger.Error("Upload failed after all retries.", "gcsObject", destObject, "error", lastErr)
	return false, fmt.Errorf("upload for %s failed after all retries: %w", destObject, lastErr)
}

func (p *BucketPublisher) uploadOnce(ctx context.Context, localPath, destObject string) error {
	localFileReader, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("could not open local file %s: %w", localPath, err)
	}
	defer localFileReader.Close()

	writeCtx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	obj := p.client.Bucket(p.config.Bucket).Object(destObject)
	if !p.config.Overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	gcsWriter := obj.NewWriter(writeCtx)
	gcsWriter.ContentType = "application/pdf"

	if _, err := io.Copy(gcsWriter, localFileReader); err != nil {
		_ = gcsWriter.Close()
		return fmt.Errorf("io.Copy to GCS failed: %w", err)
	}
	if err := gcsWriter.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
	}
	return nil
}

// IsPreconditionFailed reports whether err is a GCS 412, which a
// DoesNotExist condition produces when the object is already there.
func IsPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
