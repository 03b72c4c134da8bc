package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/pdfsplit/internal/logger"
	"github.com/Lllllllleong/pdfsplit/internal/services"
)

var (
	splitInstance *services.SplitFunction
	once          sync.Once
	initErr       error
)

func init() {
	slog.SetDefault(logger.NewFunctionLogger())

	// "SplitDocument" is the entry point name configured in GCP.
	functions.CloudEvent("SplitDocument", splitDocument)
}

// main is required by the Go Functions Framework.
func main() {}

func splitDocument(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		splitInstance, initErr = services.NewSplitFunction(context.Background(), slog.Default())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Errors are logged with job context inside Process.
	return splitInstance.Process(ctx, gcsEvent)
}
