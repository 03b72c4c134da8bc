package main

import (
	"log/slog"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/pdfsplit/internal/logger"
	"github.com/Lllllllleong/pdfsplit/internal/services"
)

func init() {
	slog.SetDefault(logger.NewFunctionLogger())

	functions.HTTP("PlanSplit", services.PlanHandler(slog.Default()))
}

// main is required by the Go Functions Framework.
func main() {}
