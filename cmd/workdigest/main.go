package main

import (
	"context"
	"os"

	"workdigest/internal/client"
	"workdigest/internal/logger"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error(client.Diagnose(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
