package main

import (
	"os"

	"screener-service/internal/app/delivery/cli"
	"screener-service/internal/app/drivers/logger"
	"screener-service/internal/pkg/utils"
)

func main() {
	log := logger.NewLogrusLogger(
		utils.GetEnvString("APP_ENV", "development"),
		utils.GetEnvString("LOGGER_LEVEL", "info"),
	)

	if err := cli.NewRootCommand(log).Execute(); err != nil {
		log.WithError(err).Error("screenercheck failed")
		os.Exit(1)
	}
}
