package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/meghashyamc/storefinder/cli"
	"github.com/meghashyamc/storefinder/config"
	"github.com/meghashyamc/storefinder/logger"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		os.Exit(1)
	}

	cli.Configure(cfg, logger.NewWithLevel(cfg.GetLogLevel()), nil, nil)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
