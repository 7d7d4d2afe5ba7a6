package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jwulff/flowscribe/internal/cli"
	"github.com/jwulff/flowscribe/internal/config"
	"github.com/jwulff/flowscribe/internal/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr, false)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	deps := &cli.Dependencies{
		Config: cfg,
		Now:    time.Now,
	}

	return cli.NewRootCmd(deps).Execute()
}
