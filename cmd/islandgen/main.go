package main

import (
	"os"

	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
)

func main() {
	util.LoadEnv()
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("Command failed", "err", err)
		os.Exit(1)
	}
}
