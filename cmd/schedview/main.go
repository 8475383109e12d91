package main

import (
	"os"

	"schedview/internal/cli"
	appLog "schedview/internal/log"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		appLog.Error("schedview failed", err)
		os.Exit(1)
	}
}
