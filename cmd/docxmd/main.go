package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/nerdneilsfield/go-docx-md/internal/cli"
)

// Version information, set at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}
