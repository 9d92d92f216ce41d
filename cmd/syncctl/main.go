package main

import (
	"fmt"
	"os"

	"github.com/wekeepgrowing/accounting-sync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.LoadBackend).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
