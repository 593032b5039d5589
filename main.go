package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattsolo1/grove-sync/cmd"
	"github.com/mattsolo1/grove-sync/pkg/forksync"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		if !forksync.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(forksync.ExitCode(err))
	}
}
