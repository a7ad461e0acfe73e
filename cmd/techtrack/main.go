package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fetrias/techtrack/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}
	if cli.IsReported(err) {
		os.Exit(cli.GetExitCode(err))
	}
	// Flag and argument errors from cobra are usage mistakes.
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(cli.ExitCommandError)
}
