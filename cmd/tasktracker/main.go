package main

import (
	"context"
	"fmt"
	"os"

	"tasktracker/internal/cli"
)

func main() {
	result, err := cli.Run(context.Background(), os.Args[1:], cli.IOStreams{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(result.ExitCode)
}
