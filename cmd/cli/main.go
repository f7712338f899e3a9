package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/mismipgen/internal/app"
	"github.com/vk/mismipgen/internal/cli"
)

// main is the entrypoint for the mismipgen application.
func main() {
	if err := run(os.Stdout, os.Stderr, os.Args); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. The script goes to outW; usage text and logs go to errW.
func run(outW, errW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	mismipApp := app.NewApp(outW, errW, appConfig)
	return mismipApp.Run(context.Background())
}
