package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		if code, ok := exitCode(err); ok {
			if msg := err.Error(); msg != "" {
				_, _ = fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(code)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:   "typelib",
		Usage:  "Validate GObject introspection typelib files",
		Flags:  append(loggingFlags(), configFlag()),
		Before: setup,
		// Exit codes are handled in main so commands stay testable.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			validateCmd(),
			inspectCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

// exitCode extracts the status carried by a cli.Exit error.
func exitCode(err error) (int, bool) {
	coder, ok := err.(cli.ExitCoder)
	if !ok {
		return 0, false
	}
	return coder.ExitCode(), true
}
