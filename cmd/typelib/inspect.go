package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/typelib/pkg/typelib"
)

func inspectCmd() *cli.Command {
	var showDir bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header and directory of a valid typelib",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "entries",
				Aliases:     []string{"e"},
				Usage:       "list directory entries",
				Value:       true,
				Destination: &showDir,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("inspect: exactly one FILE is required", 1)
			}
			path := cmd.Args().First()

			f, err := typelib.OpenLimit(path, settings.MaxFileSize)
			if err != nil {
				return cli.Exit(fmt.Sprintf("%s: %v", path, err), 2)
			}
			defer func() { _ = f.Close() }()

			w := cmd.Root().Writer
			printHeader(w, path, f)
			if showDir {
				return printEntries(w, f)
			}
			return nil
		},
	}
}

func printHeader(w io.Writer, path string, f *typelib.File) {
	h := f.Header
	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Namespace: %s\n", f.Namespace())
	fmt.Fprintf(w, "Version: %d.%d\n", h.Major, h.Minor)
	fmt.Fprintf(w, "Size: %d bytes\n", h.Size)
	fmt.Fprintf(w, "Entries: %d (%d local)\n", h.NEntries, h.NLocalEntries)
	fmt.Fprintf(w, "Directory: @%d\n", h.Directory)
	if h.NAnnotations > 0 {
		fmt.Fprintf(w, "Annotations: %d @%d\n", h.NAnnotations, h.Annotations)
	}
}

func printEntries(w io.Writer, f *typelib.File) error {
	entries := f.Entries()
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tKIND\tLOCAL\tOFFSET\tNAMESPACE")
	for _, e := range entries {
		offset, ns := fmt.Sprintf("@%d", e.Offset), "-"
		if !e.Local {
			offset, ns = "-", e.Namespace
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\t%s\n", e.Index, e.Name, e.BlobType, e.Local, offset, ns)
	}
	return tw.Flush()
}
