package main

import (
	"context"
	"runtime"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/typelib/internal/logger"
	"github.com/samcharles93/typelib/internal/report"
)

func validateCmd() *cli.Command {
	var (
		format  string
		maxSize int64
		jobs    int
	)

	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate typelib files and report the first defect in each",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format (text, json, yaml)",
				Value:       report.FormatText,
				Destination: &format,
			},
			&cli.Int64Flag{
				Name:        "max-size",
				Usage:       "reject files larger than this many bytes",
				Destination: &maxSize,
			},
			&cli.IntFlag{
				Name:        "jobs",
				Aliases:     []string{"j"},
				Usage:       "files validated in parallel (default: GOMAXPROCS)",
				Destination: &jobs,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("validate: at least one FILE is required", 1)
			}
			out, err := report.ParseFormat(format)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if !cmd.IsSet("max-size") {
				maxSize = settings.MaxFileSize
			}

			reports := validateFiles(paths, maxSize, jobs)

			invalid := 0
			for _, r := range reports {
				if r.Valid() {
					log.Debug("validated", "file", r.Source, "entries", r.Entries, "elapsed_us", r.ElapsedUS)
					continue
				}
				invalid++
				log.Debug("rejected", "file", r.Source, "kind", r.Failure.Kind, "offset", r.Failure.Offset)
			}

			if err := report.Write(cmd.Root().Writer, out, reports...); err != nil {
				return err
			}
			if invalid > 0 {
				log.Warn("validation failed", "files", len(paths), "invalid", invalid)
				return cli.Exit("", 2)
			}
			return nil
		},
	}
}

// validateFiles checks paths with at most jobs workers and returns the
// reports in argument order.
func validateFiles(paths []string, limit int64, jobs int) []*report.Report {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	reports := make([]*report.Report, len(paths))
	sem := make(chan struct{}, jobs)

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			reports[i] = report.FromFile(path, limit)
		})
	}
	wg.Wait()
	return reports
}
