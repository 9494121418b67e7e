package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"embseg/internal/config"
	"embseg/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the runner binary, model directories, and output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := outputDir
			if target == "" {
				target = cfg.Paths.OutputDir
			}
			if target != "" {
				if target, err = config.ExpandPath(target); err != nil {
					return err
				}
			}

			results := preflight.Run(cfg, target)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, result := range results {
				fmt.Fprintln(out, statusLine(result, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output_dir", "o", "", "Output directory to check instead of the configured one")
	return cmd
}

func statusLine(result preflight.Result, colorize bool) string {
	status := "FAIL"
	color := ansiRed
	if result.Passed {
		status = "OK"
		color = ansiGreen
	}
	line := fmt.Sprintf("  %-24s [%s] %s", result.Name+":", status, result.Detail)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
