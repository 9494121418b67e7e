package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"embseg/internal/config"
	"embseg/internal/inputs"
	"embseg/internal/model"
)

func newInputsCommand(ctx *commandContext) *cobra.Command {
	var imagePath string
	var timepointSwitch int

	cmd := &cobra.Command{
		Use:   "inputs",
		Short: "List the volumes a segment run would process, with their routing",
		Long: `Inputs is a dry run of input enumeration: it lists every volume the segment
command would pick up, the time index parsed from each filename, and which
stage model the timepoint switch would route it to. Nothing is executed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			switchAt := cfg.Models.TimepointSwitch
			if cmd.Flags().Changed("timepoint_switch") {
				switchAt = timepointSwitch
			}

			input, err := config.ExpandPath(imagePath)
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}
			files, err := inputs.Enumerate(input)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(files))
			for _, file := range files {
				index := ""
				stage := ""
				components, err := inputs.ParseComponents(file)
				if err != nil {
					stage = "unparsable filename"
				} else {
					index = strconv.Itoa(components.TimeIndex)
					stage = string(previewStage(components.TimeIndex, switchAt, cfg.LateConfigured()))
				}
				rows = append(rows, []string{filepath.Base(file), index, stage})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Volume", "T", "Stage"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d volume(s) under %s\n", len(files), input)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image_path", "i", "", "Volume file or directory to enumerate")
	cmd.Flags().IntVar(&timepointSwitch, "timepoint_switch", 0, "Time index at which routing switches to the late model (-1 = always early)")
	_ = cmd.MarkFlagRequired("image_path")

	return cmd
}

// previewStage mirrors the router's stage decision without loading models, so
// the dry run works before model directories exist.
func previewStage(timeIndex, switchAt int, lateConfigured bool) model.Stage {
	if switchAt == model.AlwaysEarly || timeIndex < switchAt {
		return model.StageEarly
	}
	if !lateConfigured {
		return model.Stage("late (not configured)")
	}
	return model.StageLate
}
