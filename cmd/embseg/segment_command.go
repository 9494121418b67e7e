package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"embseg/internal/config"
	"embseg/internal/logging"
	"embseg/internal/pipeline"
	"embseg/internal/preflight"
	"embseg/internal/runlog"
	"embseg/internal/scaling"
	"embseg/internal/services/stardist"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var (
		imagePath       string
		pixelSizeXYZ    string
		outputDir       string
		earlyModelDir   string
		earlyProbThresh float64
		earlyNMSThresh  float64
		lateModelDir    string
		lateProbThresh  float64
		lateNMSThresh   float64
		timepointSwitch int
		outputFormat    string
		genROI          bool
		no8BitShift     bool
		resume          bool
	)

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Segment a volume or a directory of volumes",
		Long: `Segment runs instance segmentation over the input path. A single file is
processed as-is; a directory is walked recursively and every .klb, .h5, .tif,
and .npy volume is processed in lexicographic order. Each volume's time index
picks the early or late stage model, and per-volume failures are logged and
skipped so one corrupt acquisition does not sink the batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("pixel_size_xyz") {
				cfg.Output.PixelSizeXYZ = pixelSizeXYZ
			}
			if flags.Changed("output_dir") {
				cfg.Paths.OutputDir = outputDir
			}
			if flags.Changed("early_model_dir") {
				cfg.Models.EarlyDir = earlyModelDir
			}
			if flags.Changed("early_prob_thresh") {
				cfg.Models.EarlyProbThresh = earlyProbThresh
			}
			if flags.Changed("early_nms_thresh") {
				cfg.Models.EarlyNMSThresh = earlyNMSThresh
			}
			if flags.Changed("late_model_dir") {
				cfg.Models.LateDir = lateModelDir
			}
			if flags.Changed("late_prob_thresh") {
				cfg.Models.LateProbThresh = lateProbThresh
			}
			if flags.Changed("late_nms_thresh") {
				cfg.Models.LateNMSThresh = lateNMSThresh
			}
			if flags.Changed("timepoint_switch") {
				cfg.Models.TimepointSwitch = timepointSwitch
			}
			if flags.Changed("output_format") {
				cfg.Output.Format = outputFormat
			}
			if flags.Changed("gen_roi") {
				cfg.Output.GenerateROI = genROI
			}
			if flags.Changed("no_8bit_shift") {
				cfg.Output.No8BitShift = no8BitShift
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			input, err := config.ExpandPath(imagePath)
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}
			target, err := resolveOutputDir(cfg, input)
			if err != nil {
				return err
			}
			cfg.Paths.OutputDir = target
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			pixelSize, err := scaling.ParsePixelSize(cfg.Output.PixelSizeXYZ)
			if err != nil {
				return err
			}

			if failed := preflight.Failed(preflight.Run(cfg, target)); len(failed) > 0 {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, result := range failed {
					fmt.Fprintln(out, statusLine(result, colorize))
				}
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "embseg.log")},
			})
			if err != nil {
				return err
			}

			store, err := runlog.Open(cfg.Paths.LedgerPath)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			client := stardist.NewCLI(stardist.WithBinary(cfg.Runner.Binary))

			opts := pipeline.Options{
				InputPath:       input,
				OutputDir:       target,
				PixelSize:       pixelSize,
				EarlyModelDir:   cfg.Models.EarlyDir,
				EarlyProbThresh: cfg.Models.EarlyProbThresh,
				EarlyNMSThresh:  cfg.Models.EarlyNMSThresh,
				LateModelDir:    cfg.Models.LateDir,
				LateProbThresh:  cfg.Models.LateProbThresh,
				LateNMSThresh:   cfg.Models.LateNMSThresh,
				TimepointSwitch: cfg.Models.TimepointSwitch,
				OutputFormat:    cfg.Output.Format,
				GenerateROI:     cfg.Output.GenerateROI,
				No8BitShift:     cfg.Output.No8BitShift,
				Resume:          resume,
				FileTimeout:     time.Duration(cfg.Runner.TimeoutSeconds) * time.Second,
			}

			p, err := pipeline.New(opts, client, store, logger)
			if err != nil {
				return err
			}
			summary, err := p.Run(cmd.Context())
			if summary != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			}
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d volumes failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image_path", "i", "", "Volume file or directory of volumes to segment")
	cmd.Flags().StringVar(&pixelSizeXYZ, "pixel_size_xyz", "", "Physical voxel size in micrometers as x,y,z")
	cmd.Flags().StringVarP(&outputDir, "output_dir", "o", "", "Directory for label volumes (defaults next to the input)")
	cmd.Flags().StringVar(&earlyModelDir, "early_model_dir", "", "Early-stage model directory")
	cmd.Flags().Float64Var(&earlyProbThresh, "early_prob_thresh", 0, "Early-stage probability threshold")
	cmd.Flags().Float64Var(&earlyNMSThresh, "early_nms_thresh", 0, "Early-stage non-maximum suppression threshold")
	cmd.Flags().StringVar(&lateModelDir, "late_model_dir", "", "Late-stage model directory")
	cmd.Flags().Float64Var(&lateProbThresh, "late_prob_thresh", 0, "Late-stage probability threshold")
	cmd.Flags().Float64Var(&lateNMSThresh, "late_nms_thresh", 0, "Late-stage non-maximum suppression threshold")
	cmd.Flags().IntVar(&timepointSwitch, "timepoint_switch", 0, "Time index at which routing switches to the late model (-1 = always early)")
	cmd.Flags().StringVarP(&outputFormat, "output_format", "f", "", "Label output format (klb/h5/tif/npy)")
	cmd.Flags().BoolVar(&genROI, "gen_roi", false, "Also emit per-object ROI artifacts")
	cmd.Flags().BoolVar(&no8BitShift, "no_8bit_shift", false, "Disable the 8-bit intensity downshift before inference")
	cmd.Flags().BoolVar(&resume, "resume", false, "Skip volumes a previous run already segmented")
	_ = cmd.MarkFlagRequired("image_path")

	return cmd
}

// resolveOutputDir applies the output directory precedence: explicit flag or
// config value first, otherwise a "labels" directory next to the input.
func resolveOutputDir(cfg *config.Config, input string) (string, error) {
	if cfg.Paths.OutputDir != "" {
		return config.ExpandPath(cfg.Paths.OutputDir)
	}
	base := filepath.Dir(input)
	return filepath.Join(base, "labels"), nil
}

func renderSummary(summary *pipeline.Summary) string {
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		objects := ""
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		} else if result.Status == runlog.StatusCompleted {
			objects = strconv.Itoa(result.ObjectCount)
		}
		rows = append(rows, []string{
			filepath.Base(result.InputPath),
			strconv.Itoa(result.TimeIndex),
			string(result.Stage),
			string(result.Status),
			objects,
			result.Duration.Round(time.Millisecond).String(),
			errText,
		})
	}
	table := renderTable(
		[]string{"Volume", "T", "Stage", "Status", "Objects", "Duration", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
	totals := fmt.Sprintf("Processed %d, failed %d, skipped %d (run %s)",
		summary.Processed, summary.Failed, summary.Skipped, summary.RunID)
	return table + "\n" + totals
}
