package config

import (
	"errors"
	"fmt"
	"strings"

	"embseg/internal/scaling"
)

// OutputFormats are the label formats the runner can write.
var OutputFormats = []string{"klb", "h5", "tif", "npy"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateRunner(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateModels() error {
	if err := ensureThreshold("models.early_prob_thresh", c.Models.EarlyProbThresh); err != nil {
		return err
	}
	if err := ensureThreshold("models.early_nms_thresh", c.Models.EarlyNMSThresh); err != nil {
		return err
	}
	if err := ensureThreshold("models.late_prob_thresh", c.Models.LateProbThresh); err != nil {
		return err
	}
	if err := ensureThreshold("models.late_nms_thresh", c.Models.LateNMSThresh); err != nil {
		return err
	}
	if c.Models.TimepointSwitch < -1 {
		return errors.New("models.timepoint_switch must be >= 0, or -1 to always use the early model")
	}
	return nil
}

func (c *Config) validateRunner() error {
	if strings.TrimSpace(c.Runner.Binary) == "" {
		return errors.New("runner.binary must be set")
	}
	if c.Runner.TimeoutSeconds <= 0 {
		return errors.New("runner.timeout_seconds must be positive")
	}
	if c.Runner.MinFreeGiB < 0 {
		return errors.New("runner.min_free_gib must be >= 0")
	}
	return nil
}

func (c *Config) validateOutput() error {
	valid := false
	for _, format := range OutputFormats {
		if c.Output.Format == format {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("output.format must be one of %s", strings.Join(OutputFormats, "/"))
	}

	px, err := scaling.ParsePixelSize(c.Output.PixelSizeXYZ)
	if err != nil {
		return fmt.Errorf("output.pixel_size_xyz: %w", err)
	}
	if _, err := scaling.Compute(px); err != nil {
		return fmt.Errorf("output.pixel_size_xyz: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging.format must be console or json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be debug, info, warn, or error")
	}
	return nil
}

func ensureThreshold(key string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be between 0 and 1", key)
	}
	return nil
}
