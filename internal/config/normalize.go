package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeModels(); err != nil {
		return err
	}
	c.normalizeRunner()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = defaultLedgerPath
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeModels() error {
	if strings.TrimSpace(c.Models.EarlyDir) == "" {
		c.Models.EarlyDir = strings.TrimSpace(os.Getenv("EMBSEG_EARLY_MODEL_DIR"))
	}
	if strings.TrimSpace(c.Models.LateDir) == "" {
		c.Models.LateDir = strings.TrimSpace(os.Getenv("EMBSEG_LATE_MODEL_DIR"))
	}

	var err error
	if strings.TrimSpace(c.Models.EarlyDir) != "" {
		if c.Models.EarlyDir, err = expandPath(c.Models.EarlyDir); err != nil {
			return fmt.Errorf("models.early_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Models.LateDir) != "" {
		if c.Models.LateDir, err = expandPath(c.Models.LateDir); err != nil {
			return fmt.Errorf("models.late_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeRunner() {
	if strings.TrimSpace(c.Runner.Binary) == "" {
		c.Runner.Binary = defaultRunnerBinary
	}
	if c.Runner.TimeoutSeconds == 0 {
		c.Runner.TimeoutSeconds = defaultRunnerTimeout
	}
	if c.Runner.MinFreeGiB == 0 {
		c.Runner.MinFreeGiB = defaultMinFreeGiB
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	if strings.TrimSpace(c.Output.PixelSizeXYZ) == "" {
		c.Output.PixelSizeXYZ = defaultPixelSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
