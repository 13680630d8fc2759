package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration problems that would prevent the daemon from
// operating. Provider API keys are intentionally not required here; stages
// report missing credentials through their health checks so the daemon can
// still run the parts that are configured.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		problems = append(problems, "paths.media_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir is required")
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		problems = append(problems, "paths.scratch_dir is required")
	}

	if c.Synthesis.OverrunTolerance >= c.Synthesis.TrimmableRatio {
		problems = append(problems, fmt.Sprintf(
			"synthesis.overrun_tolerance (%.2f) must be below synthesis.trimmable_ratio (%.2f)",
			c.Synthesis.OverrunTolerance, c.Synthesis.TrimmableRatio))
	}
	if c.Synthesis.SpeedupCeiling > 1.5 {
		problems = append(problems, fmt.Sprintf(
			"synthesis.speedup_ceiling (%.2f) is beyond any listenable speed change", c.Synthesis.SpeedupCeiling))
	}

	if format := c.Logging.Format; format != "console" && format != "json" {
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
