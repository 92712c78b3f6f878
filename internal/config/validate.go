package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRuntime(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateModels(); err != nil {
		return err
	}
	return c.validatePublish()
}

func (c *Config) validateRuntime() error {
	switch c.Runtime.RunIDMode {
	case "timestamp", "uuid":
	default:
		return fmt.Errorf("runtime.run_id_mode must be timestamp or uuid, got %q", c.Runtime.RunIDMode)
	}
	if c.Runtime.EncoderTimeoutSeconds < 0 {
		return errors.New("runtime.encoder_timeout_seconds must be >= 0 (0 disables the timeout)")
	}
	if c.Runtime.ProbeTimeoutSeconds < 0 {
		return errors.New("runtime.probe_timeout_seconds must be >= 0 (0 disables the timeout)")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return errors.New("render.width and render.height must be even")
	}
	return nil
}

func (c *Config) validateValidation() error {
	v := c.Validation
	if v.MinDurationSeconds >= v.MaxDurationSeconds {
		return errors.New("validation.min_duration_seconds must be below validation.max_duration_seconds")
	}
	if v.MinSizeMB >= v.MaxSizeMB {
		return errors.New("validation.min_size_mb must be below validation.max_size_mb")
	}
	if v.AspectTolerance > 1 {
		return errors.New("validation.aspect_tolerance must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateModels() error {
	if c.Detect.Temperature < 0 || c.Detect.Temperature > 2 {
		return errors.New("detect.temperature must be between 0 and 2")
	}
	if c.Craft.Temperature < 0 || c.Craft.Temperature > 2 {
		return errors.New("craft.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if !slices.Contains(Visibilities, c.Publish.DefaultVisibility) {
		return fmt.Errorf("publish.default_visibility must be one of %v, got %q", Visibilities, c.Publish.DefaultVisibility)
	}
	return nil
}

// Visibilities lists the accepted upload visibility values.
var Visibilities = []string{"public", "unlisted", "private"}
