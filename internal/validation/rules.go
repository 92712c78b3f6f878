package validation

import (
	"fmt"
	"math"

	"pixal/internal/config"
	"pixal/internal/textutil"
)

// Rules holds the platform thresholds.
type Rules struct {
	MaxDurationSeconds float64
	MinDurationSeconds float64
	MinWidth           int
	MinHeight          int
	TargetAspect       float64
	AspectTolerance    float64
	MaxSizeMB          float64
	MinSizeMB          float64
	MaxTitleLength     int
	MaxCaptionLength   int
}

// DefaultRules returns the YouTube Shorts constraints.
func DefaultRules() Rules {
	return Rules{
		MaxDurationSeconds: 60,
		MinDurationSeconds: 1,
		MinWidth:           720,
		MinHeight:          1280,
		TargetAspect:       9.0 / 16.0,
		AspectTolerance:    0.10,
		MaxSizeMB:          256,
		MinSizeMB:          0.1,
		MaxTitleLength:     100,
		MaxCaptionLength:   500,
	}
}

// RulesFromConfig reads the [validation] section.
func RulesFromConfig(cfg *config.Config) Rules {
	v := cfg.Validation
	return Rules{
		MaxDurationSeconds: v.MaxDurationSeconds,
		MinDurationSeconds: v.MinDurationSeconds,
		MinWidth:           v.MinWidth,
		MinHeight:          v.MinHeight,
		TargetAspect:       v.TargetAspect,
		AspectTolerance:    v.AspectTolerance,
		MaxSizeMB:          v.MaxSizeMB,
		MinSizeMB:          v.MinSizeMB,
		MaxTitleLength:     v.MaxTitleLength,
		MaxCaptionLength:   v.MaxCaptionLength,
	}
}

// Measurement is what the gate knows about one rendered clip.
type Measurement struct {
	Duration    float64
	Width       int
	Height      int
	SizeMB      float64
	Title       *string
	CaptionText string
}

// AspectRatio returns width/height, or 0 when height is unknown.
func (m Measurement) AspectRatio() float64 {
	if m.Height == 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}

// Check applies every rule and returns the errors and warnings in rule order.
func (r Rules) Check(m Measurement) (errs []string, warnings []string) {
	errs = []string{}
	warnings = []string{}

	if m.Duration > r.MaxDurationSeconds {
		errs = append(errs, fmt.Sprintf("Duration %.1fs exceeds %gs limit", m.Duration, r.MaxDurationSeconds))
	}
	if m.Width < r.MinWidth || m.Height < r.MinHeight {
		errs = append(errs, fmt.Sprintf("Resolution %dx%d below minimum %dx%d", m.Width, m.Height, r.MinWidth, r.MinHeight))
	}
	if ratio := m.AspectRatio(); ratio > 0 && r.TargetAspect > 0 {
		deviation := math.Abs(ratio-r.TargetAspect) / r.TargetAspect
		if deviation > r.AspectTolerance {
			warnings = append(warnings, fmt.Sprintf("Aspect ratio %.3f deviates from target %.3f by %.1f%%", ratio, r.TargetAspect, deviation*100))
		}
	}
	if m.SizeMB > r.MaxSizeMB {
		errs = append(errs, fmt.Sprintf("File size %.1fMB exceeds %gMB limit", m.SizeMB, r.MaxSizeMB))
	}

	switch {
	case m.Title == nil || *m.Title == "":
		warnings = append(warnings, "Missing title in metadata")
	case textutil.RuneLen(*m.Title) > r.MaxTitleLength:
		errs = append(errs, fmt.Sprintf("Title length %d exceeds %d chars", textutil.RuneLen(*m.Title), r.MaxTitleLength))
	}
	if n := textutil.RuneLen(m.CaptionText); r.MaxCaptionLength > 0 && n > r.MaxCaptionLength {
		warnings = append(warnings, fmt.Sprintf("Caption text length %d exceeds %d chars", n, r.MaxCaptionLength))
	}

	if m.SizeMB < r.MinSizeMB {
		errs = append(errs, "File size suspiciously small (possible empty artifact)")
	}
	if m.Duration < r.MinDurationSeconds {
		errs = append(errs, fmt.Sprintf("Duration less than %g second(s) (possible empty artifact)", r.MinDurationSeconds))
	}
	return errs, warnings
}
