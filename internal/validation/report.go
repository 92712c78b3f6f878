package validation

import "math"

// ClipValidation is the verdict for one rendered file. Probe-derived fields
// are null when the probe failed.
type ClipValidation struct {
	ClipPath    string   `json:"clip_path"`
	ClipID      string   `json:"clip_id"`
	Valid       bool     `json:"valid"`
	Duration    *float64 `json:"duration"`
	Width       *int     `json:"width"`
	Height      *int     `json:"height"`
	AspectRatio *float64 `json:"aspect_ratio"`
	FileSizeMB  float64  `json:"file_size_mb"`
	Title       *string  `json:"title"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
}

// Report is the run-wide verdict.
type Report struct {
	Valid        bool             `json:"valid"`
	ClipsTotal   int              `json:"clips_total"`
	ClipsValid   int              `json:"clips_valid"`
	ClipsInvalid int              `json:"clips_invalid"`
	Clips        []ClipValidation `json:"clips"`
	Errors       []string         `json:"errors"`
	Warnings     []string         `json:"warnings"`
}

// NoFilesError is the global error reported for an empty shorts directory.
const NoFilesError = "No MP4 files found in shorts directory"

func emptyReport() Report {
	return Report{
		Valid:    false,
		Clips:    []ClipValidation{},
		Errors:   []string{NoFilesError},
		Warnings: []string{},
	}
}

// aggregate fills totals and prefixed global messages from clip verdicts.
func aggregate(clips []ClipValidation, globalWarnings []string) Report {
	report := Report{
		Clips:    clips,
		Errors:   []string{},
		Warnings: append([]string{}, globalWarnings...),
	}
	for _, clip := range clips {
		if clip.Valid {
			report.ClipsValid++
		} else {
			report.ClipsInvalid++
		}
		for _, msg := range clip.Errors {
			report.Errors = append(report.Errors, clip.ClipPath+": "+msg)
		}
		for _, msg := range clip.Warnings {
			report.Warnings = append(report.Warnings, clip.ClipPath+": "+msg)
		}
	}
	report.ClipsTotal = len(clips)
	report.Valid = report.ClipsInvalid == 0 && len(report.Errors) == 0
	return report
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
