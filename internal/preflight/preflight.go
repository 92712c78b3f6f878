package preflight

import (
	"context"

	"pixal/internal/config"
	"pixal/internal/deps"
	"pixal/internal/generation"
	"pixal/internal/services/llm"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed reports whether the result should fail the overall report.
func (r Result) Failed() bool {
	return !r.Passed && !r.Optional
}

// Report is the ordered list of check results.
type Report struct {
	Results []Result
}

// OK reports whether every required check passed.
func (r Report) OK() bool {
	for _, result := range r.Results {
		if result.Failed() {
			return false
		}
	}
	return true
}

// Failures returns the required checks that did not pass.
func (r Report) Failures() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.Failed() {
			failed = append(failed, result)
		}
	}
	return failed
}

// Options toggles the network-bound checks.
type Options struct {
	// PingLLM sends a health check to both model endpoints.
	PingLLM bool
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) Report {
	if cfg == nil {
		return Report{}
	}

	var results []Result
	results = append(results, CheckCredentials(cfg.Credentials)...)
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		results = append(results, fromStatus(status))
	}
	results = append(results, CheckDirectoryAccess("Workspace", cfg.Paths.Workspace))
	results = append(results, CheckCreatable("Outputs directory", cfg.Outputs.BaseDir))

	if opts.PingLLM {
		single := llm.WithRetryMaxAttempts(1)
		results = append(results,
			CheckLLM(ctx, "Detect LLM", cfg.Credentials.Get("CLAUDE_API_KEY"), generation.NewDetectClient(cfg, single)),
			CheckLLM(ctx, "Craft LLM", cfg.Credentials.Get("OPENAI_API_KEY"), generation.NewCraftClient(cfg, single)),
		)
	}
	return Report{Results: results}
}

func fromStatus(status deps.Status) Result {
	result := Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
	}
	switch {
	case status.Available:
		result.Detail = status.Command
	case status.Optional:
		result.Detail = status.Detail + " (" + status.Description + ")"
	default:
		result.Detail = status.Detail
	}
	return result
}
