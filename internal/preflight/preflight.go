package preflight

import (
	"context"
	"slices"

	"github.com/rywkoo/highlight-clipper/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string

	// Advisory checks report degraded providers rather than a broken setup.
	Advisory bool
}

// RunAll executes all applicable preflight checks for a run of providers.
func RunAll(ctx context.Context, cfg *config.Config, providers []string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Uploads directory", cfg.Paths.UploadsDir),
		CheckDirectoryAccess("Clips directory", cfg.Paths.ClipsDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	if slices.Contains(providers, config.ProviderEmotion) {
		emotion := CheckEmotionService(ctx, cfg.Emotion.URL)
		emotion.Advisory = true
		results = append(results, emotion)
	}
	return results
}

// Failed returns the non-advisory results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			failed = append(failed, r)
		}
	}
	return failed
}
