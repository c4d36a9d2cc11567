package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/prgate/prgate/internal/checks"
	"github.com/prgate/prgate/internal/collect"
	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/internal/report"
	"github.com/prgate/prgate/pkg/shared"
)

// Engine dispatches every enabled check over every collected file and reduces
// the results into one deterministic report.
type Engine struct {
	registry *checks.Registry
	opts     checks.Options
	jobs     int
	logger   hclog.Logger
}

// New creates an engine. jobs bounds per-file concurrency.
func New(registry *checks.Registry, opts checks.Options, jobs int, logger hclog.Logger) *Engine {
	return &Engine{registry: registry, opts: opts, jobs: jobs, logger: logger}
}

// failure records one isolated detector failure: a single check on a single
// file. It never escalates past an informational finding.
type failure struct {
	file   string
	check  checks.Check
	reason string
}

// fileOutcome is the per-file result slot written by exactly one worker.
type fileOutcome struct {
	findings  []finding.Finding
	failures  []failure
	cancelled bool
}

// Analyze runs the detection phase. Files are analyzed concurrently with no
// ordering guarantee; ordering is restored by the aggregation step. A
// cancelled context stops dispatch of new files and yields a partial report
// marked incomplete.
func (e *Engine) Analyze(ctx context.Context, ref string, collected *collect.Result) *report.Report {
	enabled := e.registry.Enabled(e.opts)
	outcomes := make([]fileOutcome, len(collected.Files))

	shared.ForEveryWithBoundedGoroutines(e.jobs, collected.Files, func(i int, f checks.File) {
		if ctx.Err() != nil {
			outcomes[i].cancelled = true
			return
		}
		outcomes[i] = e.analyzeFile(ctx, f, enabled)
	})

	// single-writer reduce; the detection phase shares no state
	var all []finding.Finding
	var failures []failure
	incomplete := false
	for _, outcome := range outcomes {
		all = append(all, outcome.findings...)
		failures = append(failures, outcome.failures...)
		incomplete = incomplete || outcome.cancelled
	}

	return e.aggregate(ref, all, failures, collected.Skipped, incomplete)
}

// analyzeFile runs every enabled check against one file, isolating each
// check: a panic or error is converted into a failure record for that
// detector/file pair and the remaining checks still run.
func (e *Engine) analyzeFile(ctx context.Context, f checks.File, enabled []checks.Check) fileOutcome {
	var outcome fileOutcome
	for _, c := range enabled {
		if ctx.Err() != nil {
			outcome.cancelled = true
			return outcome
		}
		found, err := runCheck(ctx, c, f)
		if err != nil {
			e.logger.Warn("detector failed", "rule", c.ID, "file", f.Path, "err", err)
			outcome.failures = append(outcome.failures, failure{
				file:   f.Path,
				check:  c,
				reason: err.Error(),
			})
			continue
		}
		outcome.findings = append(outcome.findings, found...)
	}
	return outcome
}

// runCheck invokes one detector with panic isolation.
func runCheck(ctx context.Context, c checks.Check, f checks.File) (found []finding.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("detector panicked: %v", r)
		}
	}()
	return c.Match(ctx, f)
}
