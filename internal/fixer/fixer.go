package fixer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/prgate/prgate/internal/checks"
	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/pkg/shared"
)

// Application records one applied rewrite. It exists to prove idempotence in
// tests; the engine does not need it at runtime.
type Application struct {
	RuleID     string `json:"rule_id"`
	File       string `json:"file"`
	BeforeHash string `json:"before_hash"`
	AfterHash  string `json:"after_hash"`
}

// Outcome is the fix result for one file. Content is empty when the file was
// left untouched; Outstanding lists fixable findings that remain unfixed.
type Outcome struct {
	File        string
	Content     string
	Applied     []Application
	Outstanding []finding.Finding
}

// rewrite is a localized, deterministic line edit. keep=false deletes the
// line. A rewrite never touches any line other than the one it is given.
type rewrite func(line string) (replacement string, keep bool)

// rewrites holds the proven-idempotent edits, keyed by rule id. A rule is only
// declared fixable when an entry exists here.
var rewrites = map[string]rewrite{
	"debug-print": func(string) (string, bool) {
		return "", false
	},
	"trailing-whitespace": func(line string) (string, bool) {
		return strings.TrimRight(line, " \t"), true
	},
}

// Fixer applies safe rewrites for fixable findings and verifies the result
// against the same detector set.
type Fixer struct {
	registry *checks.Registry
	opts     checks.Options
	jobs     int
	logger   hclog.Logger
}

// New creates a fixer sharing the engine's registry and options.
func New(registry *checks.Registry, opts checks.Options, jobs int, logger hclog.Logger) *Fixer {
	return &Fixer{registry: registry, opts: opts, jobs: jobs, logger: logger}
}

// Fix processes the fixable findings file by file. Independent files are
// fixed concurrently; edits within one file are strictly sequential.
func (x *Fixer) Fix(ctx context.Context, files []checks.File, findings []finding.Finding) []Outcome {
	byPath := make(map[string][]finding.Finding)
	for _, f := range findings {
		if f.Fixable {
			byPath[f.File] = append(byPath[f.File], f)
		}
	}

	var targets []checks.File
	for _, f := range files {
		if len(byPath[f.Path]) > 0 {
			targets = append(targets, f)
		}
	}

	outcomes := make([]Outcome, len(targets))
	shared.ForEveryWithBoundedGoroutines(x.jobs, targets, func(i int, f checks.File) {
		outcomes[i] = x.fixFile(ctx, f, byPath[f.Path])
	})
	return outcomes
}

// fixFile applies all fixable findings of one file in descending line order,
// so earlier edits are unaffected by line-number shifts from later ones, then
// verifies the fixed point. On any verification failure the original content
// is kept and every finding is reported as outstanding.
func (x *Fixer) fixFile(ctx context.Context, f checks.File, fixable []finding.Finding) Outcome {
	outcome := Outcome{File: f.Path}

	ordered := append([]finding.Finding(nil), fixable...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Line != ordered[j].Line {
			return ordered[i].Line > ordered[j].Line
		}
		// on a shared line, in-place rewrites run before deletions so they
		// never act on a line shifted up by the deletion
		return !deletesLine(ordered[i].RuleID) && deletesLine(ordered[j].RuleID)
	})

	lines := append([]string(nil), f.Lines...)
	applied := make(map[string]int)
	var applications []Application

	for _, fd := range ordered {
		rw, ok := rewrites[fd.RuleID]
		if !ok || fd.Line < 1 || fd.Line > len(lines) {
			outcome.Outstanding = append(outcome.Outstanding, fd)
			continue
		}

		before := serialize(lines, f.NoFinalNewline)
		idx := fd.Line - 1
		if replacement, keep := rw(lines[idx]); keep {
			if replacement == lines[idx] {
				// already in the fixed form; applying again must not change anything
				continue
			}
			lines[idx] = replacement
		} else {
			lines = append(lines[:idx], lines[idx+1:]...)
		}

		applied[fd.RuleID]++
		applications = append(applications, Application{
			RuleID:     fd.RuleID,
			File:       f.Path,
			BeforeHash: contentHash(before),
			AfterHash:  contentHash(serialize(lines, f.NoFinalNewline)),
		})
	}

	if len(applications) == 0 {
		return outcome
	}

	if !x.verifyFixedPoint(ctx, f, lines, applied) {
		x.logger.Warn("fix verification failed, leaving file untouched", "file", f.Path)
		return Outcome{File: f.Path, Outstanding: fixable}
	}

	outcome.Content = serialize(lines, f.NoFinalNewline)
	outcome.Applied = applications
	return outcome
}

// serialize turns lines back into writable file content, restoring the final
// newline when the collected source had one.
func serialize(lines []string, noFinalNewline bool) string {
	return string(checks.File{Lines: lines, NoFinalNewline: noFinalNewline}.Raw())
}

// deletesLine reports whether a rule's rewrite removes its line entirely.
func deletesLine(ruleID string) bool {
	rw, ok := rewrites[ruleID]
	if !ok {
		return false
	}
	_, keep := rw("")
	return !keep
}

// verifyFixedPoint re-scans the rewritten content with the same checks and
// confirms that every applied rule lost exactly as many occurrences as were
// fixed. Occurrences outside the changed-line set are counted on both sides,
// so pre-existing issues do not fail the verification.
func (x *Fixer) verifyFixedPoint(ctx context.Context, original checks.File, fixedLines []string, applied map[string]int) bool {
	fixed := checks.File{Path: original.Path, Lines: fixedLines}
	fullOriginal := checks.File{Path: original.Path, Lines: original.Lines}

	for ruleID, count := range applied {
		c, ok := x.registry.Lookup(ruleID)
		if !ok {
			return false
		}
		before, err := countFindings(ctx, c, fullOriginal)
		if err != nil {
			return false
		}
		after, err := countFindings(ctx, c, fixed)
		if err != nil {
			return false
		}
		if after != before-count {
			return false
		}
	}
	return true
}

func countFindings(ctx context.Context, c checks.Check, f checks.File) (int, error) {
	found, err := c.Match(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(found), nil
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
