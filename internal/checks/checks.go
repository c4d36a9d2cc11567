package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/pkg/shared/config"
)

// File is the unit of work a check operates on. Changed holds the 1-based line
// numbers touched by the reviewed change; a nil map means the whole file is
// considered changed (used by the fixer's re-scan).
type File struct {
	Path    string
	Lines   []string
	Changed map[int]bool
	// NoFinalNewline records that the collected content did not end with a
	// newline, so rewritten content round-trips byte for byte.
	NoFinalNewline bool
}

// NearChanged reports whether a line is within or adjacent to the changed set.
func (f File) NearChanged(line int) bool {
	if f.Changed == nil {
		return true
	}
	return f.Changed[line] || f.Changed[line-1] || f.Changed[line+1]
}

// Content joins the file back into a single string.
func (f File) Content() string {
	return strings.Join(f.Lines, "\n")
}

// Raw reconstructs the collected byte content, final newline included when
// the source had one.
func (f File) Raw() []byte {
	content := strings.Join(f.Lines, "\n")
	if !f.NoFinalNewline && len(f.Lines) > 0 {
		content += "\n"
	}
	return []byte(content)
}

// MatchFunc scans one file and yields findings. A non-nil error means the
// detector itself failed (external tool timeout, unparsable output) and is
// reported as an analyzer failure, never as a blocking finding.
type MatchFunc func(ctx context.Context, f File) ([]finding.Finding, error)

// Check is one registered detector. Severity and fixability are declared here,
// as data, so the gate policy stays auditable in one place.
type Check struct {
	ID       string
	Category finding.Category
	Severity finding.Severity
	Fixable  bool
	Match    MatchFunc
}

// Options is the explicit engine configuration passed into the registry and
// collector at construction. Quality checks are always on; the other
// categories are opt-in because they are more expensive and noisier.
type Options struct {
	Security      bool
	Performance   bool
	Accessibility bool
	AutoFix       bool
	JSON          bool
}

// Registry holds the closed set of declared checks keyed by rule id.
type Registry struct {
	checks []Check
	byID   map[string]Check
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Check)}
}

// Register adds a check, failing fast on duplicate or empty rule ids.
func (r *Registry) Register(c Check) error {
	if c.ID == "" {
		return fmt.Errorf("check has an empty rule id")
	}
	if _, exists := r.byID[c.ID]; exists {
		return fmt.Errorf("duplicate rule id %q", c.ID)
	}
	if c.Match == nil {
		return fmt.Errorf("check %q has no match function", c.ID)
	}
	r.byID[c.ID] = c
	r.checks = append(r.checks, c)
	return nil
}

// Lookup returns the check registered under id.
func (r *Registry) Lookup(id string) (Check, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Enabled returns the checks active under the given options, ordered by rule
// id so dispatch order is deterministic.
func (r *Registry) Enabled(opts Options) []Check {
	var enabled []Check
	for _, c := range r.checks {
		switch c.Category {
		case finding.CategoryQuality:
			enabled = append(enabled, c)
		case finding.CategorySecurity:
			if opts.Security {
				enabled = append(enabled, c)
			}
		case finding.CategoryPerformance:
			if opts.Performance {
				enabled = append(enabled, c)
			}
		case finding.CategoryAccessibility:
			if opts.Accessibility {
				enabled = append(enabled, c)
			}
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].ID < enabled[j].ID })
	return enabled
}

// DefaultRegistry builds the full declared check set from the engine settings.
func DefaultRegistry(engine config.Engine) (*Registry, error) {
	r := NewRegistry()

	groups := [][]Check{
		qualityChecks(engine),
		externalChecks(engine),
		securityChecks(engine),
		performanceChecks(),
		accessibilityChecks(),
	}
	for _, group := range groups {
		for _, c := range group {
			if err := r.Register(c); err != nil {
				return nil, fmt.Errorf("registering default checks: %w", err)
			}
		}
	}
	return r, nil
}

// hit builds a finding for check c at the given location. Messages are stable
// per rule, not templated per occurrence, to keep reports diffable.
func hit(c Check, f File, line int, message string) finding.Finding {
	return finding.Finding{
		Category: c.Category,
		RuleID:   c.ID,
		Severity: c.Severity,
		File:     f.Path,
		Line:     line,
		Message:  message,
		Fixable:  c.Fixable,
	}
}

// isCommentLine reports whether a line is a line or block comment continuation.
func isCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/*")
}
