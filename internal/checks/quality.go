package checks

import (
	"context"
	"regexp"
	"strings"

	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/pkg/shared/config"
)

var (
	debugPrintRe    = regexp.MustCompile(`console\.(log|error|warn|info|debug)\s*\(`)
	markerCommentRe = regexp.MustCompile(`(?i)(TODO|FIXME|HACK|XXX|BUG):`)
)

func qualityChecks(engine config.Engine) []Check {
	debugPrint := Check{
		ID:       "debug-print",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityBlocking,
		Fixable:  true,
	}
	debugPrint.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) || isCommentLine(line) {
				continue
			}
			if debugPrintRe.MatchString(line) {
				found = append(found, hit(debugPrint, f, n, "leftover debug print statement"))
			}
		}
		return found, nil
	}

	markerComment := Check{
		ID:       "marker-comment",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityWarning,
	}
	markerComment.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if markerCommentRe.MatchString(line) {
				found = append(found, hit(markerComment, f, n, "unresolved marker comment"))
			}
		}
		return found, nil
	}

	longLine := Check{
		ID:       "long-line",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityWarning,
	}
	longLine.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if len(strings.TrimRight(line, " \t")) > engine.LineLength {
				found = append(found, hit(longLine, f, n, "line exceeds the configured length limit"))
			}
		}
		return found, nil
	}

	trailingWhitespace := Check{
		ID:       "trailing-whitespace",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityInfo,
		Fixable:  true,
	}
	trailingWhitespace.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if line != strings.TrimRight(line, " \t") {
				found = append(found, hit(trailingWhitespace, f, n, "trailing whitespace"))
			}
		}
		return found, nil
	}

	functionLength := Check{
		ID:       "function-length",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityWarning,
	}
	functionLength.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for _, fn := range scanFunctions(f.Lines) {
			if fn.end-fn.start+1 <= engine.FunctionLines {
				continue
			}
			if !fn.touches(f) {
				continue
			}
			found = append(found, hit(functionLength, f, fn.start, "function exceeds the configured line budget"))
		}
		return found, nil
	}

	functionComplexity := Check{
		ID:       "function-complexity",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityWarning,
	}
	functionComplexity.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for _, fn := range scanFunctions(f.Lines) {
			if fn.complexity(f.Lines) <= engine.Complexity {
				continue
			}
			if !fn.touches(f) {
				continue
			}
			found = append(found, hit(functionComplexity, f, fn.start, "function exceeds the configured complexity budget"))
		}
		return found, nil
	}

	return []Check{debugPrint, markerComment, longLine, trailingWhitespace, functionLength, functionComplexity}
}
