package checks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/prgate/prgate/internal/finding"
)

var (
	reactImportRe = regexp.MustCompile(`import\s+React|from\s+['"]react['"]`)

	expensiveChainRes = []*regexp.Regexp{
		regexp.MustCompile(`\.filter\s*\([^)]*\)\s*\.map\s*\(`),
		regexp.MustCompile(`\.sort\s*\(`),
		regexp.MustCompile(`\.reduce\s*\(`),
	}
	memoizedRe = regexp.MustCompile(`useMemo|useCallback`)

	iterationRe = regexp.MustCompile(`\b(\w+)\.(?:forEach|map)\s*\(`)

	heavyImportRes = []*regexp.Regexp{
		regexp.MustCompile(`import\s+\*\s+as\s`),
		regexp.MustCompile(`from\s+['"]lodash['"]`),
		regexp.MustCompile(`from\s+['"]moment['"]`),
	}

	subscriptionRe = regexp.MustCompile(`addEventListener|setInterval\s*\(|setTimeout\s*\(`)
	teardownRe     = regexp.MustCompile(`removeEventListener|clearInterval|clearTimeout`)
	effectRe       = regexp.MustCompile(`useEffect\s*\(`)
	cleanupRe      = regexp.MustCompile(`return\s*(\(\s*\)\s*=>|function\b)`)

	jsxOpenRe    = regexp.MustCompile(`<[A-Za-z][\w.]*(\s|>|/>)`)
	jsxNonTagRes = regexp.MustCompile(`</|<=|>=|=>`)

	syncOperationRes = []*regexp.Regexp{
		regexp.MustCompile(`fs\.readFileSync`),
		regexp.MustCompile(`fs\.writeFileSync`),
		regexp.MustCompile(`localStorage\.(getItem|setItem)\s*\([^)]*JSON\.parse`),
		regexp.MustCompile(`while\s*\(.*Date\.now\(\)`),
	}

	rasterImgTagRe = regexp.MustCompile(`(?i)<img\s+[^>]*src=[^>]*\.(png|jpe?g)`)
	rasterImportRe = regexp.MustCompile(`(?i)require\s*\(['"][^'"]*\.(png|jpe?g)`)
	lazyLoadingRe  = regexp.MustCompile(`loading=`)
)

func performanceChecks() []Check {
	missingMemoization := Check{
		ID:       "missing-memoization",
		Category: finding.CategoryPerformance,
		Severity: finding.SeverityWarning,
	}
	missingMemoization.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		if !reactImportRe.MatchString(f.Content()) {
			return nil, nil
		}
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) || memoizedRe.MatchString(line) {
				continue
			}
			for _, re := range expensiveChainRes {
				if re.MatchString(line) {
					found = append(found, hit(missingMemoization, f, n, "expensive derived value recomputed on every render"))
					break
				}
			}
		}
		return found, nil
	}

	mutatingIteration := Check{
		ID:       "mutating-iteration",
		Category: finding.CategoryPerformance,
		Severity: finding.SeverityWarning,
	}
	mutatingIteration.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			m := iterationRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			mutator := regexp.MustCompile(fmt.Sprintf(`\b%s\.(push|splice|unshift|pop|shift)\s*\(`, regexp.QuoteMeta(m[1])))
			// the callback usually spans a handful of lines; scan the block
			for j := i; j < len(f.Lines) && j < i+10; j++ {
				if mutator.MatchString(f.Lines[j]) {
					found = append(found, hit(mutatingIteration, f, n, "iteration mutates the collection it walks"))
					break
				}
			}
		}
		return found, nil
	}

	missingListKey := Check{
		ID:       "missing-list-key",
		Category: finding.CategoryPerformance,
		Severity: finding.SeverityWarning,
	}
	missingListKey.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		if !reactImportRe.MatchString(f.Content()) {
			return nil, nil
		}
		var found []finding.Finding
		inMap := false
		depth := 0
		for i, line := range f.Lines {
			n := i + 1
			if strings.Contains(line, ".map(") {
				inMap = true
				depth = 0
			}
			if inMap {
				depth += strings.Count(line, "(") - strings.Count(line, ")")
				if jsxOpenRe.MatchString(line) && !strings.Contains(line, "key=") && !jsxNonTagRes.MatchString(line) {
					if f.NearChanged(n) {
						found = append(found, hit(missingListKey, f, n, "list item rendered without a stable key"))
					}
				}
				if depth < 0 {
					inMap = false
				}
			}
		}
		return found, nil
	}

	leakySubscription := Check{
		ID:       "leaky-subscription",
		Category: finding.CategoryPerformance,
		Severity: finding.SeverityWarning,
	}
	leakySubscription.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) || !effectRe.MatchString(line) {
				continue
			}
			subscribes := false
			cleansUp := false
			for j := i; j < len(f.Lines) && j < i+20; j++ {
				if subscriptionRe.MatchString(f.Lines[j]) {
					subscribes = true
				}
				if teardownRe.MatchString(f.Lines[j]) || cleanupRe.MatchString(f.Lines[j]) {
					cleansUp = true
				}
			}
			if subscribes && !cleansUp {
				found = append(found, hit(leakySubscription, f, n, "subscription created without a matching teardown"))
			}
		}
		return found, nil
	}

	heavyImport := Check{
		ID:       "heavy-import",
		Category: finding.CategoryPerformance,
		Severity: finding.SeverityWarning,
	}
	heavyImport.Match = matchAnyPattern(&heavyImport, heavyImportRes, "import pulls in a large dependency graph")

	syncOperations := Check{
		ID:       "sync-operations",
		Category: finding.CategoryPerformance,
		Severity: finding.SeverityWarning,
	}
	syncOperations.Match = matchAnyPattern(&syncOperations, syncOperationRes, "synchronous operation blocks the event loop")

	unoptimizedImages := Check{
		ID:       "unoptimized-images",
		Category: finding.CategoryPerformance,
		Severity: finding.SeverityWarning,
	}
	unoptimizedImages.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) || isCommentLine(line) {
				continue
			}
			if !rasterImgTagRe.MatchString(line) && !rasterImportRe.MatchString(line) {
				continue
			}
			// lazy loading or an optimizing Image component counts as handled
			if lazyLoadingRe.MatchString(line) || strings.Contains(line, "Image") {
				continue
			}
			found = append(found, hit(unoptimizedImages, f, n, "raster image used without lazy loading or an optimizing component"))
		}
		return found, nil
	}

	return []Check{missingMemoization, mutatingIteration, missingListKey, leakySubscription, heavyImport, syncOperations, unoptimizedImages}
}
