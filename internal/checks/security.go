package checks

import (
	"context"
	"math"
	"regexp"

	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/pkg/shared/config"
)

var (
	// Assignment of a quoted literal to a credential-shaped name. Names like
	// apiKeyPlaceholder will match too: the heuristic is deliberately
	// approximate and tuned by length and entropy, not by semantics.
	secretAssignRe = regexp.MustCompile("(?i)\\b[\\w-]*(key|secret|token|password)[\\w-]*\\s*[:=]\\s*[`'\"]([^`'\"]+)[`'\"]")
	envIndirectRe  = regexp.MustCompile(`process\.env|import\.meta\.env|\$\{`)

	sqlInjectionRes = []*regexp.Regexp{
		regexp.MustCompile("(?i)query\\s*\\(\\s*[`'\"][^`'\"]*\\$\\{"),
		regexp.MustCompile("(?i)query\\s*\\(\\s*[`'\"][^`'\"]*[`'\"]\\s*\\+"),
		regexp.MustCompile("\\.raw\\s*\\(\\s*[`'\"][^`'\"]*\\$\\{"),
	}

	xssSinkRes = []*regexp.Regexp{
		regexp.MustCompile(`dangerouslySetInnerHTML`),
		regexp.MustCompile(`innerHTML\s*=`),
		regexp.MustCompile(`document\.write\s*\(`),
		regexp.MustCompile("\\.html\\s*\\(\\s*[^)]*\\$\\{"),
		regexp.MustCompile(`v-html\s*=`),
	}

	evalUsageRes = []*regexp.Regexp{
		regexp.MustCompile(`\beval\s*\(`),
		regexp.MustCompile(`new\s+Function\s*\(`),
		regexp.MustCompile("setTimeout\\s*\\(\\s*[`'\"]"),
		regexp.MustCompile("setInterval\\s*\\(\\s*[`'\"]"),
	}

	// nested quantifiers in constructed or literal regexes
	unsafeRegexRes = []*regexp.Regexp{
		regexp.MustCompile(`RegExp\s*\([^)]*\(\.\*\)\+`),
		regexp.MustCompile(`RegExp\s*\([^)]*\(\.\+\)\+`),
		regexp.MustCompile(`/.*\(\.\*\)\+.*/`),
		regexp.MustCompile(`/.*\(\.\+\)\+.*/`),
	}

	weakRandomRe     = regexp.MustCompile(`Math\.random\s*\(\s*\)|Date\.now\s*\(\s*\)`)
	// substring match so camelCase names like sessionId still count
	sensitiveNameRe  = regexp.MustCompile(`(?i)(token|session|secret|nonce|key|\bid\b)`)
	permissiveCorsRe = []*regexp.Regexp{
		regexp.MustCompile(`Access-Control-Allow-Origin.*\*`),
		regexp.MustCompile(`(?i)credentials:\s*['"]include['"].*origin:\s*['"]?\*`),
		regexp.MustCompile(`cors\s*\(\s*\{\s*origin:\s*true`),
	}
)

func securityChecks(engine config.Engine) []Check {
	hardcodedSecret := Check{
		ID:       "hardcoded-secret",
		Category: finding.CategorySecurity,
		Severity: finding.SeverityBlocking,
	}
	hardcodedSecret.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) || isCommentLine(line) {
				continue
			}
			m := secretAssignRe.FindStringSubmatch(line)
			if m == nil || envIndirectRe.MatchString(line) {
				continue
			}
			literal := m[2]
			if len(literal) < engine.SecretMinLength {
				continue
			}
			if shannonEntropy(literal) < engine.SecretEntropy {
				continue
			}
			found = append(found, hit(hardcodedSecret, f, n, "credential-shaped string literal assigned to a sensitive name"))
		}
		return found, nil
	}

	sqlInjection := Check{
		ID:       "sql-injection",
		Category: finding.CategorySecurity,
		Severity: finding.SeverityBlocking,
	}
	sqlInjection.Match = matchAnyPattern(&sqlInjection, sqlInjectionRes, "query built from interpolated or concatenated values")

	xssSink := Check{
		ID:       "xss-sink",
		Category: finding.CategorySecurity,
		Severity: finding.SeverityWarning,
	}
	xssSink.Match = matchAnyPattern(&xssSink, xssSinkRes, "untrusted content injected into rendered output")

	evalUsage := Check{
		ID:       "eval-usage",
		Category: finding.CategorySecurity,
		Severity: finding.SeverityBlocking,
	}
	evalUsage.Match = matchAnyPattern(&evalUsage, evalUsageRes, "dynamic code execution primitive")

	unsafeRegex := Check{
		ID:       "unsafe-regex",
		Category: finding.CategorySecurity,
		Severity: finding.SeverityWarning,
	}
	unsafeRegex.Match = matchAnyPattern(&unsafeRegex, unsafeRegexRes, "regular expression with nested quantifiers invites catastrophic backtracking")

	insecureRandom := Check{
		ID:       "insecure-random",
		Category: finding.CategorySecurity,
		Severity: finding.SeverityWarning,
	}
	insecureRandom.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if weakRandomRe.MatchString(line) && sensitiveNameRe.MatchString(line) {
				found = append(found, hit(insecureRandom, f, n, "non-cryptographic randomness used in a security-sensitive context"))
			}
		}
		return found, nil
	}

	permissiveCors := Check{
		ID:       "permissive-cors",
		Category: finding.CategorySecurity,
		Severity: finding.SeverityWarning,
	}
	permissiveCors.Match = matchAnyPattern(&permissiveCors, permissiveCorsRe, "permissive cross-origin configuration")

	return []Check{hardcodedSecret, sqlInjection, xssSink, evalUsage, unsafeRegex, insecureRandom, permissiveCors}
}

// matchAnyPattern builds a MatchFunc that fires on changed lines matching any
// of the given patterns, at most once per line.
func matchAnyPattern(c *Check, patterns []*regexp.Regexp, message string) MatchFunc {
	return func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) || isCommentLine(line) {
				continue
			}
			for _, re := range patterns {
				if re.MatchString(line) {
					found = append(found, hit(*c, f, n, message))
					break
				}
			}
		}
		return found, nil
	}
}

// shannonEntropy returns the per-character entropy of s in bits.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	var total float64
	for _, r := range s {
		freq[r]++
		total++
	}
	var entropy float64
	for _, count := range freq {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
