package checks

import (
	"regexp"
	"strings"
)

// fnSpan is one function found by the line scanner. Lines are 1-based and
// inclusive.
type fnSpan struct {
	name  string
	start int
	end   int
}

// touches reports whether any line of the function is in the changed set.
func (s fnSpan) touches(f File) bool {
	if f.Changed == nil {
		return true
	}
	for n := s.start; n <= s.end; n++ {
		if f.Changed[n] {
			return true
		}
	}
	return false
}

var (
	fnDeclRe  = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+(\w+)`)
	fnArrowRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`)

	branchKeywordRe = regexp.MustCompile(`\b(if|else|for|while|case|catch)\b`)
	ternaryRe       = regexp.MustCompile(`\?[^:?]+:`)
)

// scanFunctions walks the file and extracts function spans by brace counting.
// This is a line-level heuristic, not a parse; it mirrors the granularity the
// rest of the detectors work at.
func scanFunctions(lines []string) []fnSpan {
	var spans []fnSpan

	i := 0
	for i < len(lines) {
		name, ok := matchFunctionDecl(lines[i])
		if !ok {
			i++
			continue
		}

		depth := 0
		opened := false
		end := i
		for j := i; j < len(lines); j++ {
			if j > i && !opened {
				// another declaration before any brace: the body never opened
				if _, decl := matchFunctionDecl(lines[j]); decl {
					break
				}
			}
			depth += strings.Count(lines[j], "{")
			depth -= strings.Count(lines[j], "}")
			if depth > 0 {
				opened = true
			}
			if opened {
				end = j
				if depth <= 0 {
					break
				}
			}
		}

		if !opened {
			// a one-line arrow with no body braces spans its declaration only
			spans = append(spans, fnSpan{name: name, start: i + 1, end: i + 1})
			i++
			continue
		}

		spans = append(spans, fnSpan{name: name, start: i + 1, end: end + 1})
		i = end + 1
	}

	return spans
}

func matchFunctionDecl(line string) (string, bool) {
	if m := fnDeclRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := fnArrowRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}

// complexity counts decision points inside the span, starting from a base of
// one. Branch keywords and ternaries each add one.
func (s fnSpan) complexity(lines []string) int {
	complexity := 1
	for n := s.start; n <= s.end && n <= len(lines); n++ {
		line := lines[n-1]
		complexity += len(branchKeywordRe.FindAllString(line, -1))
		complexity += len(ternaryRe.FindAllString(line, -1))
	}
	return complexity
}
