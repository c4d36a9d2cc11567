package checks

import (
	"context"
	"regexp"
	"strings"

	"github.com/prgate/prgate/internal/finding"
)

var (
	imgTagRe     = regexp.MustCompile(`<(img|Image)\b`)
	headingRe    = regexp.MustCompile(`<h([1-6])[\s>]`)
	iconChildRe  = regexp.MustCompile(`<\w*Icon\b|className=["'][^"']*\bicon\b`)
	ariaLabelRe  = regexp.MustCompile(`aria-label(ledby)?=`)
	inputTagRe   = regexp.MustCompile(`<input\b`)
	clickDivRe   = regexp.MustCompile(`<(div|span)\b[^>]*onClick`)
	outlineOffRe = regexp.MustCompile(`outline:\s*(none|0)|outline-none`)
	focusStyleRe = regexp.MustCompile(`focus-visible|focus:|:focus`)

	// colors unlikely to clear the contrast ratio against a common background
	lowContrastRes = []*regexp.Regexp{
		regexp.MustCompile(`color:\s*['"]?#[cdefCDEF][0-9a-fA-F]{5}`),
		regexp.MustCompile(`color:\s*['"]?#[0-3][0-9a-fA-F]{5}`),
		regexp.MustCompile(`text-(gray|grey)-(300|400)`),
		regexp.MustCompile(`opacity-[0-5]0\b`),
	}
	textElementRe = regexp.MustCompile(`<(p|span|div|h[1-6]|a)\b`)
)

func accessibilityChecks() []Check {
	imgAlt := Check{
		ID:       "img-alt",
		Category: finding.CategoryAccessibility,
		Severity: finding.SeverityWarning,
	}
	imgAlt.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if imgTagRe.MatchString(line) && !strings.Contains(line, "alt=") {
				// only complete tags; multi-line tags are out of this
				// heuristic's reach
				if strings.Contains(line, ">") {
					found = append(found, hit(imgAlt, f, n, "image element without alternative text"))
				}
			}
		}
		return found, nil
	}

	iconButtonLabel := Check{
		ID:       "icon-button-label",
		Category: finding.CategoryAccessibility,
		Severity: finding.SeverityWarning,
	}
	iconButtonLabel.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if strings.Contains(line, "<button") && iconChildRe.MatchString(line) && !ariaLabelRe.MatchString(line) {
				found = append(found, hit(iconButtonLabel, f, n, "icon-only interactive element without a label"))
			}
		}
		return found, nil
	}

	inputLabel := Check{
		ID:       "input-label",
		Category: finding.CategoryAccessibility,
		Severity: finding.SeverityWarning,
	}
	inputLabel.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if inputTagRe.MatchString(line) && !ariaLabelRe.MatchString(line) && !strings.Contains(line, "id=") {
				if !strings.Contains(line, `type="hidden"`) {
					found = append(found, hit(inputLabel, f, n, "form input without an associated label"))
				}
			}
		}
		return found, nil
	}

	// heading structure is a property of the whole file, so this rule ignores
	// the changed-line set
	headingOrder := Check{
		ID:       "heading-order",
		Category: finding.CategoryAccessibility,
		Severity: finding.SeverityWarning,
	}
	headingOrder.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		prev := 0
		for i, line := range f.Lines {
			m := headingRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			level := int(m[1][0] - '0')
			if prev != 0 && level > prev+1 {
				found = append(found, hit(headingOrder, f, i+1, "heading skips a hierarchy level"))
			}
			prev = level
		}
		return found, nil
	}

	clickHandlerRole := Check{
		ID:       "click-handler-role",
		Category: finding.CategoryAccessibility,
		Severity: finding.SeverityWarning,
	}
	clickHandlerRole.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if clickDivRe.MatchString(line) && !strings.Contains(line, "role=") {
				found = append(found, hit(clickHandlerRole, f, n, "click handler on a non-semantic element"))
			}
		}
		return found, nil
	}

	focusOutline := Check{
		ID:       "focus-outline",
		Category: finding.CategoryAccessibility,
		Severity: finding.SeverityWarning,
	}
	focusOutline.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) {
				continue
			}
			if outlineOffRe.MatchString(line) && !focusStyleRe.MatchString(line) {
				found = append(found, hit(focusOutline, f, n, "focus indication removed without a replacement"))
			}
		}
		return found, nil
	}

	colorContrast := Check{
		ID:       "color-contrast",
		Category: finding.CategoryAccessibility,
		Severity: finding.SeverityWarning,
	}
	colorContrast.Match = func(_ context.Context, f File) ([]finding.Finding, error) {
		var found []finding.Finding
		for i, line := range f.Lines {
			n := i + 1
			if !f.NearChanged(n) || !textElementRe.MatchString(line) {
				continue
			}
			for _, re := range lowContrastRes {
				if re.MatchString(line) {
					found = append(found, hit(colorContrast, f, n, "text styled with a likely low-contrast color"))
					break
				}
			}
		}
		return found, nil
	}

	return []Check{imgAlt, iconButtonLabel, inputLabel, headingOrder, clickHandlerRole, focusOutline, colorContrast}
}
