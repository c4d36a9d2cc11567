package checks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/pkg/shared/config"
)

// toolLineRe extracts line addresses from formatter/type-checker output, which
// commonly reports either path:line:col or path(line,col).
var toolLineRe = regexp.MustCompile(`[:(](\d+)[,:)]`)

// externalChecks wraps the configured formatter, linter and type-checker
// processes as file-global detectors. An unconfigured tool yields no
// findings. A nonzero exit translates into findings; a timeout or a failure
// to start is a detector failure, reported but never blocking.
func externalChecks(engine config.Engine) []Check {
	formatting := Check{
		ID:       "formatting",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityWarning,
	}
	formatting.Match = runTool(&formatting, engine.FormatterCmd, engine, "unresolved formatting violations")

	lint := Check{
		ID:       "lint",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityBlocking,
	}
	lint.Match = runTool(&lint, engine.LinterCmd, engine, "unresolved lint violations")

	typeCheck := Check{
		ID:       "type-check",
		Category: finding.CategoryQuality,
		Severity: finding.SeverityBlocking,
	}
	typeCheck.Match = runTool(&typeCheck, engine.TypeCheckerCmd, engine, "unresolved type-checker violations")

	return []Check{formatting, lint, typeCheck}
}

// runTool materialises the file content into a scratch file, invokes the tool
// on it under the configured timeout and translates its verdict. The scratch
// file and the subprocess are released on every exit path.
func runTool(c *Check, cmdline []string, engine config.Engine, message string) MatchFunc {
	return func(ctx context.Context, f File) ([]finding.Finding, error) {
		if len(cmdline) == 0 {
			return nil, nil
		}

		scratch, err := writeScratchFile(f)
		if err != nil {
			return nil, fmt.Errorf("staging %s for %s: %w", f.Path, c.ID, err)
		}
		defer os.RemoveAll(filepath.Dir(scratch))

		toolCtx, cancel := context.WithTimeout(ctx, engine.ToolTimeout)
		defer cancel()

		args := append(append([]string(nil), cmdline[1:]...), scratch)
		cmd := exec.CommandContext(toolCtx, cmdline[0], args...)
		output, err := cmd.CombinedOutput()

		if toolCtx.Err() != nil {
			return nil, fmt.Errorf("%s timed out on %s: %w", c.ID, f.Path, toolCtx.Err())
		}
		if err == nil {
			return nil, nil
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s on %s: %w", c.ID, f.Path, err)
		}

		var found []finding.Finding
		for _, line := range parseToolLines(output, len(f.Lines)) {
			found = append(found, hit(*c, f, line, message))
		}
		return found, nil
	}
}

// writeScratchFile stages file content under a private temp directory, keeping
// the original extension so the tool applies the right dialect.
func writeScratchFile(f File) (string, error) {
	dir, err := os.MkdirTemp("", "prgate-tool-*")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "scratch"+filepath.Ext(f.Path))
	if err := os.WriteFile(path, []byte(f.Content()+"\n"), 0o600); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

// parseToolLines pulls the distinct line numbers out of the tool output,
// falling back to line 1 when the output carries no recognisable address.
func parseToolLines(output []byte, maxLine int) []int {
	seen := make(map[int]bool)
	for _, m := range toolLineRe.FindAllStringSubmatch(string(output), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > maxLine {
			continue
		}
		seen[n] = true
	}
	if len(seen) == 0 {
		return []int{1}
	}
	lines := make([]int, 0, len(seen))
	for n := range seen {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	return lines
}
