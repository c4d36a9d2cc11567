package collect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/prgate/prgate/internal/checks"
	"github.com/prgate/prgate/internal/git"
	"github.com/prgate/prgate/internal/vcs"
	"github.com/prgate/prgate/pkg/shared/files"
)

// Skip reasons reported for files excluded from analysis. Callers must be
// able to tell "no issues found" apart from "not analyzed".
const (
	ReasonBinary   = "binary"
	ReasonDeleted  = "deleted"
	ReasonOversize = "oversize"
	ReasonRenamed  = "renamed"
)

// Skipped records one excluded file.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the collector output: the files to analyze, ordered by path, and
// the files excluded from analysis.
type Result struct {
	Files   []checks.File
	Skipped []Skipped
}

// Collector resolves the files and changed-line sets of a proposed change
// through a source-control host.
type Collector struct {
	host    vcs.Host
	maxSize int64
	logger  hclog.Logger
}

// New creates a collector on top of the given host. maxSize is the content
// size ceiling in bytes.
func New(host vcs.Host, maxSize int64, logger hclog.Logger) *Collector {
	return &Collector{host: host, maxSize: maxSize, logger: logger}
}

// Collect fetches the change set for ref. Host reachability problems are
// fatal for the whole run; excluded files are reported, not dropped.
func (c *Collector) Collect(ctx context.Context, ref vcs.Ref) (*Result, error) {
	changes, err := c.host.Changes(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("collecting changes for %s: %w", ref, err)
	}

	result := &Result{}
	for _, change := range changes {
		if change.Deleted {
			result.Skipped = append(result.Skipped, Skipped{Path: change.Path, Reason: ReasonDeleted})
			continue
		}
		if change.Patch == "" {
			// hosts omit the patch for binary content and for pure renames
			reason := ReasonBinary
			if change.Status == "renamed" {
				reason = ReasonRenamed
			}
			result.Skipped = append(result.Skipped, Skipped{Path: change.Path, Reason: reason})
			continue
		}

		changed, err := git.ChangedLinesFromPatch(change.Patch)
		if err != nil {
			return nil, fmt.Errorf("parsing patch of %s: %w", change.Path, err)
		}

		content, err := c.host.FileContent(ctx, ref, change.Path)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", change.Path, err)
		}

		if skipped, ok := classify(change.Path, content, c.maxSize); ok {
			result.Skipped = append(result.Skipped, skipped)
			continue
		}

		lines, terminated := splitLines(content)
		result.Files = append(result.Files, checks.File{
			Path:           change.Path,
			Lines:          lines,
			Changed:        changed,
			NoFinalNewline: !terminated,
		})
	}

	sortResult(result)
	c.logger.Debug("collected change set", "ref", ref.String(),
		"files", len(result.Files), "skipped", len(result.Skipped))
	return result, nil
}

// CollectLocal resolves the change set from a local repository range instead
// of a host. Used for reviewing work that has not been pushed yet.
func CollectLocal(repoPath, base, head string, maxSize int64, logger hclog.Logger) (*Result, error) {
	changedFiles, err := git.Range(repoPath, base, head)
	if err != nil {
		return nil, fmt.Errorf("collecting local changes: %w", err)
	}

	result := &Result{}
	for _, cf := range changedFiles {
		if cf.Deleted {
			result.Skipped = append(result.Skipped, Skipped{Path: cf.Path, Reason: ReasonDeleted})
			continue
		}
		if skipped, ok := classify(cf.Path, cf.Content, maxSize); ok {
			result.Skipped = append(result.Skipped, skipped)
			continue
		}
		lines, terminated := splitLines(cf.Content)
		result.Files = append(result.Files, checks.File{
			Path:           cf.Path,
			Lines:          lines,
			Changed:        cf.Changed,
			NoFinalNewline: !terminated,
		})
	}

	sortResult(result)
	logger.Debug("collected local change set", "base", base, "head", head,
		"files", len(result.Files), "skipped", len(result.Skipped))
	return result, nil
}

func classify(path string, content []byte, maxSize int64) (Skipped, bool) {
	if maxSize > 0 && int64(len(content)) > maxSize {
		return Skipped{Path: path, Reason: ReasonOversize}, true
	}
	if files.IsBinaryContent(content) {
		return Skipped{Path: path, Reason: ReasonBinary}, true
	}
	return Skipped{}, false
}

// splitLines breaks content into lines and reports whether the content ended
// with a newline, which the fixer needs to serialise the file back exactly.
func splitLines(content []byte) ([]string, bool) {
	text := string(content)
	trimmed := strings.TrimSuffix(text, "\n")
	return strings.Split(trimmed, "\n"), strings.HasSuffix(text, "\n")
}

func sortResult(result *Result) {
	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].Path < result.Skipped[j].Path })
}
