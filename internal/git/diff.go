package git

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sourcegraph/go-diff/diff"
)

// ChangedFile is one file touched between two revisions of a local repository.
type ChangedFile struct {
	Path    string
	Content []byte       // content at head
	Changed map[int]bool // 1-based new-file line numbers added or modified
	Deleted bool
}

// Range computes the files changed between base and head in the repository at
// repoPath. Revisions accept anything go-git can resolve (branch names, HEAD,
// abbreviated hashes). Returned files are ordered by path; deleted paths are
// included with Deleted set and no content.
func Range(repoPath, base, head string) ([]ChangedFile, error) {
	if base == "" {
		return nil, fmt.Errorf("base revision is required to compute diff")
	}
	if head == "" {
		head = "HEAD"
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", repoPath, err)
	}

	baseCommit, err := resolveCommit(repo, base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base revision %q: %w", base, err)
	}
	headCommit, err := resolveCommit(repo, head)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head revision %q: %w", head, err)
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load base tree: %w", err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load head tree: %w", err)
	}

	patch, err := baseTree.Patch(headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	parsed, err := diff.ParseMultiFileDiff([]byte(patch.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	var result []ChangedFile
	for _, fd := range parsed {
		if fd == nil {
			continue
		}

		if fd.NewName == "/dev/null" {
			result = append(result, ChangedFile{
				Path:    strings.TrimPrefix(fd.OrigName, "a/"),
				Deleted: true,
			})
			continue
		}

		path := strings.TrimPrefix(fd.NewName, "b/")
		changed := ChangedLinesFromHunks(fd.Hunks)
		if len(changed) == 0 {
			continue
		}

		content, err := fileAtCommit(headTree, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q at head: %w", path, err)
		}

		result = append(result, ChangedFile{
			Path:    path,
			Content: content,
			Changed: changed,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// ChangedLinesFromHunks collects the 1-based new-file line numbers added by
// the given hunks. Deletions and context lines do not contribute.
func ChangedLinesFromHunks(hunks []*diff.Hunk) map[int]bool {
	changed := make(map[int]bool)
	for _, h := range hunks {
		if h == nil {
			continue
		}
		lineNo := int(h.NewStartLine)
		if lineNo <= 0 {
			lineNo = 1
		}
		for _, bodyLine := range bytes.Split(h.Body, []byte("\n")) {
			if len(bodyLine) == 0 {
				continue
			}
			switch bodyLine[0] {
			case '+':
				changed[lineNo] = true
				lineNo++
			case '-':
				// deletion; do not advance the new-file line counter
			default:
				lineNo++
			}
		}
	}
	return changed
}

// ChangedLinesFromPatch parses a single-file unified diff (as returned by the
// host APIs) into a changed-line set.
func ChangedLinesFromPatch(patch string) (map[int]bool, error) {
	if strings.TrimSpace(patch) == "" {
		return map[int]bool{}, nil
	}
	// host patches omit the file header, which the parser requires
	if !strings.HasPrefix(patch, "---") {
		patch = "--- a/file\n+++ b/file\n" + patch
	}
	fd, err := diff.ParseFileDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}
	return ChangedLinesFromHunks(fd.Hunks), nil
}

func resolveCommit(repo *git.Repository, revision string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, err
	}
	return repo.CommitObject(*hash)
}

func fileAtCommit(tree *object.Tree, path string) ([]byte, error) {
	entry, err := tree.File(path)
	if err != nil {
		return nil, err
	}
	reader, err := entry.Blob.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
