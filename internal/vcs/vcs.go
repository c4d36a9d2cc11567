package vcs

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/prgate/prgate/pkg/shared/config"
)

// Change is one file touched by a reviewed change, as reported by the host.
type Change struct {
	Path    string
	Status  string // added, modified, deleted, renamed
	Patch   string // unified diff hunks; empty for binary files
	Deleted bool
}

// PullRequest is the subset of host pull-request metadata the commands expose.
type PullRequest struct {
	Number int
	Title  string
	State  string
	URL    string
	Branch string
}

// Host is the source-control-host collaborator boundary. The engine only
// consumes Changes and FileContent; Comment and PushFix carry its verdict and
// rewrites back, and the remaining methods serve the pr command group.
type Host interface {
	Changes(ctx context.Context, ref Ref) ([]Change, error)
	FileContent(ctx context.Context, ref Ref, path string) ([]byte, error)
	Comment(ctx context.Context, ref Ref, body string) error
	PushFix(ctx context.Context, ref Ref, path string, content []byte, message string) error
	CreateBranch(ctx context.Context, ref Ref, name, base string) error
	CreatePullRequest(ctx context.Context, ref Ref, title, body, branch, base string) (*PullRequest, error)
	ListPullRequests(ctx context.Context, ref Ref, state string) ([]PullRequest, error)
}

// New selects the host implementation for a parsed change reference.
func New(ref Ref, cfg *config.Config, logger hclog.Logger) (Host, error) {
	switch ref.Kind {
	case KindGitHub:
		return NewGitHub(cfg, logger)
	case KindGitLab:
		return NewGitLab(cfg, logger)
	default:
		return nil, fmt.Errorf("no host client for %q", ref.Host)
	}
}
