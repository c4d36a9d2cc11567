package vcs

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/xanzy/go-gitlab"

	"github.com/prgate/prgate/pkg/shared/config"
)

// GitLab implements Host against the GitLab API. Pull requests map onto merge
// requests; Ref.Number carries the merge request IID.
type GitLab struct {
	client *gitlab.Client
	logger hclog.Logger
}

// NewGitLab builds a GitLab host client from GITLAB_TOKEN or the config file.
func NewGitLab(cfg *config.Config, logger hclog.Logger) (*GitLab, error) {
	token := os.Getenv("GITLAB_TOKEN")
	if token == "" {
		token = cfg.GitLab.Token
	}

	var opts []gitlab.ClientOptionFunc
	if cfg.GitLab.BaseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(cfg.GitLab.BaseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &GitLab{client: client, logger: logger}, nil
}

func (g *GitLab) mergeRequest(ctx context.Context, ref Ref) (*gitlab.MergeRequest, error) {
	mr, _, err := g.client.MergeRequests.GetMergeRequestChanges(ref.Project(), ref.Number,
		&gitlab.GetMergeRequestChangesOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching merge request %s: %w", ref, err)
	}
	return mr, nil
}

func (g *GitLab) Changes(ctx context.Context, ref Ref) ([]Change, error) {
	mr, err := g.mergeRequest(ctx, ref)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0, len(mr.Changes))
	for _, c := range mr.Changes {
		status := "modified"
		switch {
		case c.NewFile:
			status = "added"
		case c.DeletedFile:
			status = "removed"
		case c.RenamedFile:
			status = "renamed"
		}
		changes = append(changes, Change{
			Path:    c.NewPath,
			Status:  status,
			Patch:   c.Diff,
			Deleted: c.DeletedFile,
		})
	}
	g.logger.Debug("listed merge request changes", "ref", ref.String(), "files", len(changes))
	return changes, nil
}

func (g *GitLab) FileContent(ctx context.Context, ref Ref, path string) ([]byte, error) {
	mr, err := g.mergeRequest(ctx, ref)
	if err != nil {
		return nil, err
	}
	content, _, err := g.client.RepositoryFiles.GetRawFile(ref.Project(), path,
		&gitlab.GetRawFileOptions{Ref: gitlab.String(mr.SHA)}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching content of %s at %s: %w", path, mr.SHA, err)
	}
	return content, nil
}

func (g *GitLab) Comment(ctx context.Context, ref Ref, body string) error {
	_, _, err := g.client.Notes.CreateMergeRequestNote(ref.Project(), ref.Number,
		&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.String(body)}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("posting note on %s: %w", ref, err)
	}
	return nil
}

func (g *GitLab) PushFix(ctx context.Context, ref Ref, path string, content []byte, message string) error {
	mr, err := g.mergeRequest(ctx, ref)
	if err != nil {
		return err
	}
	_, _, err = g.client.RepositoryFiles.UpdateFile(ref.Project(), path, &gitlab.UpdateFileOptions{
		Branch:        gitlab.String(mr.SourceBranch),
		Content:       gitlab.String(string(content)),
		CommitMessage: gitlab.String(message),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("pushing fix for %s: %w", path, err)
	}
	g.logger.Info("pushed fix commit", "ref", ref.String(), "path", path)
	return nil
}

func (g *GitLab) CreateBranch(ctx context.Context, ref Ref, name, base string) error {
	_, _, err := g.client.Branches.CreateBranch(ref.Project(), &gitlab.CreateBranchOptions{
		Branch: gitlab.String(name),
		Ref:    gitlab.String(base),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("creating branch %q: %w", name, err)
	}
	return nil
}

func (g *GitLab) CreatePullRequest(ctx context.Context, ref Ref, title, body, branch, base string) (*PullRequest, error) {
	mr, _, err := g.client.MergeRequests.CreateMergeRequest(ref.Project(), &gitlab.CreateMergeRequestOptions{
		Title:        gitlab.String(title),
		Description:  gitlab.String(body),
		SourceBranch: gitlab.String(branch),
		TargetBranch: gitlab.String(base),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("creating merge request: %w", err)
	}
	return &PullRequest{
		Number: mr.IID,
		Title:  mr.Title,
		State:  mr.State,
		URL:    mr.WebURL,
		Branch: mr.SourceBranch,
	}, nil
}

func (g *GitLab) ListPullRequests(ctx context.Context, ref Ref, state string) ([]PullRequest, error) {
	opts := &gitlab.ListProjectMergeRequestsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 50},
	}
	if state != "" && state != "all" {
		if state == "open" {
			state = "opened"
		}
		opts.State = gitlab.String(state)
	}
	mrs, _, err := g.client.MergeRequests.ListProjectMergeRequests(ref.Project(), opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing merge requests: %w", err)
	}
	result := make([]PullRequest, 0, len(mrs))
	for _, mr := range mrs {
		result = append(result, PullRequest{
			Number: mr.IID,
			Title:  mr.Title,
			State:  mr.State,
			URL:    mr.WebURL,
			Branch: mr.SourceBranch,
		})
	}
	return result, nil
}
