package vcs

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/prgate/prgate/pkg/shared/config"
)

// GitHub implements Host against the GitHub REST API.
type GitHub struct {
	client *github.Client
	logger hclog.Logger
}

// NewGitHub builds a GitHub host client. The token comes from GITHUB_TOKEN or
// the config file; without one the client stays anonymous, which is enough for
// public repositories.
func NewGitHub(cfg *config.Config, logger hclog.Logger) (*GitHub, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = cfg.GitHub.Token
	}

	httpClient := oauth2.NewClient(context.Background(), nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if cfg.GitHub.BaseURL != "" {
		base, err := url.Parse(cfg.GitHub.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		client.BaseURL = base
	}

	return &GitHub{client: client, logger: logger}, nil
}

// headBranch resolves the source branch and head commit of the pull request.
func (g *GitHub) headBranch(ctx context.Context, ref Ref) (branch, sha string, err error) {
	pr, _, err := g.client.PullRequests.Get(ctx, ref.Namespace, ref.Repository, ref.Number)
	if err != nil {
		return "", "", fmt.Errorf("fetching pull request %s: %w", ref, err)
	}
	return pr.GetHead().GetRef(), pr.GetHead().GetSHA(), nil
}

func (g *GitHub) Changes(ctx context.Context, ref Ref) ([]Change, error) {
	var changes []Change
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, ref.Namespace, ref.Repository, ref.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files of %s: %w", ref, err)
		}
		for _, f := range files {
			changes = append(changes, Change{
				Path:    f.GetFilename(),
				Status:  f.GetStatus(),
				Patch:   f.GetPatch(),
				Deleted: f.GetStatus() == "removed",
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	g.logger.Debug("listed pull request files", "ref", ref.String(), "files", len(changes))
	return changes, nil
}

func (g *GitHub) FileContent(ctx context.Context, ref Ref, path string) ([]byte, error) {
	_, sha, err := g.headBranch(ctx, ref)
	if err != nil {
		return nil, err
	}
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, ref.Namespace, ref.Repository, path,
		&github.RepositoryContentGetOptions{Ref: sha})
	if err != nil {
		return nil, fmt.Errorf("fetching content of %s at %s: %w", path, sha, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("%s is not a file", path)
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding content of %s: %w", path, err)
	}
	return []byte(content), nil
}

func (g *GitHub) Comment(ctx context.Context, ref Ref, body string) error {
	_, _, err := g.client.Issues.CreateComment(ctx, ref.Namespace, ref.Repository, ref.Number,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("posting comment on %s: %w", ref, err)
	}
	return nil
}

func (g *GitHub) PushFix(ctx context.Context, ref Ref, path string, content []byte, message string) error {
	branch, sha, err := g.headBranch(ctx, ref)
	if err != nil {
		return err
	}
	current, _, _, err := g.client.Repositories.GetContents(ctx, ref.Namespace, ref.Repository, path,
		&github.RepositoryContentGetOptions{Ref: sha})
	if err != nil {
		return fmt.Errorf("resolving blob of %s: %w", path, err)
	}
	_, _, err = g.client.Repositories.UpdateFile(ctx, ref.Namespace, ref.Repository, path,
		&github.RepositoryContentFileOptions{
			Message: github.String(message),
			Content: content,
			SHA:     current.SHA,
			Branch:  github.String(branch),
		})
	if err != nil {
		return fmt.Errorf("pushing fix for %s: %w", path, err)
	}
	g.logger.Info("pushed fix commit", "ref", ref.String(), "path", path)
	return nil
}

func (g *GitHub) CreateBranch(ctx context.Context, ref Ref, name, base string) error {
	baseRef, _, err := g.client.Git.GetRef(ctx, ref.Namespace, ref.Repository, "refs/heads/"+base)
	if err != nil {
		return fmt.Errorf("resolving base branch %q: %w", base, err)
	}
	_, _, err = g.client.Git.CreateRef(ctx, ref.Namespace, ref.Repository, &github.Reference{
		Ref:    github.String("refs/heads/" + name),
		Object: &github.GitObject{SHA: baseRef.Object.SHA},
	})
	if err != nil {
		return fmt.Errorf("creating branch %q: %w", name, err)
	}
	return nil
}

func (g *GitHub) CreatePullRequest(ctx context.Context, ref Ref, title, body, branch, base string) (*PullRequest, error) {
	pr, _, err := g.client.PullRequests.Create(ctx, ref.Namespace, ref.Repository, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(branch),
		Base:  github.String(base),
	})
	if err != nil {
		return nil, fmt.Errorf("creating pull request: %w", err)
	}
	return &PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		State:  pr.GetState(),
		URL:    pr.GetHTMLURL(),
		Branch: pr.GetHead().GetRef(),
	}, nil
}

func (g *GitHub) ListPullRequests(ctx context.Context, ref Ref, state string) ([]PullRequest, error) {
	prs, _, err := g.client.PullRequests.List(ctx, ref.Namespace, ref.Repository, &github.PullRequestListOptions{
		State:       state,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 50},
	})
	if err != nil {
		return nil, fmt.Errorf("listing pull requests: %w", err)
	}
	result := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, PullRequest{
			Number: pr.GetNumber(),
			Title:  pr.GetTitle(),
			State:  pr.GetState(),
			URL:    pr.GetHTMLURL(),
			Branch: pr.GetHead().GetRef(),
		})
	}
	return result, nil
}
