package vcs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gitsight/go-vcsurl"
)

// Kind identifies the host implementation behind a reference.
type Kind string

const (
	KindGitHub Kind = "github"
	KindGitLab Kind = "gitlab"
)

// Ref identifies one proposed change on a source-control host.
type Ref struct {
	Kind       Kind
	Host       string
	Namespace  string
	Repository string
	Number     int
}

// Project returns the host-side project identifier (namespace/repository).
func (r Ref) Project() string {
	return r.Namespace + "/" + r.Repository
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Namespace, r.Repository, r.Number)
}

var (
	githubPRRe      = regexp.MustCompile(`^(https?://[^/]+/.+?)/pull/(\d+)/?$`)
	gitlabMRRe      = regexp.MustCompile(`^(https?://[^/]+/.+?)/-/merge_requests/(\d+)/?$`)
	shorthandRe     = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
	repoShorthandRe = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)$`)
)

// ParseRef understands full pull-request / merge-request URLs and the
// owner/repo#N shorthand (which defaults to GitHub).
func ParseRef(raw string) (Ref, error) {
	if m := shorthandRe.FindStringSubmatch(raw); m != nil {
		number, _ := strconv.Atoi(m[3])
		return Ref{
			Kind:       KindGitHub,
			Host:       "github.com",
			Namespace:  m[1],
			Repository: m[2],
			Number:     number,
		}, nil
	}

	var repoURL string
	var number int
	var kind Kind
	if m := githubPRRe.FindStringSubmatch(raw); m != nil {
		repoURL = m[1]
		number, _ = strconv.Atoi(m[2])
		kind = KindGitHub
	} else if m := gitlabMRRe.FindStringSubmatch(raw); m != nil {
		repoURL = m[1]
		number, _ = strconv.Atoi(m[2])
		kind = KindGitLab
	} else {
		return Ref{}, fmt.Errorf("unrecognised change reference %q", raw)
	}

	info, err := vcsurl.Parse(repoURL)
	if err != nil {
		return Ref{}, fmt.Errorf("parsing repository url %q: %w", repoURL, err)
	}

	namespace := info.Username
	repository := info.Name
	if namespace == "" {
		// nested gitlab groups come back joined in the ID
		if idx := strings.LastIndex(info.ID, "/"); idx > 0 {
			namespace = info.ID[:idx]
			repository = info.ID[idx+1:]
		}
	}
	if namespace == "" || repository == "" {
		return Ref{}, fmt.Errorf("could not resolve namespace and repository from %q", raw)
	}

	return Ref{
		Kind:       kind,
		Host:       string(info.Host),
		Namespace:  namespace,
		Repository: repository,
		Number:     number,
	}, nil
}

// ParseRepo resolves a repository reference without a change number, for
// commands that address the repository itself. Accepts the owner/repo
// shorthand (GitHub) and full repository URLs.
func ParseRepo(raw string) (Ref, error) {
	if m := repoShorthandRe.FindStringSubmatch(raw); m != nil {
		return Ref{
			Kind:       KindGitHub,
			Host:       "github.com",
			Namespace:  m[1],
			Repository: m[2],
		}, nil
	}

	info, err := vcsurl.Parse(raw)
	if err != nil {
		return Ref{}, fmt.Errorf("parsing repository url %q: %w", raw, err)
	}

	kind := KindGitHub
	if strings.Contains(string(info.Host), "gitlab") {
		kind = KindGitLab
	}

	namespace := info.Username
	repository := info.Name
	if namespace == "" {
		if idx := strings.LastIndex(info.ID, "/"); idx > 0 {
			namespace = info.ID[:idx]
			repository = info.ID[idx+1:]
		}
	}
	if namespace == "" || repository == "" {
		return Ref{}, fmt.Errorf("could not resolve namespace and repository from %q", raw)
	}

	return Ref{Kind: kind, Host: string(info.Host), Namespace: namespace, Repository: repository}, nil
}
