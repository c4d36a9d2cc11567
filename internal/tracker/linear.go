package tracker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

const defaultEndpoint = "https://api.linear.app/graphql"

// Issue is the subset of tracker issue fields the commands expose. The review
// engine has no dependency on this package; only the tracker commands do.
type Issue struct {
	ID          string   `json:"id"`
	Identifier  string   `json:"identifier"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	State       string   `json:"state"`
	Labels      []string `json:"labels"`
	URL         string   `json:"url,omitempty"`
}

// Client talks to the Linear GraphQL API.
type Client struct {
	http     *resty.Client
	endpoint string
	apiKey   string
	teamID   string
	logger   hclog.Logger
}

// New creates a tracker client on top of a configured resty client.
func New(http *resty.Client, endpoint, apiKey, teamID string, logger hclog.Logger) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{http: http, endpoint: endpoint, apiKey: apiKey, teamID: teamID, logger: logger}
}

// graphQLRequest is the request body shape the API expects.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// do executes one GraphQL request and decodes the data object into out.
func (c *Client) do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		SetResult(&envelope).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("tracker request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("tracker request failed with status %s", resp.Status())
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("tracker query error: %s", envelope.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding tracker response: %w", err)
		}
	}
	return nil
}

const listIssuesQuery = `
query($teamId: ID!, $state: String!, $first: Int!) {
    issues(
        filter: {
            team: { id: { eq: $teamId } }
            state: { name: { eq: $state } }
        }
        first: $first
    ) {
        nodes {
            id
            identifier
            title
            description
            state { name }
            labels { nodes { name } }
        }
    }
}`

const listAllIssuesQuery = `
query($teamId: ID!, $first: Int!) {
    issues(
        filter: { team: { id: { eq: $teamId } } }
        first: $first
    ) {
        nodes {
            id
            identifier
            title
            description
            state { name }
            labels { nodes { name } }
        }
    }
}`

// ListIssues returns up to limit issues, optionally filtered by workflow
// state name.
func (c *Client) ListIssues(ctx context.Context, state string, limit int) ([]Issue, error) {
	if limit <= 0 {
		limit = 50
	}
	query := listAllIssuesQuery
	variables := map[string]interface{}{
		"teamId": c.teamID,
		"first":  limit,
	}
	if state != "" {
		query = listIssuesQuery
		variables["state"] = state
	}

	var data struct {
		Issues struct {
			Nodes []issueNode `json:"nodes"`
		} `json:"issues"`
	}
	err := c.do(ctx, query, variables, &data)
	if err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(data.Issues.Nodes))
	for _, node := range data.Issues.Nodes {
		issues = append(issues, node.toIssue())
	}
	return issues, nil
}

const createIssueMutation = `
mutation($teamId: String!, $title: String!, $description: String!, $stateId: String!, $labelIds: [String!]) {
    issueCreate(
        input: {
            teamId: $teamId
            title: $title
            description: $description
            stateId: $stateId
            labelIds: $labelIds
        }
    ) {
        success
        issue {
            id
            identifier
            title
            url
        }
    }
}`

const createIssueDefaultStateMutation = `
mutation($teamId: String!, $title: String!, $description: String!, $labelIds: [String!]) {
    issueCreate(
        input: {
            teamId: $teamId
            title: $title
            description: $description
            labelIds: $labelIds
        }
    ) {
        success
        issue {
            id
            identifier
            title
            url
        }
    }
}`

// CreateIssue creates an issue with optional labels. An empty state leaves
// the issue in the team's default state.
func (c *Client) CreateIssue(ctx context.Context, title, description, state string, labels []string) (*Issue, error) {
	mutation := createIssueDefaultStateMutation
	variables := map[string]interface{}{
		"teamId":      c.teamID,
		"title":       title,
		"description": description,
	}

	if state != "" {
		stateID, err := c.stateID(ctx, state)
		if err != nil {
			return nil, err
		}
		mutation = createIssueMutation
		variables["stateId"] = stateID
	}

	labelIDs, err := c.labelIDs(ctx, labels)
	if err != nil {
		return nil, err
	}
	variables["labelIds"] = labelIDs

	var data struct {
		IssueCreate struct {
			Success bool `json:"success"`
			Issue   struct {
				ID         string `json:"id"`
				Identifier string `json:"identifier"`
				Title      string `json:"title"`
				URL        string `json:"url"`
			} `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.do(ctx, mutation, variables, &data); err != nil {
		return nil, err
	}
	if !data.IssueCreate.Success {
		return nil, fmt.Errorf("tracker refused to create issue %q", title)
	}

	c.logger.Info("created tracker issue", "identifier", data.IssueCreate.Issue.Identifier)
	return &Issue{
		ID:         data.IssueCreate.Issue.ID,
		Identifier: data.IssueCreate.Issue.Identifier,
		Title:      data.IssueCreate.Issue.Title,
		State:      state,
		Labels:     labels,
		URL:        data.IssueCreate.Issue.URL,
	}, nil
}

const updateIssueMutation = `
mutation($issueId: String!, $stateId: String!) {
    issueUpdate(
        id: $issueId
        input: { stateId: $stateId }
    ) {
        success
    }
}`

// UpdateIssueState transitions an issue to the named workflow state.
func (c *Client) UpdateIssueState(ctx context.Context, issueID, state string) error {
	stateID, err := c.stateID(ctx, state)
	if err != nil {
		return err
	}

	var data struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	err = c.do(ctx, updateIssueMutation, map[string]interface{}{
		"issueId": issueID,
		"stateId": stateID,
	}, &data)
	if err != nil {
		return err
	}
	if !data.IssueUpdate.Success {
		return fmt.Errorf("tracker refused to update issue %q", issueID)
	}
	return nil
}

const createCommentMutation = `
mutation($issueId: String!, $body: String!) {
    commentCreate(
        input: { issueId: $issueId, body: $body }
    ) {
        success
    }
}`

// AddComment attaches a comment to an issue. Callers may embed a report's
// summary fields here; the engine itself never does.
func (c *Client) AddComment(ctx context.Context, issueID, body string) error {
	var data struct {
		CommentCreate struct {
			Success bool `json:"success"`
		} `json:"commentCreate"`
	}
	err := c.do(ctx, createCommentMutation, map[string]interface{}{
		"issueId": issueID,
		"body":    body,
	}, &data)
	if err != nil {
		return err
	}
	if !data.CommentCreate.Success {
		return fmt.Errorf("tracker refused to comment on issue %q", issueID)
	}
	return nil
}

const workflowStatesQuery = `
query($teamId: ID!) {
    workflowStates(
        filter: { team: { id: { eq: $teamId } } }
    ) {
        nodes {
            id
            name
        }
    }
}`

func (c *Client) stateID(ctx context.Context, name string) (string, error) {
	var data struct {
		WorkflowStates struct {
			Nodes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"workflowStates"`
	}
	if err := c.do(ctx, workflowStatesQuery, map[string]interface{}{"teamId": c.teamID}, &data); err != nil {
		return "", err
	}
	for _, node := range data.WorkflowStates.Nodes {
		if node.Name == name {
			return node.ID, nil
		}
	}
	return "", fmt.Errorf("unknown workflow state %q", name)
}

const issueLabelsQuery = `
query($teamId: ID!) {
    issueLabels(
        filter: { team: { id: { eq: $teamId } } }
    ) {
        nodes {
            id
            name
        }
    }
}`

func (c *Client) labelIDs(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var data struct {
		IssueLabels struct {
			Nodes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"issueLabels"`
	}
	if err := c.do(ctx, issueLabelsQuery, map[string]interface{}{"teamId": c.teamID}, &data); err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(data.IssueLabels.Nodes))
	for _, node := range data.IssueLabels.Nodes {
		byName[node.Name] = node.ID
	}

	var ids []string
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown label %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type issueNode struct {
	ID          string `json:"id"`
	Identifier  string `json:"identifier"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       struct {
		Name string `json:"name"`
	} `json:"state"`
	Labels struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
}

func (n issueNode) toIssue() Issue {
	labels := make([]string, 0, len(n.Labels.Nodes))
	for _, l := range n.Labels.Nodes {
		labels = append(labels, l.Name)
	}
	return Issue{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Title:       n.Title,
		Description: n.Description,
		State:       n.State.Name,
		Labels:      labels,
	}
}
