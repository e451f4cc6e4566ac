package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// cloudAPI implements Operations against the Bitbucket Cloud v2 REST API.
type cloudAPI struct {
	rest *rest
}

func (c *cloudAPI) repoPath(workspace, repoSlug string, rest ...string) string {
	return apiPath(append([]string{"repositories", workspace, repoSlug}, rest...)...)
}

func (c *cloudAPI) prPath(workspace, repoSlug string, id int, rest ...string) string {
	return c.repoPath(workspace, repoSlug, append([]string{"pullrequests", strconv.Itoa(id)}, rest...)...)
}

func (c *cloudAPI) GetRepository(ctx context.Context, workspace, repoSlug string) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", c.repoPath(workspace, repoSlug), nil, nil)
}

func (c *cloudAPI) ListPullRequests(ctx context.Context, workspace, repoSlug, state string) (json.RawMessage, error) {
	q := url.Values{}
	if state != "" {
		q.Set("state", state)
	}
	return c.rest.doJSON(ctx, "GET", c.repoPath(workspace, repoSlug, "pullrequests"), q, nil)
}

func (c *cloudAPI) CreatePullRequest(ctx context.Context, workspace, repoSlug string, in CreatePullRequestInput) (json.RawMessage, error) {
	body := map[string]interface{}{
		"title":       in.Title,
		"source":      map[string]interface{}{"branch": map[string]string{"name": in.SourceBranch}},
		"destination": map[string]interface{}{"branch": map[string]string{"name": in.DestBranch}},
	}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if len(in.Reviewers) > 0 {
		body["reviewers"] = cloudReviewerList(in.Reviewers)
	}
	return c.rest.doJSON(ctx, "POST", c.repoPath(workspace, repoSlug, "pullrequests"), nil, body)
}

func (c *cloudAPI) GetPullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", c.prPath(workspace, repoSlug, id), nil, nil)
}

func (c *cloudAPI) GetPullRequestDiff(ctx context.Context, workspace, repoSlug string, id int) (string, error) {
	return c.rest.doText(ctx, "GET", c.prPath(workspace, repoSlug, id, "diff"), nil)
}

func (c *cloudAPI) GetPullRequestChanges(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", c.prPath(workspace, repoSlug, id, "diffstat"), nil, nil)
}

func (c *cloudAPI) ListPullRequestComments(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", c.prPath(workspace, repoSlug, id, "comments"), nil, nil)
}

func (c *cloudAPI) AddComment(ctx context.Context, workspace, repoSlug string, id int, text string) (json.RawMessage, error) {
	body := map[string]interface{}{
		"content": map[string]string{"raw": text},
	}
	return c.rest.doJSON(ctx, "POST", c.prPath(workspace, repoSlug, id, "comments"), nil, body)
}

func (c *cloudAPI) AddInlineComment(ctx context.Context, workspace, repoSlug string, id int, in InlineCommentInput) (json.RawMessage, error) {
	body := map[string]interface{}{
		"content": map[string]string{"raw": in.Text},
		"inline": map[string]interface{}{
			"path": in.Path,
			"to":   in.Line,
		},
	}
	return c.rest.doJSON(ctx, "POST", c.prPath(workspace, repoSlug, id, "comments"), nil, body)
}

func (c *cloudAPI) ApprovePullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "POST", c.prPath(workspace, repoSlug, id, "approve"), nil, nil)
}

func (c *cloudAPI) DeclinePullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "POST", c.prPath(workspace, repoSlug, id, "decline"), nil, nil)
}

func (c *cloudAPI) MergePullRequest(ctx context.Context, workspace, repoSlug string, id int, in MergeInput) (json.RawMessage, error) {
	body := map[string]interface{}{}
	if in.CloseSourceBranch {
		body["close_source_branch"] = true
	}
	if in.Strategy != "" {
		body["merge_strategy"] = in.Strategy
	}
	if in.Message != "" {
		body["message"] = in.Message
	}
	return c.rest.doJSON(ctx, "POST", c.prPath(workspace, repoSlug, id, "merge"), nil, body)
}

func (c *cloudAPI) UpdatePullRequest(ctx context.Context, workspace, repoSlug string, id int, in UpdateInput) (json.RawMessage, error) {
	body := map[string]interface{}{}
	if in.Title != "" {
		body["title"] = in.Title
	}
	if in.Description != "" {
		body["description"] = in.Description
	}
	return c.rest.doJSON(ctx, "PUT", c.prPath(workspace, repoSlug, id), nil, body)
}

// AddReviewers on Cloud is a single PUT carrying the reviewer list.
func (c *cloudAPI) AddReviewers(ctx context.Context, workspace, repoSlug string, id int, reviewers []string) (json.RawMessage, error) {
	body := map[string]interface{}{
		"reviewers": cloudReviewerList(reviewers),
	}
	return c.rest.doJSON(ctx, "PUT", c.prPath(workspace, repoSlug, id), nil, body)
}

// cloudReviewerList maps reviewer identifiers to the Cloud user shape: a
// braced value is a user UUID, anything else an account id.
func cloudReviewerList(reviewers []string) []map[string]string {
	out := make([]map[string]string, len(reviewers))
	for i, r := range reviewers {
		if strings.HasPrefix(r, "{") {
			out[i] = map[string]string{"uuid": r}
		} else {
			out[i] = map[string]string{"account_id": r}
		}
	}
	return out
}

func (c *cloudAPI) ListBranches(ctx context.Context, workspace, repoSlug string) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", c.repoPath(workspace, repoSlug, "refs", "branches"), nil, nil)
}

func (c *cloudAPI) CreateBranch(ctx context.Context, workspace, repoSlug, name, targetHash string) (json.RawMessage, error) {
	body := map[string]interface{}{
		"name":   name,
		"target": map[string]string{"hash": targetHash},
	}
	return c.rest.doJSON(ctx, "POST", c.repoPath(workspace, repoSlug, "refs", "branches"), nil, body)
}

func (c *cloudAPI) CompareBranches(ctx context.Context, workspace, repoSlug, source, destination string) (string, error) {
	revspec := fmt.Sprintf("%s..%s", url.PathEscape(destination), url.PathEscape(source))
	path := c.repoPath(workspace, repoSlug, "diff") + "/" + revspec
	return c.rest.doText(ctx, "GET", path, nil)
}

func (c *cloudAPI) ListCommits(ctx context.Context, workspace, repoSlug, revspec string) (json.RawMessage, error) {
	path := c.repoPath(workspace, repoSlug, "commits")
	if revspec != "" {
		path += "/" + url.PathEscape(revspec)
	}
	return c.rest.doJSON(ctx, "GET", path, nil, nil)
}

func (c *cloudAPI) GetCommit(ctx context.Context, workspace, repoSlug, hash string) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", c.repoPath(workspace, repoSlug, "commit", hash), nil, nil)
}

func (c *cloudAPI) GetCommitDiff(ctx context.Context, workspace, repoSlug, hash string) (string, error) {
	return c.rest.doText(ctx, "GET", c.repoPath(workspace, repoSlug, "diff", hash), nil)
}

func (c *cloudAPI) ListWorkspaces(ctx context.Context) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", "/workspaces", nil, nil)
}

func (c *cloudAPI) ListRepositories(ctx context.Context, workspace string) (json.RawMessage, error) {
	return c.rest.doJSON(ctx, "GET", apiPath("repositories", workspace), nil, nil)
}

// GetFileContent fetches the raw file at a revision.
func (c *cloudAPI) GetFileContent(ctx context.Context, workspace, repoSlug, filePath, commit string) (string, error) {
	path := c.repoPath(workspace, repoSlug, "src", commit) + "/" + escapeFilePath(filePath)
	content, err := c.rest.doText(ctx, "GET", path, nil)
	if err != nil {
		return "", classifyFileError(err)
	}
	return content, nil
}
