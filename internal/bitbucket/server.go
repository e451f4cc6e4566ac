package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// serverAPI implements Operations against the Bitbucket Server v1.0 REST
// API, where workspaces are project keys.
type serverAPI struct {
	rest *rest
}

func (s *serverAPI) repoPath(workspace, repoSlug string, rest ...string) string {
	return apiPath(append([]string{"projects", workspace, "repos", repoSlug}, rest...)...)
}

func (s *serverAPI) prPath(workspace, repoSlug string, id int, rest ...string) string {
	return s.repoPath(workspace, repoSlug, append([]string{"pull-requests", strconv.Itoa(id)}, rest...)...)
}

func (s *serverAPI) GetRepository(ctx context.Context, workspace, repoSlug string) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", s.repoPath(workspace, repoSlug), nil, nil)
}

func (s *serverAPI) ListPullRequests(ctx context.Context, workspace, repoSlug, state string) (json.RawMessage, error) {
	q := url.Values{}
	if state != "" {
		q.Set("state", state)
	}
	return s.rest.doJSON(ctx, "GET", s.repoPath(workspace, repoSlug, "pull-requests"), q, nil)
}

func (s *serverAPI) CreatePullRequest(ctx context.Context, workspace, repoSlug string, in CreatePullRequestInput) (json.RawMessage, error) {
	ref := func(branch string) map[string]interface{} {
		return map[string]interface{}{
			"id": "refs/heads/" + branch,
			"repository": map[string]interface{}{
				"slug":    repoSlug,
				"project": map[string]string{"key": workspace},
			},
		}
	}
	reviewers := make([]map[string]interface{}, len(in.Reviewers))
	for i, r := range in.Reviewers {
		reviewers[i] = map[string]interface{}{"user": map[string]string{"name": r}}
	}
	body := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"state":       "OPEN",
		"fromRef":     ref(in.SourceBranch),
		"toRef":       ref(in.DestBranch),
		"reviewers":   reviewers,
	}
	return s.rest.doJSON(ctx, "POST", s.repoPath(workspace, repoSlug, "pull-requests"), nil, body)
}

func (s *serverAPI) GetPullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", s.prPath(workspace, repoSlug, id), nil, nil)
}

func (s *serverAPI) GetPullRequestDiff(ctx context.Context, workspace, repoSlug string, id int) (string, error) {
	return s.rest.doText(ctx, "GET", s.prPath(workspace, repoSlug, id, "diff"), nil)
}

func (s *serverAPI) GetPullRequestChanges(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", s.prPath(workspace, repoSlug, id, "changes"), nil, nil)
}

func (s *serverAPI) ListPullRequestComments(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", s.prPath(workspace, repoSlug, id, "activities"), nil, nil)
}

func (s *serverAPI) AddComment(ctx context.Context, workspace, repoSlug string, id int, text string) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "POST", s.prPath(workspace, repoSlug, id, "comments"), nil, map[string]string{"text": text})
}

func (s *serverAPI) AddInlineComment(ctx context.Context, workspace, repoSlug string, id int, in InlineCommentInput) (json.RawMessage, error) {
	body := map[string]interface{}{
		"text": in.Text,
		"anchor": map[string]interface{}{
			"line":     in.Line,
			"lineType": in.LineType,
			"fileType": "TO",
			"path":     in.Path,
		},
	}
	return s.rest.doJSON(ctx, "POST", s.prPath(workspace, repoSlug, id, "comments"), nil, body)
}

func (s *serverAPI) ApprovePullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "POST", s.prPath(workspace, repoSlug, id, "approve"), nil, nil)
}

func (s *serverAPI) DeclinePullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "POST", s.prPath(workspace, repoSlug, id, "decline"), nil, nil)
}

// currentVersion reads the pull request's version stamp, required by the
// Server API for optimistic locking on merge and update.
func (s *serverAPI) currentVersion(ctx context.Context, workspace, repoSlug string, id int) (int, error) {
	raw, err := s.GetPullRequest(ctx, workspace, repoSlug, id)
	if err != nil {
		return 0, err
	}
	var pr struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &pr); err != nil {
		return 0, fmt.Errorf("failed to parse pull request version: %w", err)
	}
	return pr.Version, nil
}

func (s *serverAPI) MergePullRequest(ctx context.Context, workspace, repoSlug string, id int, in MergeInput) (json.RawMessage, error) {
	version, err := s.currentVersion(ctx, workspace, repoSlug, id)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{"version": version}
	if in.Message != "" {
		body["message"] = in.Message
	}
	return s.rest.doJSON(ctx, "POST", s.prPath(workspace, repoSlug, id, "merge"), nil, body)
}

func (s *serverAPI) UpdatePullRequest(ctx context.Context, workspace, repoSlug string, id int, in UpdateInput) (json.RawMessage, error) {
	version, err := s.currentVersion(ctx, workspace, repoSlug, id)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{"version": version}
	if in.Title != "" {
		body["title"] = in.Title
	}
	if in.Description != "" {
		body["description"] = in.Description
	}
	return s.rest.doJSON(ctx, "PUT", s.prPath(workspace, repoSlug, id), nil, body)
}

// AddReviewers fires one participant request per reviewer concurrently and
// reports a per-reviewer result list rather than an aggregate failure.
func (s *serverAPI) AddReviewers(ctx context.Context, workspace, repoSlug string, id int, reviewers []string) (json.RawMessage, error) {
	results := make([]ReviewerResult, len(reviewers))
	var wg sync.WaitGroup

	for i, reviewer := range reviewers {
		wg.Add(1)
		go func(i int, reviewer string) {
			defer wg.Done()
			body := map[string]interface{}{
				"user": map[string]string{"name": reviewer},
				"role": "REVIEWER",
			}
			_, err := s.rest.doJSON(ctx, "POST", s.prPath(workspace, repoSlug, id, "participants"), nil, body)
			if err != nil {
				results[i] = ReviewerResult{Reviewer: reviewer, Status: "failed", Error: err.Error()}
				return
			}
			results[i] = ReviewerResult{Reviewer: reviewer, Status: "added"}
		}(i, reviewer)
	}
	wg.Wait()

	return json.Marshal(map[string]interface{}{"reviewers": results})
}

func (s *serverAPI) ListBranches(ctx context.Context, workspace, repoSlug string) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", s.repoPath(workspace, repoSlug, "branches"), nil, nil)
}

func (s *serverAPI) CreateBranch(ctx context.Context, workspace, repoSlug, name, targetHash string) (json.RawMessage, error) {
	body := map[string]string{
		"name":       name,
		"startPoint": targetHash,
	}
	return s.rest.doJSON(ctx, "POST", s.repoPath(workspace, repoSlug, "branches"), nil, body)
}

func (s *serverAPI) CompareBranches(ctx context.Context, workspace, repoSlug, source, destination string) (string, error) {
	q := url.Values{}
	q.Set("from", source)
	q.Set("to", destination)
	return s.rest.doText(ctx, "GET", s.repoPath(workspace, repoSlug, "compare", "diff"), q)
}

func (s *serverAPI) ListCommits(ctx context.Context, workspace, repoSlug, revspec string) (json.RawMessage, error) {
	q := url.Values{}
	if revspec != "" {
		q.Set("until", revspec)
	}
	return s.rest.doJSON(ctx, "GET", s.repoPath(workspace, repoSlug, "commits"), q, nil)
}

func (s *serverAPI) GetCommit(ctx context.Context, workspace, repoSlug, hash string) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", s.repoPath(workspace, repoSlug, "commits", hash), nil, nil)
}

func (s *serverAPI) GetCommitDiff(ctx context.Context, workspace, repoSlug, hash string) (string, error) {
	return s.rest.doText(ctx, "GET", s.repoPath(workspace, repoSlug, "commits", hash, "diff"), nil)
}

func (s *serverAPI) ListWorkspaces(ctx context.Context) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", "/projects", nil, nil)
}

func (s *serverAPI) ListRepositories(ctx context.Context, workspace string) (json.RawMessage, error) {
	return s.rest.doJSON(ctx, "GET", apiPath("projects", workspace, "repos"), nil, nil)
}

// GetFileContent fetches the file via the browse endpoint, which returns
// the content as a list of lines, and joins them back together.
func (s *serverAPI) GetFileContent(ctx context.Context, workspace, repoSlug, filePath, commit string) (string, error) {
	q := url.Values{}
	if commit != "" {
		q.Set("at", commit)
	}
	path := s.repoPath(workspace, repoSlug, "browse") + "/" + escapeFilePath(filePath)
	raw, err := s.rest.doJSON(ctx, "GET", path, q, nil)
	if err != nil {
		return "", classifyFileError(err)
	}

	var browse struct {
		Lines []struct {
			Text string `json:"text"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(raw, &browse); err != nil {
		return "", classifyFileError(&StructuredError{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("failed to parse browse response: %v", err),
		})
	}

	lines := make([]string, len(browse.Lines))
	for i, l := range browse.Lines {
		lines[i] = l.Text
	}
	return strings.Join(lines, "\n"), nil
}
