package bitbucket

import (
	"context"
	"encoding/json"
)

// CreatePullRequestInput carries the arguments for opening a pull request.
type CreatePullRequestInput struct {
	Title        string
	Description  string
	SourceBranch string
	DestBranch   string
	Reviewers    []string
}

// InlineCommentInput anchors a comment to a line of a file in the diff.
type InlineCommentInput struct {
	Text     string
	Path     string
	Line     int
	LineType string // ADDED, CONTEXT or REMOVED
}

// MergeInput carries the optional merge arguments.
type MergeInput struct {
	Message           string
	Strategy          string // merge_commit, squash or fast_forward
	CloseSourceBranch bool
}

// UpdateInput carries the mutable pull-request fields.
type UpdateInput struct {
	Title       string
	Description string
}

// ReviewerResult reports the outcome of adding a single reviewer.
type ReviewerResult struct {
	Reviewer string `json:"reviewer"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Operations is the full Bitbucket operation set. Two implementations
// exist, one per API dialect (Cloud v2 and Server v1.0); the choice is
// fixed when the Client is constructed. Every request path and payload
// shape is a pure function of the dialect, the operation, and its
// arguments.
type Operations interface {
	GetRepository(ctx context.Context, workspace, repoSlug string) (json.RawMessage, error)

	ListPullRequests(ctx context.Context, workspace, repoSlug, state string) (json.RawMessage, error)
	CreatePullRequest(ctx context.Context, workspace, repoSlug string, in CreatePullRequestInput) (json.RawMessage, error)
	GetPullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error)
	GetPullRequestDiff(ctx context.Context, workspace, repoSlug string, id int) (string, error)
	GetPullRequestChanges(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error)
	ListPullRequestComments(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error)
	AddComment(ctx context.Context, workspace, repoSlug string, id int, text string) (json.RawMessage, error)
	AddInlineComment(ctx context.Context, workspace, repoSlug string, id int, in InlineCommentInput) (json.RawMessage, error)
	ApprovePullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error)
	DeclinePullRequest(ctx context.Context, workspace, repoSlug string, id int) (json.RawMessage, error)
	MergePullRequest(ctx context.Context, workspace, repoSlug string, id int, in MergeInput) (json.RawMessage, error)
	UpdatePullRequest(ctx context.Context, workspace, repoSlug string, id int, in UpdateInput) (json.RawMessage, error)
	AddReviewers(ctx context.Context, workspace, repoSlug string, id int, reviewers []string) (json.RawMessage, error)

	ListBranches(ctx context.Context, workspace, repoSlug string) (json.RawMessage, error)
	CreateBranch(ctx context.Context, workspace, repoSlug, name, targetHash string) (json.RawMessage, error)
	CompareBranches(ctx context.Context, workspace, repoSlug, source, destination string) (string, error)

	ListCommits(ctx context.Context, workspace, repoSlug, revspec string) (json.RawMessage, error)
	GetCommit(ctx context.Context, workspace, repoSlug, hash string) (json.RawMessage, error)
	GetCommitDiff(ctx context.Context, workspace, repoSlug, hash string) (string, error)

	ListWorkspaces(ctx context.Context) (json.RawMessage, error)
	ListRepositories(ctx context.Context, workspace string) (json.RawMessage, error)

	GetFileContent(ctx context.Context, workspace, repoSlug, filePath, commit string) (string, error)
}
