package tools

import (
	"context"
	"fmt"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/bitbucket"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/logging"
)

// Handler executes one tool call and returns the text block of the result.
type Handler func(ctx context.Context, args map[string]interface{}) (string, error)

// UnknownToolError is returned when a call names a tool that is not
// registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// BranchDiscoverer supplies the active local branch, used only to default
// the source branch of pr_create.
type BranchDiscoverer func() (string, error)

// Registry is the static dispatch table: every tool definition paired with
// its handler, built once at startup.
type Registry struct {
	client            *bitbucket.Client
	defaultDestBranch string
	activeBranch      BranchDiscoverer
	log               *logging.Logger

	defs     []Tool
	byName   map[string]Tool
	handlers map[string]Handler
}

// New builds the registry over a constructed client. activeBranch may be
// nil when no local repository is available.
func New(client *bitbucket.Client, defaultDestBranch string, activeBranch BranchDiscoverer, log *logging.Logger) *Registry {
	r := &Registry{
		client:            client,
		defaultDestBranch: defaultDestBranch,
		activeBranch:      activeBranch,
		log:               log.Sub("tools"),
	}
	r.defs = definitions()
	r.byName = make(map[string]Tool, len(r.defs))
	for _, d := range r.defs {
		r.byName[d.Name] = d
	}
	r.handlers = map[string]Handler{
		"repo_info":             r.repoInfo,
		"pr_list":               r.prList,
		"pr_create":             r.prCreate,
		"pr_get":                r.prGet,
		"pr_diff":               r.prDiff,
		"pr_changes":            r.prChanges,
		"pr_comments_list":      r.prCommentsList,
		"pr_comment_add":        r.prCommentAdd,
		"pr_inline_comment_add": r.prInlineCommentAdd,
		"pr_approve":            r.prApprove,
		"pr_decline":            r.prDecline,
		"pr_merge":              r.prMerge,
		"pr_update":             r.prUpdate,
		"pr_reviewers_add":      r.prReviewersAdd,
		"branches_list":         r.branchesList,
		"branch_create":         r.branchCreate,
		"branch_compare":        r.branchCompare,
		"commits_list":          r.commitsList,
		"commit_get":            r.commitGet,
		"commit_diff":           r.commitDiff,
		"workspaces_list":       r.workspacesList,
		"repos_list":            r.reposList,
		"file_content":          r.fileContent,
		"connection_test":       r.connectionTest,
	}
	return r
}

// Definitions returns every registered tool for enumeration.
func (r *Registry) Definitions() []Tool {
	return r.defs
}

// Call validates the arguments against the tool's schema and runs its
// handler. Validation failures never reach the network.
func (r *Registry) Call(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return "", &UnknownToolError{Name: name}
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := ValidateParams(r.byName[name].InputSchema, args); err != nil {
		return "", err
	}
	return handler(ctx, args)
}

func definitions() []Tool {
	repoArgs := func(extra map[string]Property, required ...string) InputSchema {
		props := map[string]Property{
			"workspace": stringProp("Workspace (Cloud) or project key (Server)"),
			"repoSlug":  stringProp("Repository slug"),
		}
		for k, v := range extra {
			props[k] = v
		}
		return InputSchema{
			Type:       "object",
			Properties: props,
			Required:   append([]string{"workspace", "repoSlug"}, required...),
		}
	}
	prArgs := func(extra map[string]Property, required ...string) InputSchema {
		merged := map[string]Property{
			"prId": numberProp("Pull request ID"),
		}
		for k, v := range extra {
			merged[k] = v
		}
		return repoArgs(merged, append([]string{"prId"}, required...)...)
	}

	return []Tool{
		{
			Name:        "repo_info",
			Description: "Get metadata for a repository",
			InputSchema: repoArgs(nil),
		},
		{
			Name:        "pr_list",
			Description: "List pull requests in a repository, filtered by state",
			InputSchema: repoArgs(map[string]Property{
				"state": enumProp("Pull request state to filter by",
					[]string{"OPEN", "MERGED", "DECLINED", "SUPERSEDED"}, "OPEN"),
			}),
		},
		{
			Name:        "pr_create",
			Description: "Create a pull request. The source branch defaults to the active local branch, the destination to the configured default branch",
			InputSchema: repoArgs(map[string]Property{
				"title":        stringProp("Pull request title"),
				"sourceBranch": stringProp("Source branch name (defaults to the active local branch)"),
				"destBranch":   stringProp("Destination branch name (defaults to the configured default)"),
				"description":  stringProp("Pull request description"),
			}, "title"),
		},
		{
			Name:        "pr_get",
			Description: "Get a pull request by ID",
			InputSchema: prArgs(nil),
		},
		{
			Name:        "pr_diff",
			Description: "Get the diff of a pull request",
			InputSchema: prArgs(nil),
		},
		{
			Name:        "pr_changes",
			Description: "List the changed files of a pull request",
			InputSchema: prArgs(nil),
		},
		{
			Name:        "pr_comments_list",
			Description: "List the comments on a pull request",
			InputSchema: prArgs(nil),
		},
		{
			Name:        "pr_comment_add",
			Description: "Add a comment to a pull request",
			InputSchema: prArgs(map[string]Property{
				"text": stringProp("Comment text"),
			}, "text"),
		},
		{
			Name:        "pr_inline_comment_add",
			Description: "Add an inline comment anchored to a file line in a pull request",
			InputSchema: prArgs(map[string]Property{
				"text":     stringProp("Comment text"),
				"filePath": stringProp("Path of the file to comment on"),
				"line":     numberProp("Line number to anchor the comment to"),
				"lineType": enumProp("Kind of diff line the comment anchors to",
					[]string{"ADDED", "CONTEXT", "REMOVED"}, "ADDED"),
			}, "filePath", "line", "text"),
		},
		{
			Name:        "pr_approve",
			Description: "Approve a pull request",
			InputSchema: prArgs(nil),
		},
		{
			Name:        "pr_decline",
			Description: "Decline a pull request",
			InputSchema: prArgs(nil),
		},
		{
			Name:        "pr_merge",
			Description: "Merge a pull request",
			InputSchema: prArgs(map[string]Property{
				"closeSourceBranch": boolProp("Close the source branch after merging"),
				"mergeStrategy": enumProp("Merge strategy",
					[]string{"merge_commit", "squash", "fast_forward"}, ""),
				"message": stringProp("Merge commit message"),
			}),
		},
		{
			Name:        "pr_update",
			Description: "Update the title or description of a pull request",
			InputSchema: prArgs(map[string]Property{
				"title":       stringProp("New title"),
				"description": stringProp("New description"),
			}),
		},
		{
			Name:        "pr_reviewers_add",
			Description: "Add reviewers to a pull request",
			InputSchema: prArgs(map[string]Property{
				"reviewers": stringArrayProp("Reviewer identifiers to add"),
			}, "reviewers"),
		},
		{
			Name:        "branches_list",
			Description: "List the branches of a repository",
			InputSchema: repoArgs(nil),
		},
		{
			Name:        "branch_create",
			Description: "Create a branch at a commit",
			InputSchema: repoArgs(map[string]Property{
				"name":       stringProp("Name for the new branch"),
				"targetHash": stringProp("Commit hash the branch starts at"),
			}, "name", "targetHash"),
		},
		{
			Name:        "branch_compare",
			Description: "Compare two branches and return the diff",
			InputSchema: repoArgs(map[string]Property{
				"source":      stringProp("Source branch"),
				"destination": stringProp("Destination branch"),
			}, "source", "destination"),
		},
		{
			Name:        "commits_list",
			Description: "List commits in a repository, optionally from a revision",
			InputSchema: repoArgs(map[string]Property{
				"spec": stringProp("Revision to list commits from (branch, tag or hash)"),
			}),
		},
		{
			Name:        "commit_get",
			Description: "Get a commit by hash",
			InputSchema: repoArgs(map[string]Property{
				"commitHash": stringProp("Commit hash"),
			}, "commitHash"),
		},
		{
			Name:        "commit_diff",
			Description: "Get the diff introduced by a commit",
			InputSchema: repoArgs(map[string]Property{
				"commitHash": stringProp("Commit hash"),
			}, "commitHash"),
		},
		{
			Name:        "workspaces_list",
			Description: "List the workspaces (Cloud) or projects (Server) visible to the credentials",
			InputSchema: InputSchema{Type: "object", Properties: map[string]Property{}},
		},
		{
			Name:        "repos_list",
			Description: "List the repositories in a workspace",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"workspace": stringProp("Workspace (Cloud) or project key (Server)"),
				},
				Required: []string{"workspace"},
			},
		},
		{
			Name:        "file_content",
			Description: "Fetch the content of a file at a revision",
			InputSchema: repoArgs(map[string]Property{
				"filePath":   stringProp("Path of the file"),
				"commitHash": stringProp("Revision to read the file at"),
			}, "filePath", "commitHash"),
		},
		{
			Name:        "connection_test",
			Description: "Verify that the configured credentials can reach the API",
			InputSchema: InputSchema{Type: "object", Properties: map[string]Property{}},
		},
	}
}
