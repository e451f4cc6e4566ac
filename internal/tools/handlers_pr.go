package tools

import (
	"context"
	"fmt"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/bitbucket"
)

func (r *Registry) prList(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.ListPullRequests(ctx,
		getString(args, "workspace"),
		getString(args, "repoSlug"),
		getStringDefault(args, "state", "OPEN"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prCreate(ctx context.Context, args map[string]interface{}) (string, error) {
	in := bitbucket.CreatePullRequestInput{
		Title:        getString(args, "title"),
		Description:  getString(args, "description"),
		SourceBranch: getString(args, "sourceBranch"),
		DestBranch:   getStringDefault(args, "destBranch", r.defaultDestBranch),
	}
	if in.SourceBranch == "" {
		if r.activeBranch == nil {
			return "", &ValidationError{Message: "sourceBranch is required: no local repository to discover the active branch from"}
		}
		branch, err := r.activeBranch()
		if err != nil {
			return "", &ValidationError{Message: fmt.Sprintf("sourceBranch is required: could not discover the active branch: %v", err)}
		}
		in.SourceBranch = branch
	}

	raw, err := r.client.CreatePullRequest(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), in)
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prGet(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.GetPullRequest(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prDiff(ctx context.Context, args map[string]interface{}) (string, error) {
	return r.client.GetPullRequestDiff(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"))
}

func (r *Registry) prChanges(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.GetPullRequestChanges(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prCommentsList(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.ListPullRequestComments(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prCommentAdd(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.AddComment(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"),
		getInt(args, "prId"), getString(args, "text"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prInlineCommentAdd(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.AddInlineComment(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"),
		bitbucket.InlineCommentInput{
			Text:     getString(args, "text"),
			Path:     getString(args, "filePath"),
			Line:     getInt(args, "line"),
			LineType: getStringDefault(args, "lineType", "ADDED"),
		})
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prApprove(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.ApprovePullRequest(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prDecline(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.DeclinePullRequest(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prMerge(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.MergePullRequest(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"),
		bitbucket.MergeInput{
			Message:           getString(args, "message"),
			Strategy:          getString(args, "mergeStrategy"),
			CloseSourceBranch: getBool(args, "closeSourceBranch"),
		})
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prUpdate(ctx context.Context, args map[string]interface{}) (string, error) {
	in := bitbucket.UpdateInput{
		Title:       getString(args, "title"),
		Description: getString(args, "description"),
	}
	if in.Title == "" && in.Description == "" {
		return "", &ValidationError{Message: "at least one of title or description is required"}
	}
	raw, err := r.client.UpdatePullRequest(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"), in)
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) prReviewersAdd(ctx context.Context, args map[string]interface{}) (string, error) {
	reviewers := getStringArray(args, "reviewers")
	if len(reviewers) == 0 {
		return "", &ValidationError{Message: "reviewers must contain at least one identifier"}
	}
	raw, err := r.client.AddReviewers(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getInt(args, "prId"), reviewers)
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}
