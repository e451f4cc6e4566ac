package tools

import "context"

func (r *Registry) repoInfo(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.GetRepository(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) branchesList(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.ListBranches(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) branchCreate(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.CreateBranch(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"),
		getString(args, "name"), getString(args, "targetHash"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) branchCompare(ctx context.Context, args map[string]interface{}) (string, error) {
	return r.client.CompareBranches(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"),
		getString(args, "source"), getString(args, "destination"))
}

func (r *Registry) commitsList(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.ListCommits(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getString(args, "spec"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) commitGet(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.GetCommit(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getString(args, "commitHash"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) commitDiff(ctx context.Context, args map[string]interface{}) (string, error) {
	return r.client.GetCommitDiff(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"), getString(args, "commitHash"))
}

func (r *Registry) workspacesList(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.ListWorkspaces(ctx)
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) reposList(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := r.client.ListRepositories(ctx, getString(args, "workspace"))
	if err != nil {
		return "", err
	}
	return prettyJSON(raw), nil
}

func (r *Registry) fileContent(ctx context.Context, args map[string]interface{}) (string, error) {
	return r.client.GetFileContent(ctx,
		getString(args, "workspace"), getString(args, "repoSlug"),
		getString(args, "filePath"), getString(args, "commitHash"))
}

func (r *Registry) connectionTest(ctx context.Context, args map[string]interface{}) (string, error) {
	result := r.client.TestConnection(ctx)
	return prettyValue(result)
}
