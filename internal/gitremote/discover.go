package gitremote

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// Local describes the repository checked out at a directory: the active
// branch and the descriptor parsed from its origin remote.
type Local struct {
	Branch string
	Origin *Descriptor
}

// DiscoverLocal inspects the git repository containing dir and reports its
// active branch and origin remote. It is used only to default pull-request
// arguments; callers treat any error as "no default available".
func DiscoverLocal(dir string) (*Local, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return nil, fmt.Errorf("HEAD is not on a branch")
	}

	local := &Local{Branch: head.Name().Short()}

	remote, err := repo.Remote("origin")
	if err == nil && len(remote.Config().URLs) > 0 {
		if desc, perr := Parse(remote.Config().URLs[0]); perr == nil {
			local.Origin = desc
		}
	}

	return local, nil
}
