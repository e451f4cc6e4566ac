package gitremote

import (
	"fmt"
	"regexp"
	"strings"
)

// Descriptor is the {host, workspace, repoSlug} triple extracted from a
// git remote URL.
type Descriptor struct {
	Host      string
	Workspace string
	RepoSlug  string
}

// UnsupportedRemoteError is returned when a remote URL matches neither
// accepted shape.
type UnsupportedRemoteError struct {
	Remote string
}

func (e *UnsupportedRemoteError) Error() string {
	return fmt.Sprintf("unsupported remote URL format: %s", e.Remote)
}

var (
	// user@host:workspace/repo[.git]
	sshPattern = regexp.MustCompile(`^[^@]+@([^:]+):([^/]+)/(.+)$`)
	// scheme://[user@]host/workspace/repo[.git]
	httpsPattern = regexp.MustCompile(`(?i)^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/(.+)$`)
)

// Parse extracts a Descriptor from a git remote URL. Two shapes are
// accepted: SSH (user@host:workspace/repo) and HTTP(S)
// (scheme://[user@]host/workspace/repo). A trailing .git is stripped.
func Parse(remote string) (*Descriptor, error) {
	remote = strings.TrimSpace(remote)

	for _, pat := range []*regexp.Regexp{sshPattern, httpsPattern} {
		if m := pat.FindStringSubmatch(remote); m != nil {
			return &Descriptor{
				Host:      m[1],
				Workspace: m[2],
				RepoSlug:  strings.TrimSuffix(m[3], ".git"),
			}, nil
		}
	}

	return nil, &UnsupportedRemoteError{Remote: remote}
}
