// Package gitinfo resolves the current commit of the documented source tree
// for build summaries. Everything here is best-effort: a source tree outside
// version control is perfectly valid input.
package gitinfo

import (
	"github.com/go-git/go-git/v5"
)

// Info describes the source tree's current revision.
type Info struct {
	Commit string
	Branch string
}

// Head returns the HEAD commit and branch of the repository containing dir.
// The zero Info and an error come back when dir is not inside a repository.
func Head(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}, err
	}
	head, err := repo.Head()
	if err != nil {
		return Info{}, err
	}
	info := Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}
