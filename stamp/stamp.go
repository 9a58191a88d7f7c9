package stamp

import (
	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"

	"github.com/TomKeddie/luna/log"
)

// Unknown is the revision reported outside of a git repository.
const Unknown = "unknown"

const shortHashLength = 12

// Stamp identifies the source revision generated files were produced from.
type Stamp struct {
	Revision string
	Dirty    bool
}

func (s Stamp) String() string {
	if s.Dirty {
		return s.Revision + "-dirty"
	}
	return s.Revision
}

// Describe returns the HEAD revision of the repository enclosing `dir`.
// Any failure to read the repository yields the Unknown stamp.
func Describe(dir string) Stamp {
	s, err := describe(dir)
	if err != nil {
		log.Debug("No source revision for '%s': %s\n", dir, err)
		return Stamp{Revision: Unknown}
	}
	return s
}

func describe(dir string) (Stamp, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Stamp{}, errors.Wrap(err, "opening repository")
	}
	head, err := repo.Head()
	if err != nil {
		return Stamp{}, errors.Wrap(err, "reading HEAD")
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return Stamp{}, errors.Wrap(err, "reading worktree")
	}
	status, err := worktree.Status()
	if err != nil {
		return Stamp{}, errors.Wrap(err, "reading worktree status")
	}

	hash := head.Hash().String()
	return Stamp{Revision: hash[:shortHashLength], Dirty: !status.IsClean()}, nil
}
