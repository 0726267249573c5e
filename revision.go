package main

import (
	"fmt"

	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
)

// sourceRevision returns the abbreviated HEAD commit of the git repository
// containing dir, suffixed with "-dirty" when tracked files have local
// changes. Untracked files, such as the output files and the chart, are
// ignored. It returns an empty string if dir is not in a repository or the
// repository has no commits yet.
func sourceRevision(dir string) (string, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == git.ErrRepositoryNotExists {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("unable to open the git repository: %w", err)
	}

	head, err := r.Head()
	if err == plumbing.ErrReferenceNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("unable to get the reference where HEAD is pointing to: %w", err)
	}
	revision := head.Hash().String()[:7]

	w, err := r.Worktree()
	if err == git.ErrIsBareRepository {
		return revision, nil
	}
	if err != nil {
		return "", fmt.Errorf("unable to get a worktree based on the given fs: %w", err)
	}

	s, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("unable to get the working tree status: %w", err)
	}
	for _, fs := range s {
		if fs.Staging == git.Untracked && fs.Worktree == git.Untracked {
			continue
		}
		if fs.Staging != git.Unmodified || fs.Worktree != git.Unmodified {
			return revision + "-dirty", nil
		}
	}
	return revision, nil
}
