// Package gitops is the version-control collaborator boundary. The pipeline
// only ever asks it to create a working branch before analysis begins.
package gitops

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// BranchResult is the outcome of a create-branch request.
type BranchResult string

const (
	BranchCreated       BranchResult = "created"
	BranchAlreadyExists BranchResult = "already_exists"
)

// Brancher creates analysis branches. Implementations must be cheap to call
// once per run.
type Brancher interface {
	CreateBranch(root, name string) (BranchResult, error)
}

// GoGit is the default Brancher over a local repository.
type GoGit struct{}

// CreateBranch points a new branch at the current HEAD without checking it
// out; the analysis itself stays read-only over the working tree. An
// existing branch with the same name is reported, not an error.
func (GoGit) CreateBranch(root, name string) (BranchResult, error) {
	if name == "" {
		return "", errors.New("empty branch name")
	}
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", fmt.Errorf("open repository at %s: %w", root, err)
	}
	ref := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(ref, false); err == nil {
		return BranchAlreadyExists, nil
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(ref, head.Hash())); err != nil {
		return "", fmt.Errorf("create branch %s: %w", name, err)
	}
	return BranchCreated, nil
}
