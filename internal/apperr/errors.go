package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrNotOwner            = errors.New("not owner")
	ErrNotListed           = errors.New("not listed for sale")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotPending          = errors.New("offer not pending")
	ErrAlreadyExists       = errors.New("already exists")
	ErrAlreadyCollaborator = errors.New("already a collaborator")
	ErrGeneration          = errors.New("content generation failed")
)
