package usecase

import (
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
)

type promptUseCaseImpl struct {
	repo  interfaces.PromptRepository
	locks *nameLocker
}

// NewPromptUseCases creates the registry use case implementation on top of a
// prompt repository
func NewPromptUseCases(repo interfaces.PromptRepository) interfaces.PromptUseCases {
	return &promptUseCaseImpl{
		repo:  repo,
		locks: newNameLocker(),
	}
}
