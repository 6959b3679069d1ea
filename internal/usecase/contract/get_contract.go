package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type GetContractUseCase struct {
	contractRepo repository.ContractRepository
}

func NewGetContractUseCase(contractRepo repository.ContractRepository) *GetContractUseCase {
	return &GetContractUseCase{contractRepo: contractRepo}
}

func (uc *GetContractUseCase) Execute(ctx context.Context, contractID, userID uuid.UUID) (*entity.Contract, error) {
	contract, err := uc.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(userID) {
		return nil, apperror.ErrForbidden
	}
	return contract, nil
}

type ListMyContractsUseCase struct {
	contractRepo repository.ContractRepository
}

func NewListMyContractsUseCase(contractRepo repository.ContractRepository) *ListMyContractsUseCase {
	return &ListMyContractsUseCase{contractRepo: contractRepo}
}

func (uc *ListMyContractsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.Contract, error) {
	return uc.contractRepo.FindByParty(ctx, userID)
}
