package rebalancing

import (
	"github.com/jhoicas/Equilibrio-api/internal/application/dto"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/rebalance"
)

func proposalDTO(v *entity.ProposalView) dto.ProposalDTO {
	return dto.ProposalDTO{
		ID:                      v.ID,
		RunID:                   v.RunID,
		ArticleID:               v.ArticleID,
		ArticleCode:             v.ArticleCode,
		ArticleName:             orPlaceholder(v.ArticleName, rebalance.UnknownArticle),
		SourceLocationID:        v.SourceLocationID,
		SourceLocationName:      orPlaceholder(v.SourceLocationName, rebalance.UnknownLocation),
		DestinationLocationID:   v.DestinationLocationID,
		DestinationLocationName: orPlaceholder(v.DestinationLocationName, rebalance.UnknownLocation),
		Quantity:                v.Quantity,
		DestinationVelocity:     v.DestinationVelocity,
		Status:                  string(v.Status),
		GeneratedAt:             v.GeneratedAt,
		ResolvedAt:              v.ResolvedAt,
	}
}

func proposalDTOs(views []*entity.ProposalView) []dto.ProposalDTO {
	out := make([]dto.ProposalDTO, 0, len(views))
	for _, v := range views {
		out = append(out, proposalDTO(v))
	}
	return out
}

func transferDTO(v *entity.CompletedTransferView) dto.CompletedTransferDTO {
	return dto.CompletedTransferDTO{
		ID:                      v.ID,
		ProposalID:              v.ProposalID,
		ArticleID:               v.ArticleID,
		ArticleCode:             v.ArticleCode,
		ArticleName:             orPlaceholder(v.ArticleName, rebalance.UnknownArticle),
		SourceLocationID:        v.SourceLocationID,
		SourceLocationName:      orPlaceholder(v.SourceLocationName, rebalance.UnknownLocation),
		DestinationLocationID:   v.DestinationLocationID,
		DestinationLocationName: orPlaceholder(v.DestinationLocationName, rebalance.UnknownLocation),
		Quantity:                v.Quantity,
		Status:                  v.Status,
		CreatedAt:               v.CreatedAt,
	}
}

func orPlaceholder(name, placeholder string) string {
	if name == "" {
		return placeholder
	}
	return name
}
