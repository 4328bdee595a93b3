package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Equilibrio-api/internal/domain/rebalance"
)

// ProposalDTO propuesta de transferencia con nombres para revisión.
type ProposalDTO struct {
	ID                      string          `json:"id"`
	RunID                   string          `json:"run_id,omitempty"`
	ArticleID               string          `json:"article_id"`
	ArticleCode             string          `json:"article_code,omitempty"`
	ArticleName             string          `json:"article"`
	SourceLocationID        string          `json:"source_location_id"`
	SourceLocationName      string          `json:"source_location"`
	DestinationLocationID   string          `json:"destination_location_id"`
	DestinationLocationName string          `json:"destination_location"`
	Quantity                int64           `json:"quantity"`
	DestinationVelocity     decimal.Decimal `json:"destination_velocity"` // unidades/mes del destino
	Status                  string          `json:"status"`
	GeneratedAt             time.Time       `json:"generated_at"`
	ResolvedAt              *time.Time      `json:"resolved_at,omitempty"`
}

// ProposalListResponse respuesta de GET /api/rebalancing/proposals.
type ProposalListResponse struct {
	Total     int           `json:"total"`
	Proposals []ProposalDTO `json:"proposals"`
}

// ProposalHistoryResponse respuesta de GET /api/rebalancing/proposals/history.
type ProposalHistoryResponse struct {
	Items []ProposalDTO `json:"items"`
	Page  PageResponse  `json:"page"`
}

// RebalancingReport resultado de una corrida de equilibrado.
type RebalancingReport struct {
	Message         string                      `json:"message"`
	RunID           string                      `json:"run_id"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	ProposalsCount  int                         `json:"proposals_count"`
	Proposals       []ProposalDTO               `json:"proposals"`
	LocationSummary []rebalance.LocationSummary `json:"location_summary"`
	ArticleDetails  []rebalance.ArticleDetail   `json:"article_details"`
	Analysis        rebalance.Analysis          `json:"analysis"`
	Errors          []string                    `json:"errors"`
}

// ReviewResult resultado de aceptar o rechazar una propuesta.
// Code solo se rellena en fallos (NOT_FOUND, NOT_PENDING, INSUFFICIENT_STOCK, PARTIAL_ACCEPT).
type ReviewResult struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// CompletedTransferDTO transferencia ejecutada para el historial.
type CompletedTransferDTO struct {
	ID                      string    `json:"id"`
	ProposalID              string    `json:"proposal_id"`
	ArticleID               string    `json:"article_id"`
	ArticleCode             string    `json:"article_code,omitempty"`
	ArticleName             string    `json:"article"`
	SourceLocationID        string    `json:"source_location_id"`
	SourceLocationName      string    `json:"source_location"`
	DestinationLocationID   string    `json:"destination_location_id"`
	DestinationLocationName string    `json:"destination_location"`
	Quantity                int64     `json:"quantity"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
}

// TransferListResponse respuesta de GET /api/transfers.
type TransferListResponse struct {
	Items []CompletedTransferDTO `json:"items"`
	Page  PageResponse           `json:"page"`
}

// LocationDTO tienda.
type LocationDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
