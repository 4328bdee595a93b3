package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProposalStatus ciclo de vida de una propuesta: pending → accepted | rejected (una sola vez).
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// TransferProposal transferencia recomendada, aún no ejecutada, de un artículo entre dos tiendas.
type TransferProposal struct {
	ID                    string
	RunID                 string
	ArticleID             string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int64
	// DestinationVelocity rotación mensual del destino que decidió su prioridad (informativa).
	DestinationVelocity decimal.Decimal
	Status              ProposalStatus
	GeneratedAt         time.Time
	ResolvedAt          *time.Time
}

// SameTransfer indica si dos propuestas mueven la misma cantidad del mismo artículo entre las mismas tiendas.
func (p *TransferProposal) SameTransfer(o *TransferProposal) bool {
	return p.ArticleID == o.ArticleID &&
		p.SourceLocationID == o.SourceLocationID &&
		p.DestinationLocationID == o.DestinationLocationID &&
		p.Quantity == o.Quantity
}

// ProposalView propuesta enriquecida con nombres para revisión.
type ProposalView struct {
	TransferProposal
	ArticleCode             string
	ArticleName             string
	SourceLocationName      string
	DestinationLocationName string
}
