package entity

import "time"

// TransferStatusCompleted único estado con el que se registra una transferencia ejecutada.
const TransferStatusCompleted = "completed"

// CompletedTransfer registro de auditoría (solo inserción) de una propuesta aceptada.
type CompletedTransfer struct {
	ID                    string
	ProposalID            string
	ArticleID             string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int64
	Status                string
	CreatedAt             time.Time
}

// CompletedTransferView transferencia con nombres para el historial.
type CompletedTransferView struct {
	CompletedTransfer
	ArticleCode             string
	ArticleName             string
	SourceLocationName      string
	DestinationLocationName string
}
