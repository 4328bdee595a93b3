package rebalancing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

// TransferSheetUseCase genera la hoja imprimible de transferencias pendientes, una sección por
// tienda de origen, para preparar los envíos.
type TransferSheetUseCase struct {
	proposals repository.ProposalRepository
	generator TransferSheetGenerator
	locale    string
	now       func() time.Time
}

// NewTransferSheetUseCase construye el caso de uso.
func NewTransferSheetUseCase(proposals repository.ProposalRepository, generator TransferSheetGenerator, locale string) *TransferSheetUseCase {
	return &TransferSheetUseCase{proposals: proposals, generator: generator, locale: locale, now: time.Now}
}

// PendingSheetPDF devuelve el PDF y un nombre de archivo sugerido.
func (uc *TransferSheetUseCase) PendingSheetPDF(ctx context.Context) (pdfBytes []byte, filename string, err error) {
	sheet, err := uc.PendingSheet(ctx)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateTransferSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("hoja de transferencias: generar PDF: %w", err)
	}
	return pdfBytes, fmt.Sprintf("transferencias-%s.pdf", sheet.GeneratedAt.Format("2006-01-02")), nil
}

// PendingSheet agrupa las propuestas pendientes por tienda de origen (orden alfabético) y, dentro
// de cada grupo, por artículo y destino.
func (uc *TransferSheetUseCase) PendingSheet(ctx context.Context) (*TransferSheet, error) {
	views, err := uc.proposals.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("hoja de transferencias: listar pendientes: %w", err)
	}

	order := newNameOrder(uc.locale)
	lines := proposalDTOs(views)

	groups := make(map[string]*TransferSheetGroup)
	var keys []*TransferSheetGroup
	for _, l := range lines {
		g, ok := groups[l.SourceLocationID]
		if !ok {
			g = &TransferSheetGroup{SourceLocationID: l.SourceLocationID, SourceLocation: l.SourceLocationName}
			groups[l.SourceLocationID] = g
			keys = append(keys, g)
		}
		g.Lines = append(g.Lines, l)
		g.TotalUnits += l.Quantity
	}

	sheet := &TransferSheet{
		Title:       "Hoja de transferencias pendientes",
		GeneratedAt: uc.now(),
		Groups:      make([]TransferSheetGroup, 0, len(keys)),
	}
	for _, g := range keys {
		sort.SliceStable(g.Lines, func(i, j int) bool {
			a, b := g.Lines[i], g.Lines[j]
			if c := order.col.CompareString(a.ArticleName, b.ArticleName); c != 0 {
				return c < 0
			}
			return order.less(a.DestinationLocationName, a.ID, b.DestinationLocationName, b.ID)
		})
		sheet.Groups = append(sheet.Groups, *g)
	}
	sortByName(order, sheet.Groups, func(g TransferSheetGroup) (string, string) {
		return g.SourceLocation, g.SourceLocationID
	})
	return sheet, nil
}
