// Package pdf implementa la hoja imprimible de transferencias pendientes.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título  │  Fecha de generación + total de unidades │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: Tienda (n transferencias, u unidades)               │
//	│  TABLA: Código | Artículo | Destino | Rotación | Cant | ✓    │
//	│  ... una sección por tienda de origen ...                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: firmas de preparación y recepción                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Equilibrio-api/internal/application/dto"
	"github.com/jhoicas/Equilibrio-api/internal/application/rebalancing"
)

var _ rebalancing.TransferSheetGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa rebalancing.TransferSheetGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador. author aparece en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// GenerateTransferSheet genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateTransferSheet(sheet *rebalancing.TransferSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(sheet.Title, true).
		WithAuthor(nonEmpty(g.author, "equilibrio-stock"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if len(sheet.Groups) == 0 {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New("No hay transferencias pendientes.", props.Text{
				Size: 10, Align: align.Center, Color: colorGray, Top: 4,
			}),
		)))
	}
	for _, grp := range sheet.Groups {
		m.AddRows(groupHeaderRow(grp))
		m.AddRows(tableHeaderRow())
		m.AddRows(tableDetailRows(grp.Lines)...)
		m.AddRows(line.NewRow(4, props.Line{Color: colorGray, Thickness: 0.2}))
	}

	m.AddRows(row.New(6))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y fecha + totales (der).
func headerRow(sheet *rebalancing.TransferSheet) core.Row {
	var lines int
	var units int64
	for _, g := range sheet.Groups {
		lines += len(g.Lines)
		units += g.TotalUnits
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(sheet.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d tiendas de origen", len(sheet.Groups)), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generada: "+sheet.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d transferencias", lines), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6,
			}),
			text.New(formatUnits(units)+" unidades", props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// groupHeaderRow: nombre de la tienda de origen con su resumen.
func groupHeaderRow(grp rebalancing.TransferSheetGroup) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New("ORIGEN: "+grp.SourceLocation, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 3,
		})),
		col.New(4).Add(text.New(
			fmt.Sprintf("%d líneas  |  %s unidades", len(grp.Lines), formatUnits(grp.TotalUnits)),
			props.Text{Size: 8, Align: align.Right, Color: colorGray, Top: 4},
		)),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Artículo", 4, align.Left),
		h("Destino", 3, align.Left),
		h("Rot./mes", 1, align.Right),
		h("Cant.", 1, align.Right),
		h("OK", 1, align.Center),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por transferencia, con casilla para marcar al preparar el envío.
func tableDetailRows(lines []dto.ProposalDTO) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(l.ArticleCode, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ArticleName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(l.DestinationLocationName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(l.DestinationVelocity.StringFixed(1), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(1).Add(text.New(formatUnits(l.Quantity), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(1).Add(text.New("[  ]", props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

// signatureRow: firmas de quien prepara y quien recibe.
func signatureRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(6).Add(
			text.New("_______________________________", props.Text{Size: 9, Align: align.Center, Top: 8}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 13, Color: colorGray}),
		)
	}
	return row.New(20).Add(sign("Preparado por"), sign("Recibido por"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatUnits inserta puntos de miles. Ej: 25000 → "25.000".
func formatUnits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	size := len(s)
	if size <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, size+size/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (size-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
