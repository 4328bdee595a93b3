package http_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Equilibrio-api/internal/application/dto"
	"github.com/jhoicas/Equilibrio-api/internal/application/rebalancing"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/infrastructure/memory"
	"github.com/jhoicas/Equilibrio-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Equilibrio-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildRebalancingApp monta el router completo sobre un store en memoria con el escenario
// X(50, máx 30) → Y(5, mín 20) del artículo A.
func buildRebalancingApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	s.AddLocation("X", "Tienda Centro")
	s.AddLocation("Y", "Tienda Norte")
	s.AddArticle(entity.Article{ID: "A", Code: "A-001", Name: "Camisa lino"})
	s.PutStock(entity.StockRecord{LocationID: "X", ArticleID: "A", QuantityOnHand: 50, MaxThreshold: 30})
	s.PutStock(entity.StockRecord{LocationID: "Y", ArticleID: "A", QuantityOnHand: 5, MinThreshold: 20, MaxThreshold: 100})

	runUC := rebalancing.NewRunUseCase(s, s, s, rebalancing.Options{SalesWindowMonths: 6, Mode: rebalancing.ModeReplace, Locale: "es"}, nil)
	reviewUC := rebalancing.NewReviewUseCase(s, s, s.Locations(), rebalancing.NewTransferExecutor(s, s, nil))
	sheetUC := rebalancing.NewTransferSheetUseCase(s, pdf.NewMarotoPDFGenerator("test"), "es")

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RunUC:     runUC,
		ReviewUC:  reviewUC,
		SheetUC:   sheetUC,
		JWTSecret: testJWTSecret,
	})
	return app, s
}

func call(t *testing.T, app *fiber.App, method, path, role string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func runAndFirstProposal(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/rebalancing/runs", "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[dto.RebalancingReport](t, resp)
	require.Len(t, report.Proposals, 1)
	return report.Proposals[0].ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Corrida y listados
// ──────────────────────────────────────────────────────────────────────────────

func TestRunHandler_DevuelveReporte(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	resp := call(t, app, http.MethodPost, "/api/rebalancing/runs", "revisor")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decode[dto.RebalancingReport](t, resp)
	assert.Equal(t, 1, report.ProposalsCount)
	assert.Equal(t, int64(15), report.Proposals[0].Quantity)
	assert.Equal(t, "Tienda Norte", report.Proposals[0].DestinationLocationName)
	assert.NotNil(t, report.Errors, "errors siempre presente")
}

func TestRunHandler_ConsultaNoPuedeEjecutar(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	resp := call(t, app, http.MethodPost, "/api/rebalancing/runs", "consulta")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRunHandler_ErrorDeAlmacenamiento500(t *testing.T) {
	app, s := buildRebalancingApp(t)
	s.FailOn("LoadSnapshot", errors.New("db caída"))
	resp := call(t, app, http.MethodPost, "/api/rebalancing/runs", "admin")
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", body.Code)
}

func TestListPending_ConsultaPuedeLeer(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	runAndFirstProposal(t, app)

	resp := call(t, app, http.MethodGet, "/api/rebalancing/proposals", "consulta")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ProposalListResponse](t, resp)
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, "Camisa lino", out.Proposals[0].ArticleName)
}

func TestListHistory_QueryInvalida400(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	resp := call(t, app, http.MethodGet, "/api/rebalancing/proposals/history?limit=abc", "admin")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListLocations_OrdenAlfabetico(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	resp := call(t, app, http.MethodGet, "/api/locations", "consulta")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	locs := decode[[]dto.LocationDTO](t, resp)
	require.Len(t, locs, 2)
	assert.Equal(t, "Tienda Centro", locs[0].Name)
}

func TestPendingSheet_DevuelvePDF(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	runAndFirstProposal(t, app)

	resp := call(t, app, http.MethodGet, "/api/rebalancing/proposals/sheet.pdf", "consulta")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "transferencias-")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))
}

// ──────────────────────────────────────────────────────────────────────────────
// Aceptar / rechazar
// ──────────────────────────────────────────────────────────────────────────────

func TestAcceptHandler_AplicaYLuegoConflicto(t *testing.T) {
	app, s := buildRebalancingApp(t)
	id := runAndFirstProposal(t, app)

	resp := call(t, app, http.MethodPost, "/api/rebalancing/proposals/"+id+"/accept", "revisor")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.ReviewResult](t, resp)
	assert.True(t, res.Success)

	x, _ := s.Stock("X", "A")
	y, _ := s.Stock("Y", "A")
	assert.Equal(t, int64(35), x.QuantityOnHand)
	assert.Equal(t, int64(20), y.QuantityOnHand)

	resp = call(t, app, http.MethodPost, "/api/rebalancing/proposals/"+id+"/accept", "revisor")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	res = decode[dto.ReviewResult](t, resp)
	assert.False(t, res.Success)
	assert.Equal(t, rebalancing.CodeNotPending, res.Code)

	resp = call(t, app, http.MethodGet, "/api/transfers", "consulta")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	transfers := decode[dto.TransferListResponse](t, resp)
	require.Len(t, transfers.Items, 1)
	assert.Equal(t, id, transfers.Items[0].ProposalID)
}

func TestAcceptHandler_Inexistente404(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	resp := call(t, app, http.MethodPost, "/api/rebalancing/proposals/no-existe/accept", "admin")
	res := decode[dto.ReviewResult](t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, rebalancing.CodeNotFound, res.Code)
}

func TestAcceptHandler_StockInsuficiente409(t *testing.T) {
	app, s := buildRebalancingApp(t)
	id := runAndFirstProposal(t, app)
	s.PutStock(entity.StockRecord{LocationID: "X", ArticleID: "A", QuantityOnHand: 3, MaxThreshold: 30})

	resp := call(t, app, http.MethodPost, "/api/rebalancing/proposals/"+id+"/accept", "admin")
	res := decode[dto.ReviewResult](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, rebalancing.CodeInsufficientStock, res.Code)
	assert.Equal(t, entity.ProposalPending, s.Proposal(id).Status)
}

func TestAcceptHandler_AceptacionParcial500(t *testing.T) {
	app, s := buildRebalancingApp(t)
	id := runAndFirstProposal(t, app)
	s.FailCommitWith(errors.New("conexión perdida"))

	resp := call(t, app, http.MethodPost, "/api/rebalancing/proposals/"+id+"/accept", "admin")
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, rebalancing.CodePartialAccept, body.Code)
}

func TestRejectHandler_NoTocaStock(t *testing.T) {
	app, s := buildRebalancingApp(t)
	id := runAndFirstProposal(t, app)

	resp := call(t, app, http.MethodPost, "/api/rebalancing/proposals/"+id+"/reject", "revisor")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.ReviewResult](t, resp).Success)

	x, _ := s.Stock("X", "A")
	assert.Equal(t, int64(50), x.QuantityOnHand)
	assert.Equal(t, entity.ProposalRejected, s.Proposal(id).Status)
}

func TestRejectHandler_ConsultaBloqueado(t *testing.T) {
	app, _ := buildRebalancingApp(t)
	id := runAndFirstProposal(t, app)
	resp := call(t, app, http.MethodPost, "/api/rebalancing/proposals/"+id+"/reject", "consulta")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
