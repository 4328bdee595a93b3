package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Equilibrio-api/internal/application/rebalancing"
	"github.com/jhoicas/Equilibrio-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RunUC     *rebalancing.RunUseCase
	ReviewUC  *rebalancing.ReviewUseCase
	SheetUC   *rebalancing.TransferSheetUseCase
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	h := NewRebalancingHandler(deps.RunUC, deps.ReviewUC, deps.SheetUC, deps.Logger)
	reviewers := RequireRole(RoleAdmin, RoleRevisor)

	rb := api.Group("/rebalancing")
	rb.Post("/runs", reviewers, h.Run)
	rb.Get("/proposals", h.ListPending)
	rb.Get("/proposals/history", h.ListHistory)
	rb.Get("/proposals/sheet.pdf", h.PendingSheet)
	rb.Post("/proposals/:id/accept", reviewers, h.Accept)
	rb.Post("/proposals/:id/reject", reviewers, h.Reject)

	api.Get("/transfers", h.ListTransfers)
	api.Get("/locations", h.ListLocations)
}
