package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Equilibrio-api/internal/application/dto"
	"github.com/jhoicas/Equilibrio-api/internal/application/rebalancing"
	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/pkg/logger"
)

// RebalancingHandler maneja las peticiones HTTP del equilibrado de stock entre tiendas (protegido).
type RebalancingHandler struct {
	run    *rebalancing.RunUseCase
	review *rebalancing.ReviewUseCase
	sheet  *rebalancing.TransferSheetUseCase
	log    *logger.Logger
}

// NewRebalancingHandler construye el handler.
func NewRebalancingHandler(
	run *rebalancing.RunUseCase,
	review *rebalancing.ReviewUseCase,
	sheet *rebalancing.TransferSheetUseCase,
	log *logger.Logger,
) *RebalancingHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RebalancingHandler{run: run, review: review, sheet: sheet, log: log.Component("http.rebalancing")}
}

// Run godoc
// @Summary      Ejecutar equilibrado
// @Description  Calcula las transferencias entre tiendas y reemplaza las propuestas pendientes.
// @Tags         rebalancing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RebalancingReport
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/rebalancing/runs [post]
func (h *RebalancingHandler) Run(c *fiber.Ctx) error {
	report, err := h.run.Run(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(report)
}

// ListPending godoc
// @Summary      Propuestas pendientes
// @Tags         rebalancing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProposalListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/rebalancing/proposals [get]
func (h *RebalancingHandler) ListPending(c *fiber.Ctx) error {
	out, err := h.review.ListPending(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(out)
}

// ListHistory godoc
// @Summary      Historial de propuestas resueltas
// @Tags         rebalancing
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de elementos (por defecto 20, máx. 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ProposalHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/rebalancing/proposals/history [get]
func (h *RebalancingHandler) ListHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit/offset inválidos"})
	}
	out, err := h.review.ListHistory(c.UserContext(), page)
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(out)
}

// PendingSheet godoc
// @Summary      Hoja de transferencias pendientes (PDF)
// @Description  Una sección por tienda de origen, para preparar los envíos.
// @Tags         rebalancing
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/rebalancing/proposals/sheet.pdf [get]
func (h *RebalancingHandler) PendingSheet(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.sheet.PendingSheetPDF(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

// Accept godoc
// @Summary      Aceptar propuesta
// @Description  Descuenta el stock del origen, lo suma al destino y registra la transferencia en una sola transacción.
// @Tags         rebalancing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la propuesta (UUID)"
// @Success      200  {object}  dto.ReviewResult
// @Failure      404  {object}  dto.ReviewResult
// @Failure      409  {object}  dto.ReviewResult
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/rebalancing/proposals/{id}/accept [post]
func (h *RebalancingHandler) Accept(c *fiber.Ctx) error {
	res, err := h.review.Accept(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.internal(c, err)
	}
	h.log.Info().Str("proposal_id", c.Params("id")).Str("user_id", GetUserID(c)).Bool("success", res.Success).Msg("aceptación de propuesta")
	return c.Status(reviewStatus(res)).JSON(res)
}

// Reject godoc
// @Summary      Rechazar propuesta
// @Tags         rebalancing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la propuesta (UUID)"
// @Success      200  {object}  dto.ReviewResult
// @Failure      404  {object}  dto.ReviewResult
// @Failure      409  {object}  dto.ReviewResult
// @Router       /api/rebalancing/proposals/{id}/reject [post]
func (h *RebalancingHandler) Reject(c *fiber.Ctx) error {
	res, err := h.review.Reject(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.internal(c, err)
	}
	h.log.Info().Str("proposal_id", c.Params("id")).Str("user_id", GetUserID(c)).Bool("success", res.Success).Msg("rechazo de propuesta")
	return c.Status(reviewStatus(res)).JSON(res)
}

// ListTransfers godoc
// @Summary      Transferencias ejecutadas
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de elementos"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *RebalancingHandler) ListTransfers(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit/offset inválidos"})
	}
	out, err := h.review.ListCompletedTransfers(c.UserContext(), page)
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(out)
}

// ListLocations godoc
// @Summary      Tiendas
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationDTO
// @Router       /api/locations [get]
func (h *RebalancingHandler) ListLocations(c *fiber.Ctx) error {
	out, err := h.review.ListLocations(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(out)
}

func reviewStatus(res *dto.ReviewResult) int {
	if res.Success {
		return fiber.StatusOK
	}
	switch res.Code {
	case rebalancing.CodeNotFound:
		return fiber.StatusNotFound
	case rebalancing.CodeNotPending, rebalancing.CodeInsufficientStock:
		return fiber.StatusConflict
	case rebalancing.CodeInvalidInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusUnprocessableEntity
	}
}

func (h *RebalancingHandler) internal(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrPartialAccept) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    rebalancing.CodePartialAccept,
			Message: "la transferencia pudo quedar aplicada; verifique el stock antes de reintentar",
		})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
