package profiles

import (
	"marketdata-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for company profiles.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes registers the profile routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/profiles")
	group.Get("/:symbol", h.HandleGet)
}

// HandleGet returns the stored company profile for a symbol.
// @Summary Get company profile
// @Produce json
// @Param symbol path string true "Canonical symbol"
// @Success 200 {object} CompanyProfile
// @Failure 404 {object} map[string]string
// @Router /profiles/{symbol} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	symbol := c.Params("symbol")

	p, err := h.service.Get(c.Context(), symbol)
	if err != nil {
		l.Error("Profile lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no profile for symbol",
		})
	}
	return c.JSON(p)
}
