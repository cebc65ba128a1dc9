package news

import (
	"marketdata-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for news.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes registers the news routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/news")
	group.Get("/:symbol", h.HandleList)
}

// HandleList returns stored articles for a symbol, newest first.
// @Summary List news for a symbol
// @Produce json
// @Param symbol path string true "Canonical symbol"
// @Param limit query int false "Maximum articles to return"
// @Success 200 {array} NewsArticle
// @Router /news/{symbol} [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	symbol := c.Params("symbol")

	articles, err := h.service.List(c.Context(), symbol, c.QueryInt("limit"))
	if err != nil {
		l.Error("News lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(articles)
}
