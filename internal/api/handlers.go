package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/query"
)

// Handler binds the query service to gin routes.
type Handler struct {
	service *query.Service
	logger  *slog.Logger
}

// NewHandler creates a Handler. A nil logger falls back to slog.Default.
func NewHandler(service *query.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts all routes under /api/v1.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.GET("/items", h.listItems)
	v1.GET("/items/:id/price-history", h.priceHistory)
	v1.GET("/market/trends", h.marketTrends)
	v1.GET("/market/statistics", h.marketStatistics)
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.service.Items(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, items)
}

func (h *Handler) priceHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidParams, "item id must be an integer")
		return
	}
	days, ok := h.intQuery(c, "days", query.DefaultHistoryDays)
	if !ok {
		return
	}

	history, err := h.service.PriceHistory(c.Request.Context(), id, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, history)
}

func (h *Handler) marketTrends(c *gin.Context) {
	params := query.TrendParams{}

	if side := c.Query("side"); side != "" {
		parsed, err := domain.ParseSide(side)
		if err != nil {
			respondError(c, http.StatusBadRequest, codeInvalidParams, "side must be \"ask\" or \"bid\"")
			return
		}
		params.Side = parsed
	}
	if hours, ok := h.intQuery(c, "bucket_hours", 0); !ok {
		return
	} else if hours > 0 {
		params.Bucket = time.Duration(hours) * time.Hour
	}
	if days, ok := h.intQuery(c, "days", 0); !ok {
		return
	} else if days > 0 {
		params.Days = days
	}
	if raw := c.Query("ma"); raw != "" {
		windows, err := parseWindows(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, codeInvalidParams, err.Error())
			return
		}
		params.MAWindows = windows
	}

	candles, err := h.service.Trend(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, candles)
}

func (h *Handler) marketStatistics(c *gin.Context) {
	params := query.RankingParams{}

	if hours, ok := h.intQuery(c, "long_hours", 0); !ok {
		return
	} else if hours > 0 {
		params.Long = time.Duration(hours) * time.Hour
	}
	if hours, ok := h.intQuery(c, "short_hours", 0); !ok {
		return
	} else if hours > 0 {
		params.Short = time.Duration(hours) * time.Hour
	}

	rankings, err := h.service.ChangeRankings(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, rankings)
}

// intQuery parses an optional positive integer query parameter. On a
// malformed value it writes the error response and returns ok=false.
func (h *Handler) intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respondError(c, http.StatusBadRequest, codeInvalidParams, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

func parseWindows(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	windows := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return nil, errors.New("ma must be a comma-separated list of positive integers")
		}
		windows = append(windows, n)
	}
	return windows, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidParams):
		respondError(c, http.StatusBadRequest, codeInvalidParams, err.Error())
	case errors.Is(err, query.ErrItemNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, "item not found")
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
