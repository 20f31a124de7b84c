package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
	"github.com/aefremenko24/quantifying-happiness/internal/engine"
	"github.com/aefremenko24/quantifying-happiness/internal/service"
)

// SuggestionHandler expone el motor de sugerencias.
type SuggestionHandler struct {
	logger        *zap.Logger
	suggestionSvc *service.SuggestionService
}

func NewSuggestionHandler(logger *zap.Logger, suggestionSvc *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{
		logger:        logger,
		suggestionSvc: suggestionSvc,
	}
}

// Suggest maneja POST /suggestions.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok || claims.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Day string `json:"day" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	day, err := time.Parse(domain.DayFormat, req.Day)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day, expected YYYY-MM-DD"})
		return
	}

	suggestion, err := h.suggestionSvc.SuggestForDay(c.Request.Context(), claims.UserID, day)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		case errors.Is(err, engine.ErrMissingScore),
			errors.Is(err, engine.ErrEmptyTrainingSet),
			errors.Is(err, engine.ErrUnfittedModel):
			// El motor no tiene con que trabajar: se degrada sin romper.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no suggestion available", "reason": err.Error()})
		default:
			h.logger.Error("suggestion failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute suggestion"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}
