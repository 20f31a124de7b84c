package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
	"github.com/aefremenko24/quantifying-happiness/internal/service"
)

// EntryHandler maneja los registros diarios del usuario autenticado.
type EntryHandler struct {
	logger   *zap.Logger
	entrySvc *service.EntryService
}

func NewEntryHandler(logger *zap.Logger, entrySvc *service.EntryService) *EntryHandler {
	return &EntryHandler{
		logger:   logger,
		entrySvc: entrySvc,
	}
}

func (h *EntryHandler) userID(c *gin.Context) (string, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok || claims.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return "", false
	}
	return claims.UserID, true
}

func parseDay(c *gin.Context) (time.Time, bool) {
	day, err := time.Parse(domain.DayFormat, c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return day, true
}

// UpsertMetrics maneja PUT /entries/:day.
func (h *EntryHandler) UpsertMetrics(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}

	var req struct {
		Metrics domain.MetricVector `json:"metrics" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	entry, err := h.entrySvc.UpsertMetrics(c.Request.Context(), userID, day, req.Metrics)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMetrics) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("upsert metrics failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// RateDay maneja PATCH /entries/:day/score.
func (h *EntryHandler) RateDay(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}

	var req struct {
		Score *float64 `json:"satisfaction_score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Score == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	entry, err := h.entrySvc.RateDay(c.Request.Context(), userID, day, *req.Score)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScore):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		default:
			h.logger.Error("rate day failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rate day"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// GetDay maneja GET /entries/:day.
func (h *EntryHandler) GetDay(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}

	entry, err := h.entrySvc.GetDay(c.Request.Context(), userID, day)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.logger.Error("get day failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// ListDays maneja GET /entries.
func (h *EntryHandler) ListDays(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	entries, err := h.entrySvc.ListDays(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list days failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// DeleteDay maneja DELETE /entries/:day.
func (h *EntryHandler) DeleteDay(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}

	if err := h.entrySvc.DeleteDay(c.Request.Context(), userID, day); err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.logger.Error("delete day failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete entry"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SimilarDays maneja GET /entries/:day/similar.
func (h *EntryHandler) SimilarDays(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}

	k := 5
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid k"})
			return
		}
		k = parsed
	}

	entries, err := h.entrySvc.SimilarDays(c.Request.Context(), userID, day, k)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.logger.Error("similar days failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search similar days"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ImportCSV maneja POST /entries/import con el CSV en el cuerpo.
func (h *EntryHandler) ImportCSV(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	rows, err := service.ParseEntriesCSV(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.entrySvc.ImportCSV(c.Request.Context(), userID, rows)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMetrics) || errors.Is(err, service.ErrInvalidScore) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "imported": imported})
			return
		}
		h.logger.Error("csv import failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not import csv", "imported": imported})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": imported})
}
