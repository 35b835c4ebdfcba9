package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/video-stats-bot/internal/repository"
	"github.com/user/video-stats-bot/internal/services/nlsql"
)

// Handler - обработчики HTTP API
type Handler struct {
	pipeline *nlsql.Service
	repo     *repository.Repository
}

// NewHandler создаёт новый обработчик
func NewHandler(pipeline *nlsql.Service, repo *repository.Repository) *Handler {
	return &Handler{
		pipeline: pipeline,
		repo:     repo,
	}
}

// AskQuestion отвечает на аналитический вопрос одним числом
func (h *Handler) AskQuestion(c *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуется поле question"})
		return
	}

	answer := h.pipeline.Ask(c.Request.Context(), req.Question)
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// Health - проверка живости
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStats возвращает счётчики пайплайна и размер данных
func (h *Handler) GetStats(c *gin.Context) {
	stats := h.pipeline.Statistics()

	videos, err := h.repo.CountVideos()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка подсчёта видео"})
		return
	}
	snapshots, err := h.repo.CountSnapshots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка подсчёта снапшотов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pipeline":  stats,
		"videos":    videos,
		"snapshots": snapshots,
	})
}
