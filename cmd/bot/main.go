package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/user/video-stats-bot/internal/bot"
	"github.com/user/video-stats-bot/internal/config"
	"github.com/user/video-stats-bot/internal/handlers"
	"github.com/user/video-stats-bot/internal/middleware"
	"github.com/user/video-stats-bot/internal/repository"
	"github.com/user/video-stats-bot/internal/services/ai"
	"github.com/user/video-stats-bot/internal/services/nlsql"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Подключение к БД
	db, err := repository.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}

	// Инициализация репозитория
	repo := repository.NewRepository(db)

	// Инициализация сервисов
	aiClient := ai.NewClient(cfg.AI.Token, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.MaxTokens)
	generator := nlsql.NewGenerator(aiClient)
	pipeline := nlsql.NewService(repo, generator)

	// Heartbeat - каждый час пишем в лог размер данных и счётчики пайплайна
	c := cron.New(cron.WithLocation(time.UTC))
	_, err = c.AddFunc("0 * * * *", func() {
		videos, vErr := repo.CountVideos()
		snapshots, sErr := repo.CountSnapshots()
		if vErr != nil || sErr != nil {
			log.Printf("[Heartbeat] Ошибка подсчёта строк: videos=%v snapshots=%v", vErr, sErr)
			return
		}
		stats := pipeline.Statistics()
		log.Printf("[Heartbeat] videos=%d snapshots=%d вопросов=%d по_шаблону=%d через_AI=%d",
			videos, snapshots, stats.Questions, stats.PatternMatched, stats.Fallbacks)
	})
	if err != nil {
		log.Fatalf("Ошибка добавления cron-задачи: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Telegram-бот, если задан токен
	if cfg.Telegram.Token != "" {
		tgClient := bot.NewClient(cfg.Telegram.Token, cfg.Telegram.PollTimeout)
		b := bot.New(tgClient, pipeline)
		go func() {
			if err := b.Run(context.Background()); err != nil {
				log.Printf("[Bot] Бот остановлен: %v", err)
			}
		}()
	} else {
		log.Println("[Bot] TELEGRAM_BOT_TOKEN не задан, Telegram-бот отключён")
	}

	// Инициализация HTTP-сервера
	router := gin.Default()
	router.Use(middleware.CORS())

	h := handlers.NewHandler(pipeline, repo)

	api := router.Group("/api")
	{
		api.POST("/ask", h.AskQuestion)
		api.GET("/health", h.Health)
		api.GET("/stats", h.GetStats)
	}

	// Запуск сервера
	log.Printf("Сервер запущен на порту %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
