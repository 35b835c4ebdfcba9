package main

import (
	"flag"
	"log"

	"github.com/user/video-stats-bot/internal/config"
	"github.com/user/video-stats-bot/internal/repository"
	"github.com/user/video-stats-bot/internal/services/loader"
)

func main() {
	path := flag.String("file", "data/videos.json", "путь к JSON-файлу с видео")
	flag.Parse()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := repository.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}

	repo := repository.NewRepository(db)
	svc := loader.NewService(repo)

	if err := svc.LoadFile(*path); err != nil {
		log.Fatalf("Ошибка импорта: %v", err)
	}
}
