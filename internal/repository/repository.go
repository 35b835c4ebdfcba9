package repository

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/user/video-stats-bot/internal/config"
	"github.com/user/video-stats-bot/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// QueryTimeout - предельное время выполнения одного SELECT
const QueryTimeout = 15 * time.Second

// Repository - доступ к БД со статистикой видео
type Repository struct {
	db *gorm.DB
}

// NewPostgresDB создаёт подключение к PostgreSQL
func NewPostgresDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Автомиграция моделей
	if err := db.AutoMigrate(
		&models.Video{},
		&models.VideoSnapshot{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// NewRepository создаёт новый репозиторий
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// === Выполнение аналитических запросов ===

// ScalarInt выполняет SELECT и возвращает первую колонку первой строки как целое.
// Любая ошибка (синтаксис, соединение, приведение типа, пустой результат)
// логируется и превращается в 0 - вызывающий всегда получает число.
func (r *Repository) ScalarInt(ctx context.Context, query string, args ...interface{}) int64 {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	row := r.db.WithContext(ctx).Raw(query, args...).Row()
	if row == nil {
		log.Printf("[SQL] Запрос не вернул строку: %s", query)
		return 0
	}

	var value interface{}
	if err := row.Scan(&value); err != nil {
		log.Printf("[SQL] Ошибка выполнения запроса: %v (запрос: %s)", err, query)
		return 0
	}

	n, err := toInt64(value)
	if err != nil {
		log.Printf("[SQL] Ошибка приведения результата к числу: %v (запрос: %s)", err, query)
		return 0
	}
	return n
}

// toInt64 приводит скалярный результат запроса к int64
func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		// NULL-агрегат без COALESCE
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseNumeric(string(v))
	case string:
		return parseNumeric(v)
	default:
		return 0, fmt.Errorf("неожиданный тип скаляра %T", value)
	}
}

// parseNumeric разбирает числовой литерал (включая NUMERIC вида "12.00")
func parseNumeric(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// === Импорт данных ===

// InsertVideoIgnoreConflict вставляет видео, пропуская уже существующие id
func (r *Repository) InsertVideoIgnoreConflict(tx *gorm.DB, video *models.Video) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(video).Error
}

// InsertSnapshotIgnoreConflict вставляет снапшот, пропуская уже существующие id
func (r *Repository) InsertSnapshotIgnoreConflict(tx *gorm.DB, snapshot *models.VideoSnapshot) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(snapshot).Error
}

// Transaction выполняет fn в одной транзакции с откатом при ошибке
func (r *Repository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// === Статистика для heartbeat ===

// CountVideos возвращает количество строк в videos
func (r *Repository) CountVideos() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Video{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CountSnapshots возвращает количество строк в video_snapshots
func (r *Repository) CountSnapshots() (int64, error) {
	var n int64
	if err := r.db.Model(&models.VideoSnapshot{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
