package loader

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/user/video-stats-bot/internal/models"
	"github.com/user/video-stats-bot/internal/repository"
	"gorm.io/gorm"
)

// Service - разовый импорт статистики видео из JSON-файла в БД
type Service struct {
	repo *repository.Repository
}

// NewService создаёт сервис импорта
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// flexString - строка, которая в JSON может приходить и числом
// (creator_id в выгрузках встречается в обоих видах)
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexTime - временная метка в одном из типовых форматов выгрузки
type flexTime time.Time

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("неизвестный формат времени: %q", v)
}

// videoRecord - запись видео во входном JSON
type videoRecord struct {
	ID             string           `json:"id"`
	CreatorID      flexString       `json:"creator_id"`
	VideoCreatedAt flexTime         `json:"video_created_at"`
	ViewsCount     int64            `json:"views_count"`
	LikesCount     int64            `json:"likes_count"`
	CommentsCount  int64            `json:"comments_count"`
	ReportsCount   int64            `json:"reports_count"`
	Snapshots      []snapshotRecord `json:"snapshots"`
}

// snapshotRecord - запись снапшота во входном JSON
type snapshotRecord struct {
	ID                 string   `json:"id"`
	CreatedAt          flexTime `json:"created_at"`
	ViewsCount         int64    `json:"views_count"`
	LikesCount         int64    `json:"likes_count"`
	CommentsCount      int64    `json:"comments_count"`
	ReportsCount       int64    `json:"reports_count"`
	DeltaViewsCount    int64    `json:"delta_views_count"`
	DeltaLikesCount    int64    `json:"delta_likes_count"`
	DeltaCommentsCount int64    `json:"delta_comments_count"`
	DeltaReportsCount  int64    `json:"delta_reports_count"`
}

// LoadFile импортирует видео и снапшоты из JSON-файла.
// Формат: массив видео либо объект {"videos": [...]}.
// Весь импорт идёт в одной транзакции с откатом при ошибке;
// уже существующие id молча пропускаются, никогда не обновляются
func (s *Service) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения %s: %w", path, err)
	}

	videos, err := parseVideos(data)
	if err != nil {
		return err
	}

	log.Printf("[Импорт] Найдено %d видео, начинаем вставку...", len(videos))

	var snapshots int
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		for i := range videos {
			v := &videos[i]
			video := models.Video{
				ID:             v.ID,
				CreatorID:      string(v.CreatorID),
				VideoCreatedAt: time.Time(v.VideoCreatedAt),
				ViewsCount:     v.ViewsCount,
				LikesCount:     v.LikesCount,
				CommentsCount:  v.CommentsCount,
				ReportsCount:   v.ReportsCount,
			}
			if err := s.repo.InsertVideoIgnoreConflict(tx, &video); err != nil {
				return fmt.Errorf("ошибка вставки видео %s: %w", v.ID, err)
			}

			for j := range v.Snapshots {
				snap := &v.Snapshots[j]
				snapshot := models.VideoSnapshot{
					ID:                 snap.ID,
					VideoID:            v.ID,
					CreatedAt:          time.Time(snap.CreatedAt),
					ViewsCount:         snap.ViewsCount,
					LikesCount:         snap.LikesCount,
					CommentsCount:      snap.CommentsCount,
					ReportsCount:       snap.ReportsCount,
					DeltaViewsCount:    snap.DeltaViewsCount,
					DeltaLikesCount:    snap.DeltaLikesCount,
					DeltaCommentsCount: snap.DeltaCommentsCount,
					DeltaReportsCount:  snap.DeltaReportsCount,
				}
				if err := s.repo.InsertSnapshotIgnoreConflict(tx, &snapshot); err != nil {
					return fmt.Errorf("ошибка вставки снапшота %s: %w", snap.ID, err)
				}
				snapshots++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[Импорт] Загружено %d видео и %d снапшотов", len(videos), snapshots)
	return nil
}

// parseVideos разбирает входной JSON: массив или объект с ключом "videos"
func parseVideos(data []byte) ([]videoRecord, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var videos []videoRecord
		if err := json.Unmarshal(data, &videos); err != nil {
			return nil, fmt.Errorf("ошибка разбора JSON: %w", err)
		}
		return videos, nil
	}

	var wrapper struct {
		Videos []videoRecord `json:"videos"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("ошибка разбора JSON: %w", err)
	}
	if wrapper.Videos == nil {
		return nil, fmt.Errorf("неизвестный формат JSON: ожидается массив или объект с ключом \"videos\"")
	}
	return wrapper.Videos, nil
}
