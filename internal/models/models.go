package models

import (
	"time"
)

// Video - итоговая статистика по видео (одна строка на видео)
type Video struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	CreatorID      string    `gorm:"size:64;index;not null" json:"creator_id"`
	VideoCreatedAt time.Time `gorm:"not null;index" json:"video_created_at"` // дата публикации видео
	ViewsCount     int64     `gorm:"not null;default:0" json:"views_count"`
	LikesCount     int64     `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount  int64     `gorm:"not null;default:0" json:"comments_count"`
	ReportsCount   int64     `gorm:"not null;default:0" json:"reports_count"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Snapshots []VideoSnapshot `gorm:"foreignKey:VideoID" json:"snapshots,omitempty"`
}

// TableName задаёт имя таблицы для Video
func (Video) TableName() string {
	return "videos"
}

// VideoSnapshot - периодический замер статистики видео с дельтами
// Дельта может быть отрицательной (коррекция или снятие просмотров)
type VideoSnapshot struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	VideoID   string    `gorm:"size:64;index;not null" json:"video_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"` // момент замера

	// Абсолютные счётчики на момент замера
	ViewsCount    int64 `gorm:"not null;default:0" json:"views_count"`
	LikesCount    int64 `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int64 `gorm:"not null;default:0" json:"comments_count"`
	ReportsCount  int64 `gorm:"not null;default:0" json:"reports_count"`

	// Изменения с прошлого замера
	DeltaViewsCount    int64 `gorm:"not null;default:0" json:"delta_views_count"`
	DeltaLikesCount    int64 `gorm:"not null;default:0" json:"delta_likes_count"`
	DeltaCommentsCount int64 `gorm:"not null;default:0" json:"delta_comments_count"`
	DeltaReportsCount  int64 `gorm:"not null;default:0" json:"delta_reports_count"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName задаёт имя таблицы для VideoSnapshot
func (VideoSnapshot) TableName() string {
	return "video_snapshots"
}
