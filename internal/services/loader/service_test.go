package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/video-stats-bot/internal/models"
	"github.com/user/video-stats-bot/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Video{}, &models.VideoSnapshot{}))
	return repository.NewRepository(db), db
}

func writeJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "videos.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleArray = `[
  {
    "id": "v1",
    "creator_id": "c1",
    "video_created_at": "2025-11-03T12:00:00Z",
    "views_count": 100,
    "likes_count": 10,
    "comments_count": 5,
    "reports_count": 0,
    "snapshots": [
      {
        "id": "s1",
        "created_at": "2025-11-03 13:00:00",
        "views_count": 100,
        "delta_views_count": 50,
        "delta_likes_count": -2
      }
    ]
  },
  {
    "id": "v2",
    "creator_id": 12345,
    "video_created_at": "2025-11-04",
    "views_count": 7
  }
]`

func TestLoadFileArrayFormat(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := NewService(repo)

	require.NoError(t, svc.LoadFile(writeJSON(t, sampleArray)))

	videos, err := repo.CountVideos()
	require.NoError(t, err)
	assert.Equal(t, int64(2), videos)

	snapshots, err := repo.CountSnapshots()
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshots)

	var v2 models.Video
	require.NoError(t, db.First(&v2, "id = ?", "v2").Error)
	// Числовой creator_id приводится к строке
	assert.Equal(t, "12345", v2.CreatorID)
	assert.Equal(t, time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC), v2.VideoCreatedAt.UTC())

	var s1 models.VideoSnapshot
	require.NoError(t, db.First(&s1, "id = ?", "s1").Error)
	assert.Equal(t, "v1", s1.VideoID)
	assert.Equal(t, int64(50), s1.DeltaViewsCount)
	assert.Equal(t, int64(-2), s1.DeltaLikesCount)
}

func TestLoadFileObjectFormat(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := NewService(repo)

	path := writeJSON(t, `{"videos": `+sampleArray+`}`)
	require.NoError(t, svc.LoadFile(path))

	videos, err := repo.CountVideos()
	require.NoError(t, err)
	assert.Equal(t, int64(2), videos)
}

func TestLoadFileIsIdempotent(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := NewService(repo)
	path := writeJSON(t, sampleArray)

	require.NoError(t, svc.LoadFile(path))
	require.NoError(t, svc.LoadFile(path))

	videos, err := repo.CountVideos()
	require.NoError(t, err)
	assert.Equal(t, int64(2), videos)

	// Повторный импорт не обновляет существующие строки
	var v1 models.Video
	require.NoError(t, db.First(&v1, "id = ?", "v1").Error)
	assert.Equal(t, int64(100), v1.ViewsCount)
}

func TestLoadFileUnknownFormat(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := NewService(repo)

	err := svc.LoadFile(writeJSON(t, `{"items": []}`))
	require.Error(t, err)
}

func TestLoadFileBadTimestampImportsNothing(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := NewService(repo)

	err := svc.LoadFile(writeJSON(t, `[
	  {"id": "v1", "creator_id": "c1", "video_created_at": "вчера вечером"}
	]`))
	require.Error(t, err)

	videos, countErr := repo.CountVideos()
	require.NoError(t, countErr)
	assert.Equal(t, int64(0), videos)
}

func TestLoadFileMissingFile(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := NewService(repo)
	require.Error(t, svc.LoadFile(filepath.Join(t.TempDir(), "нет.json")))
}
