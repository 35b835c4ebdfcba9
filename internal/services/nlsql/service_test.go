package nlsql

import (
	"context"
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

func seedVideo(t *testing.T, db *gorm.DB, id, creatorID string, createdAt time.Time, views int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Video{
		ID:             id,
		CreatorID:      creatorID,
		VideoCreatedAt: createdAt,
		ViewsCount:     views,
	}).Error)
}

func seedSnapshot(t *testing.T, db *gorm.DB, id, videoID string, createdAt time.Time, deltaViews int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.VideoSnapshot{
		ID:              id,
		VideoID:         videoID,
		CreatedAt:       createdAt,
		DeltaViewsCount: deltaViews,
	}).Error)
}

func newTestService(repo *repository.Repository, completer Completer) *Service {
	if completer == nil {
		completer = &stubCompleter{response: "SELECT 0"}
	}
	return NewService(repo, NewGenerator(completer))
}

func TestAskTotalVideos(t *testing.T) {
	repo, db := newTestRepo(t)
	now := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	seedVideo(t, db, "v1", "c1", now, 100)
	seedVideo(t, db, "v2", "c1", now, 200)
	seedVideo(t, db, "v3", "c2", now, 300)

	svc := newTestService(repo, nil)
	answer := svc.Ask(context.Background(), "Сколько всего видео есть в системе?")
	assert.Equal(t, int64(3), answer)
}

func TestAskCreatorVideosInRange(t *testing.T) {
	repo, db := newTestRepo(t)
	seedVideo(t, db, "v1", "x-creator", time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC), 10)
	seedVideo(t, db, "v2", "x-creator", time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC), 10)

	svc := newTestService(repo, nil)
	answer := svc.Ask(context.Background(), "Сколько видео у креатора с id x-creator вышло с 1 ноября 2025 по 5 ноября 2025 включительно?")
	assert.Equal(t, int64(1), answer)
}

func TestAskCreatorVideosRangeBoundaries(t *testing.T) {
	repo, db := newTestRepo(t)
	// Ровно на границах включительного диапазона
	seedVideo(t, db, "v1", "c", time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), 0)
	seedVideo(t, db, "v2", "c", time.Date(2025, time.November, 5, 23, 59, 59, 0, time.UTC), 0)
	// Сразу за верхней границей
	seedVideo(t, db, "v3", "c", time.Date(2025, time.November, 6, 0, 0, 0, 0, time.UTC), 0)

	svc := newTestService(repo, nil)
	answer := svc.Ask(context.Background(), "Сколько видео у креатора с id c вышло с 1 ноября 2025 по 5 ноября 2025 включительно?")
	assert.Equal(t, int64(2), answer)
}

func TestAskDeltaViewsSumOnDay(t *testing.T) {
	repo, db := newTestRepo(t)
	day := time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC)
	seedSnapshot(t, db, "s1", "v1", day.Add(10*time.Hour), 50)
	seedSnapshot(t, db, "s2", "v2", day.Add(12*time.Hour), -20)
	seedSnapshot(t, db, "s3", "v1", day.AddDate(0, 0, 1).Add(time.Hour), 100)

	svc := newTestService(repo, nil)
	answer := svc.Ask(context.Background(), "На сколько просмотров в сумме выросли все видео 28 ноября 2025?")
	assert.Equal(t, int64(30), answer)
}

func TestAskDeltaViewsDayBoundaries(t *testing.T) {
	repo, db := newTestRepo(t)
	// 23:59:59 того же дня входит, 00:00:00 следующего - нет
	seedSnapshot(t, db, "s1", "v1", time.Date(2025, time.November, 28, 23, 59, 59, 0, time.UTC), 7)
	seedSnapshot(t, db, "s2", "v1", time.Date(2025, time.November, 29, 0, 0, 0, 0, time.UTC), 100)

	svc := newTestService(repo, nil)
	answer := svc.Ask(context.Background(), "На сколько просмотров в сумме выросли все видео 28 ноября 2025?")
	assert.Equal(t, int64(7), answer)
}

func TestAskDeltaViewsSumEmptyDay(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := newTestService(repo, nil)
	// COALESCE превращает NULL-агрегат в 0
	answer := svc.Ask(context.Background(), "На сколько просмотров в сумме выросли все видео 1 ноября 2025?")
	assert.Equal(t, int64(0), answer)
}

func TestAskVideosWithGrowthOnDay(t *testing.T) {
	repo, db := newTestRepo(t)
	day := time.Date(2025, time.November, 27, 0, 0, 0, 0, time.UTC)
	seedSnapshot(t, db, "s1", "v1", day.Add(time.Hour), 5)
	seedSnapshot(t, db, "s2", "v1", day.Add(2*time.Hour), 3)
	seedSnapshot(t, db, "s3", "v2", day.Add(3*time.Hour), -1)
	seedSnapshot(t, db, "s4", "v3", day.Add(4*time.Hour), 8)

	svc := newTestService(repo, nil)
	answer := svc.Ask(context.Background(), "Сколько разных видео получали новые просмотры 27 ноября 2025?")
	assert.Equal(t, int64(2), answer)
}

func TestAskIsIdempotent(t *testing.T) {
	repo, db := newTestRepo(t)
	now := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	seedVideo(t, db, "v1", "c1", now, 100)
	seedVideo(t, db, "v2", "c2", now, 200)

	svc := newTestService(repo, nil)
	question := "Сколько всего видео есть в системе?"
	first := svc.Ask(context.Background(), question)
	second := svc.Ask(context.Background(), question)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(2), first)
}

func TestAskFallbackExecutesGeneratedSQL(t *testing.T) {
	repo, db := newTestRepo(t)
	now := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	seedVideo(t, db, "v1", "c1", now, 200000)
	seedVideo(t, db, "v2", "c1", now, 50)

	// Модель вернула запрос без точки с запятой - генератор её добавляет
	completer := &stubCompleter{response: "SELECT COUNT(*) FROM videos WHERE views_count > 100000"}
	svc := newTestService(repo, completer)

	answer := svc.Ask(context.Background(), "Это не похоже ни на один известный шаблон")
	assert.Equal(t, int64(1), answer)

	stats := svc.Statistics()
	assert.Equal(t, int64(1), stats.Fallbacks)
	assert.Equal(t, int64(0), stats.PatternMatched)
}

func TestAskFallbackOnGeneratorError(t *testing.T) {
	repo, _ := newTestRepo(t)
	completer := &stubCompleter{err: context.DeadlineExceeded}
	svc := newTestService(repo, completer)

	answer := svc.Ask(context.Background(), "Непонятный вопрос")
	assert.Equal(t, int64(0), answer)
}

func TestAskInvalidGeneratedSQLReturnsZero(t *testing.T) {
	repo, _ := newTestRepo(t)
	completer := &stubCompleter{response: "SELECT FROM WHERE общий бред"}
	svc := newTestService(repo, completer)

	// Исполнитель глотает ошибку выполнения и возвращает 0
	answer := svc.Ask(context.Background(), "Непонятный вопрос")
	assert.Equal(t, int64(0), answer)
}

func TestAskOnClosedDatabaseReturnsZero(t *testing.T) {
	repo, db := newTestRepo(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	svc := newTestService(repo, nil)
	answer := svc.Ask(context.Background(), "Сколько всего видео есть в системе?")
	assert.Equal(t, int64(0), answer)
}

func TestStatisticsCountsPatternMatches(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := newTestService(repo, nil)

	svc.Ask(context.Background(), "Сколько всего видео есть в системе?")
	svc.Ask(context.Background(), "Сколько видео получило лайки?")

	stats := svc.Statistics()
	assert.Equal(t, int64(2), stats.Questions)
	assert.Equal(t, int64(2), stats.PatternMatched)
	assert.Equal(t, int64(0), stats.Fallbacks)
}
