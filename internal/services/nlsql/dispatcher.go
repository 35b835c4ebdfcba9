package nlsql

import (
	"strings"
)

// Query - параметризованный SQL-запрос: плейсхолдеры вместо интерполяции,
// все извлечённые из вопроса значения передаются как аргументы
type Query struct {
	SQL  string
	Args []interface{}
}

// rule - пара (предикат+извлечение, шаблон SQL). resolve возвращает nil,
// если правило не подошло
type rule struct {
	name    string
	resolve func(q string) *Query
}

// ruleTable - упорядоченный список правил. Побеждает первое сработавшее,
// дальше правила не проверяются. Более специфичные правила стоят раньше
var ruleTable = []rule{
	{"total_videos", resolveTotalVideos},
	{"creator_videos_in_range", resolveCreatorVideosInRange},
	{"creator_active_days", resolveCreatorActiveDays},
	{"creators_above_threshold", resolveCreatorsAboveThreshold},
	{"views_above_threshold", resolveViewsAboveThreshold},
	{"delta_views_sum_on_day", resolveDeltaViewsSumOnDay},
	{"videos_with_growth_on_day", resolveVideosWithGrowthOnDay},
	{"snapshots_with_losses", resolveSnapshotsWithLosses},
	{"views_sum_for_month", resolveViewsSumForMonth},
	{"videos_with_likes", resolveVideosWithLikes},
	{"average_counter", resolveAverageCounter},
	{"likes_over_views", resolveLikesOverViews},
	{"most_active_day", resolveMostActiveDay},
}

// Resolve подбирает SQL по известным шаблонам вопросов.
// Вопрос приводится к нижнему регистру, правила проверяются по порядку.
// nil означает "шаблон не найден" - это не ошибка, вопрос уходит в AI-генератор
func Resolve(question string) *Query {
	q := strings.ToLower(question)
	for _, r := range ruleTable {
		if query := r.resolve(q); query != nil {
			return query
		}
	}
	return nil
}

// Сколько всего видео есть в системе?
func resolveTotalVideos(q string) *Query {
	if !strings.Contains(q, "сколько всего видео есть в системе") {
		return nil
	}
	return &Query{SQL: "SELECT COUNT(*) FROM videos"}
}

// Сколько видео у креатора с id X вышло с 1 ноября 2025 по 5 ноября 2025 включительно?
func resolveCreatorVideosInRange(q string) *Query {
	if !strings.Contains(q, "видео у креатора с id") {
		return nil
	}
	creatorID, ok := findCreatorID(q)
	if !ok {
		return nil
	}
	from, to, ok := findDayRange(q)
	if !ok {
		return nil
	}
	return &Query{
		SQL:  "SELECT COUNT(*) FROM videos WHERE creator_id = ? AND video_created_at >= ? AND video_created_at <= ?",
		Args: []interface{}{creatorID, from, to},
	}
}

// В скольких днях ноября креатор с id X публиковал видео?
func resolveCreatorActiveDays(q string) *Query {
	if !strings.Contains(q, "дней") {
		return nil
	}
	creatorID, ok := findCreatorID(q)
	if !ok {
		return nil
	}
	year, month, ok := findMonth(q)
	if !ok {
		return nil
	}
	return &Query{
		SQL: "SELECT COUNT(DISTINCT EXTRACT(DAY FROM video_created_at)) FROM videos " +
			"WHERE creator_id = ? AND EXTRACT(YEAR FROM video_created_at) = ? AND EXTRACT(MONTH FROM video_created_at) = ?",
		Args: []interface{}{creatorID, year, int(month)},
	}
}

// У скольких креаторов есть видео с больше чем N просмотров?
func resolveCreatorsAboveThreshold(q string) *Query {
	if !strings.Contains(q, "креаторов") || !strings.Contains(q, "просмотров") {
		return nil
	}
	threshold, ok := findThreshold(q)
	if !ok {
		return nil
	}
	return &Query{
		SQL:  "SELECT COUNT(DISTINCT creator_id) FROM videos WHERE views_count > ?",
		Args: []interface{}{threshold},
	}
}

// Сколько видео набрало больше N просмотров?
func resolveViewsAboveThreshold(q string) *Query {
	if !strings.Contains(q, "видео") || !strings.Contains(q, "просмотров") {
		return nil
	}
	threshold, ok := findThreshold(q)
	if !ok {
		return nil
	}
	return &Query{
		SQL:  "SELECT COUNT(*) FROM videos WHERE views_count > ?",
		Args: []interface{}{threshold},
	}
}

// На сколько просмотров в сумме выросли все видео 28 ноября 2025?
// Опционально: окно часов ("с 10:00 до 15:00") и/или креатор (join на videos)
func resolveDeltaViewsSumOnDay(q string) *Query {
	if !strings.Contains(q, "просмотров") || !strings.Contains(q, "выросли") {
		return nil
	}
	start, end, ok := findSingleDay(q)
	if !ok {
		return nil
	}
	if from, to, ok := findHourRange(q); ok {
		end = start.Add(to)
		start = start.Add(from)
	}
	if creatorID, ok := findCreatorID(q); ok {
		return &Query{
			SQL: "SELECT COALESCE(SUM(s.delta_views_count), 0) FROM video_snapshots s " +
				"JOIN videos v ON v.id = s.video_id " +
				"WHERE v.creator_id = ? AND s.created_at >= ? AND s.created_at < ?",
			Args: []interface{}{creatorID, start, end},
		}
	}
	return &Query{
		SQL:  "SELECT COALESCE(SUM(delta_views_count), 0) FROM video_snapshots WHERE created_at >= ? AND created_at < ?",
		Args: []interface{}{start, end},
	}
}

// Сколько разных видео получали новые просмотры 27 ноября 2025?
func resolveVideosWithGrowthOnDay(q string) *Query {
	if !strings.Contains(q, "разных видео") && !strings.Contains(q, "различных видео") {
		return nil
	}
	if !strings.Contains(q, "новые просмотры") {
		return nil
	}
	start, end, ok := findSingleDay(q)
	if !ok {
		return nil
	}
	return &Query{
		SQL:  "SELECT COUNT(DISTINCT video_id) FROM video_snapshots WHERE delta_views_count > 0 AND created_at >= ? AND created_at < ?",
		Args: []interface{}{start, end},
	}
}

// Сколько раз видео теряли просмотры за час?
func resolveSnapshotsWithLosses(q string) *Query {
	hasLossPhrase := strings.Contains(q, "теряли просмотры") || strings.Contains(q, "терял просмотры") ||
		(strings.Contains(q, "отрицательн") && strings.Contains(q, "просмотр"))
	if !hasLossPhrase {
		return nil
	}
	return &Query{SQL: "SELECT COUNT(*) FROM video_snapshots WHERE delta_views_count < 0"}
}

// Сколько просмотров набрали видео, вышедшие в ноябре 2025?
func resolveViewsSumForMonth(q string) *Query {
	if !strings.Contains(q, "просмотров") {
		return nil
	}
	published := strings.Contains(q, "вышедшие") || strings.Contains(q, "вышли") || strings.Contains(q, "опубликован")
	if !published {
		return nil
	}
	year, month, ok := findMonth(q)
	if !ok {
		return nil
	}
	return &Query{
		SQL: "SELECT COALESCE(SUM(views_count), 0) FROM videos " +
			"WHERE EXTRACT(YEAR FROM video_created_at) = ? AND EXTRACT(MONTH FROM video_created_at) = ?",
		Args: []interface{}{year, int(month)},
	}
}

// Сколько видео получило лайки?
func resolveVideosWithLikes(q string) *Query {
	phrases := []string{
		"сколько видео получило лайки",
		"сколько видео с лайками",
		"сколько видео имеет лайки",
		"лайки видео",
		"видео с лайками",
	}
	for _, phrase := range phrases {
		if strings.Contains(q, phrase) {
			return &Query{SQL: "SELECT COUNT(*) FROM videos WHERE likes_count > 0"}
		}
	}
	return nil
}

// Сколько в среднем комментариев/лайков/просмотров на видео?
func resolveAverageCounter(q string) *Query {
	if !strings.Contains(q, "сколько в среднем") {
		return nil
	}
	var column string
	switch {
	case strings.Contains(q, "комментар"):
		column = "comments_count"
	case strings.Contains(q, "лайк"):
		column = "likes_count"
	case strings.Contains(q, "просмотр"):
		column = "views_count"
	default:
		return nil
	}
	return &Query{SQL: "SELECT COALESCE(ROUND(AVG(" + column + ")), 0) FROM videos"}
}

// Сколько видео имеют больше лайков чем просмотров?
func resolveLikesOverViews(q string) *Query {
	if !strings.Contains(q, "больше лайков чем просмотров") {
		return nil
	}
	return &Query{SQL: "SELECT COUNT(*) FROM videos WHERE likes_count > views_count"}
}

// Какой день ноября был самым активным для просмотров?
// При равных суммах дельт побеждает более ранний день
func resolveMostActiveDay(q string) *Query {
	if !strings.Contains(q, "какой день") {
		return nil
	}
	if !strings.Contains(q, "активн") && !strings.Contains(q, "больше всего") {
		return nil
	}
	if !strings.Contains(q, "просмотр") {
		return nil
	}
	year, month, ok := findMonth(q)
	if !ok {
		return nil
	}
	start, next := monthWindow(year, month)
	return &Query{
		SQL: "SELECT EXTRACT(DAY FROM created_at)::integer FROM video_snapshots " +
			"WHERE created_at >= ? AND created_at < ? " +
			"GROUP BY EXTRACT(DAY FROM created_at) " +
			"ORDER BY SUM(delta_views_count) DESC, EXTRACT(DAY FROM created_at) ASC LIMIT 1",
		Args: []interface{}{start, next},
	}
}
