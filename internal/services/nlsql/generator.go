package nlsql

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// fallbackQuery - безопасная заглушка: вызывающий всегда получает число
const fallbackQuery = "SELECT 0;"

// promptTemplate - единый промпт генератора: схема обеих таблиц, правила
// и рабочие примеры. Вопрос пользователя подставляется в конец как есть
const promptTemplate = `You are a PostgreSQL expert. Generate SQL queries based on the schema below.

TABLES:
1. videos - final video statistics
   Columns: id, creator_id, video_created_at, views_count, likes_count, comments_count, reports_count
2. video_snapshots - hourly snapshots with deltas
   Columns: id, video_id, views_count, likes_count, comments_count, reports_count,
            delta_views_count, delta_likes_count, delta_comments_count, delta_reports_count, created_at

IMPORTANT EXAMPLES:
Question: "Сколько в среднем комментариев на видео?"
SQL: SELECT COALESCE(ROUND(AVG(comments_count)), 0) FROM videos;

Question: "Сколько видео имеют больше лайков чем просмотров?"
SQL: SELECT COUNT(*) FROM videos WHERE likes_count > views_count;

Question: "Какой день ноября был самым активным для просмотров?"
SQL: SELECT EXTRACT(DAY FROM created_at)::integer FROM video_snapshots WHERE created_at >= '2025-11-01' AND created_at < '2025-12-01' GROUP BY EXTRACT(DAY FROM created_at) ORDER BY SUM(delta_views_count) DESC LIMIT 1;

RULES:
1. Return ONLY the SQL query, no explanations
2. Query MUST start with SELECT
3. Always use table prefixes when joining: videos.likes_count NOT likes_count
4. To join tables: video_snapshots.video_id = videos.id
5. For November 2025 dates: created_at >= '2025-11-01' AND created_at < '2025-12-01'
6. Use COALESCE to handle NULL: COALESCE(SUM(column), 0)
7. For averages: COALESCE(ROUND(AVG(column)), 0)

QUESTION: %s

SQL:`

// Completer - клиент генеративной модели
type Completer interface {
	IsEnabled() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator - AI-генератор SQL для вопросов, не подошедших ни под один шаблон
type Generator struct {
	client Completer
}

// NewGenerator создаёт генератор поверх клиента модели
func NewGenerator(client Completer) *Generator {
	return &Generator{client: client}
}

// Generate строит промпт, вызывает модель и приводит ответ к одному
// выполнимому SELECT. Любая ошибка (сеть, квота, ответ без SELECT)
// логируется и заменяется запросом-заглушкой
func (g *Generator) Generate(ctx context.Context, question string) string {
	raw, err := g.client.Complete(ctx, fmt.Sprintf(promptTemplate, question))
	if err != nil {
		log.Printf("[AI] Ошибка генерации SQL: %v", err)
		return fallbackQuery
	}

	sql, ok := SanitizeSQL(raw)
	if !ok {
		log.Printf("[AI] В ответе модели нет SELECT: %q", raw)
		return fallbackQuery
	}
	return sql
}

var (
	codeFenceRe     = regexp.MustCompile("```(?:sql)?")
	selectRe        = regexp.MustCompile(`(?i)select`)
	bareTimestampRe = regexp.MustCompile(`'(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2})'`)
	bareDateRe      = regexp.MustCompile(`'(\d{4}-\d{2}-\d{2})'`)
)

// SanitizeSQL приводит текст модели к одному SELECT-выражению:
// срезает маркдаун-ограждения, отбрасывает всё до первого SELECT
// (модели любят предварять запрос комментарием), обрезает по первому ';'
// или переводу строки, добавляет ';' и нормализует литералы дат:
// голая дата становится полуночью UTC, время без зоны получает '+00'.
// false - если SELECT в ответе не нашёлся
func SanitizeSQL(raw string) (string, bool) {
	s := codeFenceRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)

	loc := selectRe.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	s = s[loc[0]:]

	if i := strings.Index(s, ";"); i != -1 {
		s = s[:i]
	} else if i := strings.Index(s, "\n"); i != -1 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	s = bareTimestampRe.ReplaceAllString(s, "'${1}+00'")
	s = bareDateRe.ReplaceAllString(s, "'${1} 00:00:00+00'")

	return s + ";", true
}
