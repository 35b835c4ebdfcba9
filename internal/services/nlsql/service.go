package nlsql

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Executor выполняет готовый SQL и возвращает скалярный результат.
// Контракт: никогда не возвращает ошибку, сбой - это 0
type Executor interface {
	ScalarInt(ctx context.Context, query string, args ...interface{}) int64
}

// Stats - счётчики работы пайплайна
type Stats struct {
	Questions      int64 `json:"questions"`
	PatternMatched int64 `json:"pattern_matched"`
	Fallbacks      int64 `json:"fallbacks"`
}

// Service - пайплайн "вопрос -> SQL -> число".
// Создаётся один раз на процесс, безопасен для конкурентных вызовов:
// состояния между вопросами нет, только атомарные счётчики
type Service struct {
	executor  Executor
	generator *Generator
	limiter   *rate.Limiter

	questions      atomic.Int64
	patternMatched atomic.Int64
	fallbacks      atomic.Int64
}

// NewService создаёт пайплайн поверх исполнителя и AI-генератора
func NewService(executor Executor, generator *Generator) *Service {
	return &Service{
		executor:  executor,
		generator: generator,
		// Генерация - самая дорогая часть пайплайна, ограничиваем частоту
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Ask отвечает на вопрос одним числом: шаблоны, затем AI-генератор,
// затем выполнение. Ошибку не возвращает никогда - любой сбой
// логируется и деградирует до 0
func (s *Service) Ask(ctx context.Context, question string) int64 {
	s.questions.Add(1)

	query := Resolve(question)
	if query != nil {
		s.patternMatched.Add(1)
	} else {
		s.fallbacks.Add(1)
		query = s.generate(ctx, question)
	}

	return s.executor.ScalarInt(ctx, query.SQL, query.Args...)
}

// generate вызывает AI-генератор с учётом лимита запросов к модели
func (s *Service) generate(ctx context.Context, question string) *Query {
	if err := s.limiter.Wait(ctx); err != nil {
		log.Printf("[NLSQL] Ожидание лимита запросов к модели прервано: %v", err)
		return &Query{SQL: fallbackQuery}
	}
	return &Query{SQL: s.generator.Generate(ctx, question)}
}

// Statistics возвращает снимок счётчиков пайплайна
func (s *Service) Statistics() Stats {
	return Stats{
		Questions:      s.questions.Load(),
		PatternMatched: s.patternMatched.Load(),
		Fallbacks:      s.fallbacks.Load(),
	}
}
