package bot

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"
)

// startMessage - ответ на /start с примерами вопросов
const startMessage = `Привет! Я — бот для аналитики видео-статистики.
Просто задавай любой вопрос на русском — отвечу одним числом.

Примеры вопросов:

Основные:
• Сколько всего видео есть в системе?
• Сколько видео у креатора с id aca1061a9d324ecf8c3fa2bb32d7be63 вышло с 1 ноября 2025 по 5 ноября 2025 включительно?
• Сколько видео набрало больше 100000 просмотров за всё время?
• На сколько просмотров в сумме выросли все видео 28 ноября 2025?
• Сколько разных видео получали новые просмотры 27 ноября 2025?

Дополнительные:
• Сколько видео набрало больше 1000 просмотров?
• На сколько просмотров выросли все видео 26 ноября 2025?
• Сколько различных видео получали новые просмотры 28 ноября 2025?
• Сколько видео получило лайки?
• Сколько в среднем комментариев на видео?

Как задавать вопросы:
• Можно менять даты (1-5 ноября, 26-28 ноября и т.д.)
• Можно менять ID креаторов
• Можно менять числа просмотров (1000, 10000, 100000)
• Всегда получаешь один числовой ответ!`

// Answerer отвечает на вопрос одним числом
type Answerer interface {
	Ask(ctx context.Context, question string) int64
}

// Bot - Telegram-бот: long polling + ответы на вопросы
type Bot struct {
	client   *Client
	pipeline Answerer
}

// New создаёт бота поверх клиента Telegram и пайплайна вопросов
func New(client *Client, pipeline Answerer) *Bot {
	return &Bot{client: client, pipeline: pipeline}
}

// Run запускает цикл long polling до отмены контекста.
// Каждое сообщение обрабатывается в своей горутине, чтобы долгие
// обращения к БД и модели не блокировали приём следующих сообщений
func (b *Bot) Run(ctx context.Context) error {
	log.Println("[Bot] Бот запущен, ожидаем сообщения...")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Bot] Ошибка getUpdates: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage отвечает на одно сообщение.
// Контракт интерфейса: пользователь всегда получает число,
// любой сбой превращается в "0"
func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Bot] Паника при обработке сообщения: %v", r)
			b.reply(ctx, msg.Chat.ID, "0")
		}
	}()

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/start") {
		b.reply(ctx, msg.Chat.ID, startMessage)
		return
	}

	answer := b.pipeline.Ask(ctx, text)
	b.reply(ctx, msg.Chat.ID, strconv.FormatInt(answer, 10))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.client.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("[Bot] Ошибка отправки ответа: %v", err)
	}
}
