package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client - клиент Telegram Bot API (long polling)
type Client struct {
	httpClient  *http.Client
	baseURL     string
	pollTimeout int // секунды ожидания getUpdates
}

// NewClient создаёт клиент Telegram Bot API
func NewClient(token string, pollTimeout int) *Client {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Client{
		// Таймаут HTTP должен превышать таймаут long polling
		httpClient:  &http.Client{Timeout: time.Duration(pollTimeout+10) * time.Second},
		baseURL:     "https://api.telegram.org/bot" + token,
		pollTimeout: pollTimeout,
	}
}

// Chat - чат Telegram
type Chat struct {
	ID int64 `json:"id"`
}

// Message - входящее сообщение
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

// Update - обновление от getUpdates
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// apiResponse - обёртка ответа Telegram Bot API
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// GetUpdates забирает очередные обновления (long polling).
// offset - update_id, начиная с которого запрашивать
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := url.Values{}
	params.Set("timeout", strconv.Itoa(c.pollTimeout))
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/getUpdates?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	if !api.OK {
		return nil, fmt.Errorf("ошибка Telegram API: %s", api.Description)
	}

	var updates []Update
	if err := json.Unmarshal(api.Result, &updates); err != nil {
		return nil, fmt.Errorf("ошибка парсинга обновлений: %w", err)
	}
	return updates, nil
}

// SendMessage отправляет текстовое сообщение в чат
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации сообщения: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса sendMessage: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	if !api.OK {
		return fmt.Errorf("ошибка Telegram API: %s", api.Description)
	}
	return nil
}
