package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// Hugging Face Inference Router (OpenAI-совместимый)
	DefaultBaseURL = "https://router.huggingface.co/v1"

	// Модель по умолчанию - маленькая и быстрая, для генерации SQL хватает
	DefaultModel = "google/gemma-2-2b-it"

	// Низкая температура для детерминированного SQL
	defaultTemperature = 0.1
)

// Client - клиент для Hugging Face Inference API
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	enabled    bool
}

// NewClient создаёт новый клиент Hugging Face
func NewClient(apiKey, baseURL, model string, maxTokens int) *Client {
	if apiKey == "" {
		log.Println("[AI] HF_TOKEN не указан, AI клиент отключён")
		return &Client{enabled: false}
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}

	log.Printf("[AI] Клиент Hugging Face инициализирован, модель: %s, max_tokens: %d", model, maxTokens)

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		maxTokens:  maxTokens,
		enabled:    true,
	}
}

// IsEnabled возвращает true если клиент активен
func (c *Client) IsEnabled() bool {
	return c.enabled && c.apiKey != ""
}

// ChatMessage - сообщение в чате
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest - запрос к chat-completions API
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

// ChatResponse - ответ chat-completions API
type ChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete отправляет одноходовый запрос и возвращает текст ответа модели
func (c *Client) Complete(ctx context.Context, userPrompt string) (string, error) {
	if !c.IsEnabled() {
		return "", fmt.Errorf("AI клиент не инициализирован")
	}

	req := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: defaultTemperature,
		Stream:      false,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ошибка API (статус %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("пустой ответ от модели")
	}

	return chatResp.Choices[0].Message.Content, nil
}
