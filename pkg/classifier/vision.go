package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lenscraft/optibulk/pkg/utils"
)

// VisionConfig — настройки vision-стратегии классификации.
type VisionConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`  // Для OpenAI-совместимых провайдеров
	APIKey   string `yaml:"api_key"`   // Поддерживает ${VAR}
	Model    string `yaml:"model"`     // Имя vision-модели
	Timeout  string `yaml:"timeout"`   // Таймаут одного запроса (например, "60s")
	MaxWidth int    `yaml:"max_width"` // Ресайз перед base64 (экономия токенов)
}

// VisionStrategy классифицирует изображение через OpenAI-совместимую
// vision-модель.
//
// Изображение даунсемплится (pkg/utils.ResizeImage), кодируется в base64
// data-uri и отправляется вместе с текстовым промптом, перечисляющим
// закрытое множество категорий. Ответ модели нормализуется через Normalize:
// что бы модель ни вернула, наружу уходит валидная категория.
//
// Ошибки сети/модели возвращаются наверх — вызывающая сторона делает
// fallback на KeywordEngine и не роняет батч.
type VisionStrategy struct {
	api      *openai.Client
	model    string
	timeout  time.Duration
	maxWidth int
}

var _ Strategy = (*VisionStrategy)(nil)

// NewVisionStrategy создаёт стратегию из конфигурации.
func NewVisionStrategy(cfg VisionConfig) (*VisionStrategy, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classifier.vision.api_key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("classifier.vision.model is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid classifier.vision.timeout format: %w", err)
		}
		timeout = d
	}
	maxWidth := cfg.MaxWidth
	if maxWidth == 0 {
		maxWidth = 512
	}

	return &VisionStrategy{
		api:      openai.NewClientWithConfig(apiCfg),
		model:    cfg.Model,
		timeout:  timeout,
		maxWidth: maxWidth,
	}, nil
}

// Classify отправляет изображение vision-модели и возвращает категорию.
func (v *VisionStrategy) Classify(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data for %s", filename)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	// Даунсемплинг перед отправкой: vision-модели не нужен оригинал.
	jpegData, err := utils.ResizeImage(data, v.maxWidth, 85)
	if err != nil {
		return "", fmt.Errorf("prepare image for vision: %w", err)
	}

	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)

	prompt := fmt.Sprintf(
		"You are classifying a product photo from an optical retail catalog. "+
			"Answer with exactly one of these categories and nothing else: %s.",
		strings.Join(Categories(), ", "))

	startTime := time.Now()

	resp, err := v.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens: 16,
	})
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in vision response")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)

	utils.Info("vision classification done",
		"file", filename,
		"answer", answer,
		"duration_ms", time.Since(startTime).Milliseconds())

	return matchCategory(answer), nil
}

// matchCategory сопоставляет свободный ответ модели категории множества.
//
// Сначала точное совпадение без учёта регистра, потом подстрочное.
// Иначе — дефолтная категория.
func matchCategory(answer string) string {
	lower := strings.ToLower(answer)

	for _, c := range Categories() {
		if strings.EqualFold(answer, c) {
			return c
		}
	}
	for _, c := range Categories() {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return CategoryFrames
}
