// Package config читает конфигурацию пайплайна из YAML.
//
// Файл поддерживает подстановку переменных окружения (${VAR}),
// секреты (токен API, ключи S3) в config.yaml не хранятся.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lenscraft/optibulk/pkg/classifier"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Gallery         GalleryConfig    `yaml:"gallery"`
	S3              S3Config         `yaml:"s3"`
	Analyzer        AnalyzerConfig   `yaml:"analyzer"`
	Classifier      ClassifierConfig `yaml:"classifier"`
	ImageProcessing ImageProcConfig  `yaml:"image_processing"`
	History         HistoryConfig    `yaml:"history"`
	App             AppSpecific      `yaml:"app"`
}

// GalleryConfig — настройки клиента продуктового API.
type GalleryConfig struct {
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`          // Поддерживает ${VAR}
	RateLimit     int    `yaml:"rate_limit"`     // Запросов в минуту
	BurstLimit    int    `yaml:"burst_limit"`    // Burst для rate limiter
	RetryAttempts int    `yaml:"retry_attempts"` // Количество retry попыток
	Timeout       string `yaml:"timeout"`        // Timeout для HTTP запросов (например, "30s")
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *GalleryConfig) GetDefaults() GalleryConfig {
	result := *c // Копируем текущие значения

	if result.RateLimit == 0 {
		result.RateLimit = 60 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 5
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.Timeout == "" {
		result.Timeout = "60s"
	}

	return result
}

// S3Config — настройки объектного хранилища (источник изображений).
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// AnalyzerConfig — настройки анализа изображений.
type AnalyzerConfig struct {
	Extractor   string `yaml:"extractor"`    // "histogram" (дефолт) или "kmeans"
	PaletteSize int    `yaml:"palette_size"` // Количество цветов в палитре
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *AnalyzerConfig) GetDefaults() AnalyzerConfig {
	result := *c

	if result.Extractor == "" {
		result.Extractor = "histogram"
	}
	if result.PaletteSize == 0 {
		result.PaletteSize = 5
	}

	return result
}

// ClassifierConfig — настройки классификатора категорий.
type ClassifierConfig struct {
	Rules  []classifier.Rule       `yaml:"rules"` // Пусто = дефолтная таблица ключевых слов
	Vision classifier.VisionConfig `yaml:"vision"`
}

// ImageProcConfig — настройки обработки изображений.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// HistoryConfig — настройки журнала загрузок (sqlite).
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Путь к файлу БД
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *HistoryConfig) GetDefaults() HistoryConfig {
	result := *c

	if result.Path == "" {
		result.Path = "optibulk-history.db"
	}

	return result
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug bool `yaml:"debug"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Gallery.BaseURL == "" {
		return fmt.Errorf("gallery.base_url is required")
	}
	switch c.Analyzer.Extractor {
	case "", "histogram", "kmeans":
	default:
		return fmt.Errorf("analyzer.extractor must be 'histogram' or 'kmeans', got '%s'", c.Analyzer.Extractor)
	}
	for _, rule := range c.Classifier.Rules {
		if !classifier.IsValid(rule.Category) {
			return fmt.Errorf("classifier rule category '%s' is not in the category set", rule.Category)
		}
	}
	return nil
}
