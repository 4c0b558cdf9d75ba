// gallery-ping — диагностика доступности продуктового API.
//
// Проверяет сеть и валидность токена до запуска большого батча:
// 401 = невалидный токен, сетевые ошибки = проблемы с подключением.
//
// Использование:
//
//	./gallery-ping -config config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lenscraft/optibulk/pkg/config"
	"github.com/lenscraft/optibulk/pkg/gallery"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "путь к config.yaml")
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("Starting gallery-ping", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", *configPath, err)
		utils.Error("Config loading failed", "path", *configPath, "error", err)
		os.Exit(1)
	}

	client, err := gallery.NewFromConfig(cfg.Gallery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		os.Exit(1)
	}

	if !client.HasToken() {
		fmt.Fprintln(os.Stderr, "Warning: gallery.token is empty, upload would be rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	started := time.Now()
	resp, err := client.Ping(ctx)
	if err != nil {
		errType := client.ClassifyError(err)
		fmt.Fprintf(os.Stderr, "Ping failed (%s): %v\n%s\n", errType, err, errType.HumanMessage())
		utils.Error("Ping failed", "type", errType.String(), "error", err)
		os.Exit(1)
	}

	fmt.Printf("OK: %s (%s, %v)\n", resp.Status, cfg.Gallery.BaseURL, time.Since(started).Round(time.Millisecond))
	utils.Info("Ping OK", "base_url", cfg.Gallery.BaseURL, "duration", time.Since(started))
}
