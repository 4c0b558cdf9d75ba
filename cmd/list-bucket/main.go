// list-bucket — список папок первого уровня S3-бакета.
//
// Показывает доступные партии фотографий (кандидаты для флага -s3
// основного пайплайна) с датой последнего изменения.
//
// Использование:
//
//	./list-bucket -config config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lenscraft/optibulk/pkg/config"
	"github.com/lenscraft/optibulk/pkg/s3storage"
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

	utils.Info("Starting list-bucket", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	client, err := s3storage.New(cfg.S3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating S3 client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	folders, err := client.ListTopLevelFolders(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing bucket %s: %v\n", cfg.S3.Bucket, err)
		utils.Error("Bucket listing failed", "bucket", cfg.S3.Bucket, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Bucket %s: %d folders\n", cfg.S3.Bucket, len(folders))
	for _, f := range folders {
		fmt.Printf("  %-40s %s\n", f.Key, f.LastModified.Format("2006-01-02 15:04"))
	}
}
