// optibulk — основной CLI пайплайна импорта изображений товаров.
//
// Использование:
//
//	./optibulk -zip photos.zip -mode color -export .
//	./optibulk -dir ./photos -mode angle -upload
//	./optibulk -s3 sku-123 -upload -tui
//
// Источник батча задаётся ровно одним из флагов -zip / -dir / -s3.
// config.yaml должен находиться рядом с бинарником (флаг -config).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lenscraft/optibulk/internal/ui"
	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/classifier"
	"github.com/lenscraft/optibulk/pkg/colorx"
	"github.com/lenscraft/optibulk/pkg/config"
	"github.com/lenscraft/optibulk/pkg/events"
	"github.com/lenscraft/optibulk/pkg/export"
	"github.com/lenscraft/optibulk/pkg/gallery"
	"github.com/lenscraft/optibulk/pkg/grouping"
	"github.com/lenscraft/optibulk/pkg/history"
	"github.com/lenscraft/optibulk/pkg/ingest"
	"github.com/lenscraft/optibulk/pkg/s3storage"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "путь к config.yaml")
		zipPath    = flag.String("zip", "", "ZIP-архив с изображениями")
		dirPath    = flag.String("dir", "", "директория с изображениями")
		s3Prefix   = flag.String("s3", "", "префикс в S3 бакете")
		mode       = flag.String("mode", "color", "режим группировки: none|angle|color")
		exportDir  = flag.String("export", "", "директория для экспорта JSON (пусто = без экспорта)")
		doUpload   = flag.Bool("upload", false, "загрузить товары в продуктовый API")
		useTUI     = flag.Bool("tui", false, "интерактивный прогресс (Bubble Tea)")
	)
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer utils.SetupGracefulShutdown(cancel)()

	utils.Info("Starting optibulk", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Error loading config: %v\n", err)
	}
	utils.Info("Config loaded", "path", *configPath)

	groupMode, err := parseMode(*mode)
	if err != nil {
		fatal("%v\n", err)
	}

	emitter := events.NewChanEmitter(64)

	if *useTUI {
		runWithTUI(ctx, emitter, func() error {
			return runPipeline(ctx, cfg, emitter, *zipPath, *dirPath, *s3Prefix, groupMode, *exportDir, *doUpload)
		})
		return
	}

	go printEvents(emitter.Subscribe())
	err = runPipeline(ctx, cfg, emitter, *zipPath, *dirPath, *s3Prefix, groupMode, *exportDir, *doUpload)
	emitter.Close()
	if err != nil {
		fatal("Pipeline failed: %v\n", err)
	}
}

// runWithTUI запускает пайплайн в горутине, а Bubble Tea — в main.
//
// Пайплайн закрывает эмиттер по завершении; закрытие канала событий
// завершает TUI.
func runWithTUI(ctx context.Context, emitter *events.ChanEmitter, pipeline func() error) {
	program := tea.NewProgram(ui.New(emitter.Subscribe()), tea.WithContext(ctx))

	errCh := make(chan error, 1)
	go func() {
		errCh <- pipeline()
		emitter.Close()
	}()

	if _, err := program.Run(); err != nil {
		fatal("TUI failed: %v\n", err)
	}
	if err := <-errCh; err != nil {
		fatal("Pipeline failed: %v\n", err)
	}
}

// runPipeline — собственно пайплайн: ingest → analyze → group →
// export/upload.
func runPipeline(
	ctx context.Context,
	cfg *config.AppConfig,
	emitter events.Emitter,
	zipPath, dirPath, s3Prefix string,
	mode grouping.Mode,
	exportDir string,
	doUpload bool,
) error {
	source, err := buildSource(cfg, emitter, zipPath, dirPath, s3Prefix)
	if err != nil {
		return err
	}

	assets, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	images, err := buildAnalyzer(cfg, emitter).AnalyzeBatch(ctx, assets)
	if err != nil {
		return err
	}

	session := grouping.NewSession(ctx, images, emitter)
	if mode != grouping.ModeColor {
		session.SetMode(ctx, mode)
	}

	if exportDir != "" {
		path, err := export.WriteFile(session, exportDir)
		if err != nil {
			return err
		}
		fmt.Printf("Exported: %s\n", path)
	}

	if !doUpload {
		return nil
	}

	client, err := gallery.NewFromConfig(cfg.Gallery)
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := gallery.NewUploader(client, emitter).UploadSession(ctx, session)
	if err != nil {
		return fmt.Errorf("upload: %w (%s)", err, client.ClassifyError(err).HumanMessage())
	}

	recordHistory(ctx, cfg.History, mode, result, started)

	fmt.Printf("Uploaded: %d, errors: %d\n", result.UploadedCount, result.ErrorCount)
	for _, e := range result.Errors {
		fmt.Printf("  %s: %s\n", e.Item, e.Err)
	}
	return nil
}

// buildSource выбирает источник батча по флагам.
func buildSource(cfg *config.AppConfig, emitter events.Emitter, zipPath, dirPath, s3Prefix string) (ingest.Source, error) {
	set := 0
	for _, v := range []string{zipPath, dirPath, s3Prefix} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of -zip, -dir, -s3 is required")
	}

	switch {
	case zipPath != "":
		return ingest.NewZipSource(zipPath, emitter), nil
	case dirPath != "":
		return ingest.NewDirSource(dirPath), nil
	default:
		s3, err := s3storage.New(cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return ingest.NewS3Source(s3, s3Prefix), nil
	}
}

// buildAnalyzer собирает анализатор по конфигу: экстрактор цвета и
// стратегию классификации (keyword или vision с fallback на keyword).
func buildAnalyzer(cfg *config.AppConfig, emitter events.Emitter) *analyzer.Analyzer {
	acfg := cfg.Analyzer.GetDefaults()

	var extractor colorx.Extractor = colorx.NewHistogramExtractor()
	if acfg.Extractor == "kmeans" {
		extractor = colorx.NewKMeansExtractor()
	}

	keyword := classifier.NewKeywordEngine(cfg.Classifier.Rules)
	var strategy classifier.Strategy = keyword
	if cfg.Classifier.Vision.Enabled {
		vision, err := classifier.NewVisionStrategy(cfg.Classifier.Vision)
		if err != nil {
			utils.Warn("Vision classifier unavailable, using keyword rules", "error", err)
		} else {
			strategy = classifier.WithFallback(vision, keyword)
		}
	}

	return analyzer.New(
		analyzer.WithExtractor(extractor),
		analyzer.WithStrategy(strategy),
		analyzer.WithPaletteSize(acfg.PaletteSize),
		analyzer.WithEmitter(emitter),
	)
}

// recordHistory пишет прогон в журнал; ошибки журнала не прерывают
// работу.
func recordHistory(ctx context.Context, cfg config.HistoryConfig, mode grouping.Mode, result *gallery.Result, started time.Time) {
	if !cfg.Enabled {
		return
	}

	journal, err := history.Open(cfg)
	if err != nil {
		utils.Warn("History journal unavailable", "error", err)
		return
	}
	defer journal.Close()

	run := history.Run{
		Mode:      string(mode),
		Uploaded:  result.UploadedCount,
		Failed:    result.ErrorCount,
		Duration:  time.Since(started),
		StartedAt: started,
	}
	for _, e := range result.Errors {
		run.Errors = append(run.Errors, history.RunError{Item: e.Item, Error: e.Err})
	}
	if err := journal.Record(ctx, run); err != nil {
		utils.Warn("History record failed", "error", err)
	}
}

// printEvents — plain-режим: печатает прогресс построчно.
func printEvents(sub events.Subscriber) {
	for event := range sub.Events() {
		switch data := event.Data.(type) {
		case events.ExtractData:
			if data.Count > 0 {
				fmt.Printf("Extracted %d images from %s\n", data.Count, data.Source)
			}
		case events.ProgressData:
			fmt.Printf("[%3.0f%%] %s\n", data.Percent, data.Item)
		case events.GroupedData:
			fmt.Printf("Grouped (%s): %d products, %d variants\n", data.Mode, data.Products, data.Variants)
		case events.ErrorData:
			fmt.Printf("ERROR %s: %v\n", data.Item, data.Err)
		}
	}
}

func parseMode(s string) (grouping.Mode, error) {
	switch s {
	case "none":
		return grouping.ModeNone, nil
	case "angle":
		return grouping.ModeAngle, nil
	case "color":
		return grouping.ModeColor, nil
	}
	return "", fmt.Errorf("invalid -mode %q: want none, angle or color", s)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	utils.Error("Fatal", "error", fmt.Sprintf(format, args...))
	utils.Close()
	os.Exit(1)
}
