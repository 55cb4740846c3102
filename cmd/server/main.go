// @title talentmatch API
// @version 1.0
// @description Resume text extraction and screening service.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "talentmatch/docs"
	"talentmatch/internal/auth"
	"talentmatch/internal/config"
	"talentmatch/internal/handler"
	"talentmatch/internal/logging"
	"talentmatch/internal/notify"
	"talentmatch/internal/pdftext"
	"talentmatch/internal/repository/postgres"
	"talentmatch/internal/router"
	"talentmatch/internal/service"
	s3storage "talentmatch/internal/storage/s3"
	"talentmatch/internal/summarizer"

	// Register summarizer providers
	_ "talentmatch/internal/summarizer/claude"
	_ "talentmatch/internal/summarizer/gemini"
	_ "talentmatch/internal/summarizer/openai"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.Setup(cfg.Log)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	analysisRepo := postgres.NewAnalysisRepo(db)
	resumeFileRepo := postgres.NewResumeFileRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction pipeline
	extractor, err := pdftext.NewExtractor(&cfg.Extraction, nil, pdftext.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	// Initialize summarizer chain
	sum, err := summarizer.NewFromConfig(&cfg.Summarizer)
	if err != nil {
		return fmt.Errorf("failed to initialize summarizer: %w", err)
	}

	notifier, err := notify.New(&cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	defer func() { _ = notifier.Close() }()

	verifier, err := auth.NewVerifier(cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	// Initialize services
	locator := service.NewResumeLocator(s3Client, cfg.S3.Bucket)
	analysisSvc := service.NewAnalysisService(locator, extractor, sum, analysisRepo, notifier, cfg.Analysis, cfg.Summarizer.MaxInputChars)
	resumeSvc := service.NewResumeService(resumeFileRepo, s3Client, &cfg.S3)

	tools := []string{cfg.Extraction.PdftotextPath}
	if cfg.Extraction.OCR.Enabled {
		tools = append(tools, cfg.Extraction.OCR.PdftoppmPath, cfg.Extraction.OCR.TesseractPath)
	}

	// Initialize handlers
	r := router.Setup(verifier, router.Handlers{
		Analysis: handler.NewAnalysisHandler(analysisSvc),
		Extract:  handler.NewExtractHandler(analysisSvc, cfg.S3.MaxFileSizeMB<<20),
		Resume:   handler.NewResumeHandler(resumeSvc),
		Health:   handler.NewHealthHandler(db, tools...),
	}, cfg.CORS.AllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.Queue.Enabled {
		worker := service.NewAnalysisQueueWorker(analysisRepo, analysisSvc, service.AnalysisQueueConfig{
			PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
			MaxRetries:   cfg.Queue.MaxRetries,
			Concurrency:  cfg.Queue.Concurrency,
			JobTimeout:   cfg.Analysis.Timeout + 30*time.Second,
			StaleAfter:   2 * (cfg.Analysis.Timeout + 30*time.Second),
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	wg.Wait()
	return nil
}
