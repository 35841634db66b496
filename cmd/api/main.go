package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/policywatch/internal/application"
	"github.com/bryanwahyu/policywatch/internal/application/analyzer"
	"github.com/bryanwahyu/policywatch/internal/application/monitor"
	"github.com/bryanwahyu/policywatch/internal/application/notify"
	"github.com/bryanwahyu/policywatch/internal/config"
	domai "github.com/bryanwahyu/policywatch/internal/domain/ai"
	"github.com/bryanwahyu/policywatch/internal/domain/changes"
	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
	"github.com/bryanwahyu/policywatch/internal/domain/snapshots"
	aiopenai "github.com/bryanwahyu/policywatch/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/policywatch/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/policywatch/internal/infra/db/postgres"
	"github.com/bryanwahyu/policywatch/internal/infra/fetcher"
	"github.com/bryanwahyu/policywatch/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/policywatch/internal/infra/storage"
	"github.com/bryanwahyu/policywatch/internal/middleware"
)

// logDispatcher is the default delivery collaborator: it only logs.
// Real transports (Slack/email/webhook) consume the same payload from
// their own services.
type logDispatcher struct{}

func (logDispatcher) Dispatch(_ context.Context, p notify.Payload) error {
	log.Printf("notify: vendor=%q doc=%q severity=%s tags=%v summary=%q",
		p.Vendor, p.DocumentType, p.Severity, p.Tags, p.Summary)
	middleware.IncrementNotificationsSent()
	return nil
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB sesuai driver
	var (
		db        *sql.DB
		docRepo   documents.Repository
		snapRepo  snapshots.Repository
		chRepo    changes.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		docRepo = pgp.NewDocumentRepository(db)
		snapRepo = pgp.NewSnapshotRepository(db)
		chRepo = pgp.NewChangeRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		docRepo = mysqlp.NewDocumentRepository(db)
		snapRepo = mysqlp.NewSnapshotRepository(db)
		chRepo = mysqlp.NewChangeRepository(db)
	}
	defer db.Close()

	// init minio (optional archive)
	var archive monitor.Archiver
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	// init AI completer (optional; without a key the analyzer always
	// falls back to keyword classification)
	var completer domai.Completer
	if cfg.OpenAI.APIKey != "" {
		completer = aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	// init services
	analyzerSvc := analyzer.New(completer, classify.DefaultConfig())
	svc := &monitor.Service{
		Documents:  docRepo,
		Snapshots:  snapRepo,
		Changes:    chRepo,
		Fetcher:    fetcher.New(cfg.Monitor.FetchTimeout),
		Analyzer:   analyzerSvc,
		Dispatcher: logDispatcher{},
		Archive:    archive,
		Clock:      application.SystemClock{},
		Policy: monitor.Policy{
			MinContentLength:        cfg.Monitor.MinContentLength,
			StaleBaseline:           time.Duration(cfg.Monitor.StaleBaselineDays) * 24 * time.Hour,
			ReplacementRatio:        cfg.Monitor.ReplacementRatio,
			ReplacementMinSentences: cfg.Monitor.ReplacementMinSentences,
			BatchBudget:             cfg.Monitor.BatchBudget,
		},
		ProductURL: cfg.Notify.ProductBaseURL,
	}

	// init router
	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, chRepo, docRepo, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Monitor.BatchBudget + 15*time.Second, // manual runs stream outcomes at the end
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// scheduler: jalankan batch tiap interval dengan budget sendiri
	schedCtx, stopSched := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(cfg.Monitor.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-schedCtx.Done():
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(schedCtx, cfg.Monitor.BatchBudget)
				outcomes := svc.RunAll(runCtx)
				cancel()
				middleware.AddChecks(len(outcomes))
				log.Printf("scheduled batch done: documents=%d", len(outcomes))
			}
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")
	stopSched()

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
