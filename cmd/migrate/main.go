package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/migration"
	"github.com/noah-isme/tutoring-admin-api/internal/repository"
	"github.com/noah-isme/tutoring-admin-api/pkg/config"
	"github.com/noah-isme/tutoring-admin-api/pkg/database"
	"github.com/noah-isme/tutoring-admin-api/pkg/firebase"
	"github.com/noah-isme/tutoring-admin-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dryRun := flag.Bool("dry-run", false, "read and map records without writing")
	verify := flag.Bool("verify", false, "after copying, compare every session read from Firebase and Postgres")
	collections := flag.String("collections", strings.Join(cfg.Migration.Collections, ","), "comma separated Firebase collections to copy")
	flag.Parse()

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to apply schema migrations", zap.Error(err))
		}
	}

	fb, err := firebase.NewDatabase(ctx, cfg.Firebase)
	if err != nil {
		logr.Fatal("failed to connect firebase", zap.Error(err))
	}

	source := migration.NewFirebaseSource(fb)
	runner := migration.NewRunner(source, migration.NewPostgresSink(db), logr, migration.Options{DryRun: *dryRun})
	reports, err := runner.Run(ctx, splitList(*collections))
	if err != nil {
		logr.Fatal("migration aborted", zap.Error(err), zap.Any("reports", reports))
	}

	failed := 0
	for _, r := range reports {
		failed += r.Failed
	}
	logr.Info("migration finished", zap.Any("reports", reports), zap.Bool("dry_run", *dryRun))

	if *verify && !*dryRun {
		verifier := migration.NewVerifier(source,
			repository.NewFirebaseSessionRepository(fb),
			repository.NewSessionRepository(db),
			logr)
		mismatches, err := verifier.VerifySessions(ctx)
		if err != nil {
			logr.Fatal("session verification aborted", zap.Error(err))
		}
		failed += len(mismatches)
	}

	if failed > 0 {
		logr.Warn("migration incomplete", zap.Int("failed", failed))
		os.Exit(1)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
