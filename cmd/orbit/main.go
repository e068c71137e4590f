// Command orbit manages a local ORBIT self-assessment store: scoring
// capability areas, finalizing and reverting assessments, and moving
// data between instances through export/import payloads.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbitlabs/orbit-assess/internal/config"
	"github.com/orbitlabs/orbit-assess/internal/data/db"
	"github.com/orbitlabs/orbit-assess/internal/data/repos"
	"github.com/orbitlabs/orbit-assess/internal/history"
	"github.com/orbitlabs/orbit-assess/internal/platform/envutil"
	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
	"github.com/orbitlabs/orbit-assess/internal/services"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:           "orbit",
		Short:         "Local ORBIT self-assessment store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .orbitrc.yaml)")

	root.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newScoreCmd(),
		newFinalizeCmd(),
		newReopenCmd(),
		newRevertCmd(),
		newTagsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds the wired store, repositories and services shared by the
// subcommands.
type app struct {
	cfg *config.Config
	log *logger.Logger

	store *db.StoreService

	assessments repos.AssessmentRepo
	ratings     repos.RatingRepo
	historyRepo repos.HistoryRepo
	tags        repos.TagRepo
	attachments repos.AttachmentRepo

	blobs         *services.BlobStore
	tagService    services.TagService
	assessmentSvc services.AssessmentService
	archiver      *history.Archiver
}

func newApp() (*app, error) {
	configPath := cfgFile
	if configPath == "" {
		configPath = envutil.GetEnv("ORBIT_CONFIG", "", nil)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := db.NewStoreService(db.StoreConfig{SQLitePath: cfg.SQLitePath, DSN: cfg.DSN}, log)
	if err != nil {
		return nil, err
	}
	if err := store.AutoMigrateAll(); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	gdb := store.DB()

	blobs, err := services.NewBlobStore(cfg.AttachmentDir, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		log:         log,
		store:       store,
		assessments: repos.NewAssessmentRepo(gdb, log),
		ratings:     repos.NewRatingRepo(gdb, log),
		historyRepo: repos.NewHistoryRepo(gdb, log),
		tags:        repos.NewTagRepo(gdb, log),
		attachments: repos.NewAttachmentRepo(gdb, log),
		blobs:       blobs,
	}
	a.tagService = services.NewTagService(gdb, log, a.tags, a.assessments)
	a.assessmentSvc = services.NewAssessmentService(gdb, log, a.assessments, a.ratings, a.attachments, a.tagService)
	a.archiver = history.NewArchiver(gdb, log, a.assessments, a.ratings, a.historyRepo)
	return a, nil
}

func (a *app) close() {
	a.log.Sync()
}
