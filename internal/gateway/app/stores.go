package app

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"planforge/internal/artifact"
	"planforge/internal/gateway/config"
	"planforge/internal/repository/feature"
	"planforge/internal/repository/idea"
	"planforge/internal/repository/techstack"
	"planforge/internal/repository/validation"
)

type gatewayStores struct {
	ideas       idea.Store
	validations validation.Store
	features    feature.Store
	techstacks  techstack.Store
	artifacts   artifact.Store
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	artifacts, err := chooseArtifactStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL != "" {
		return initPostgresStores(cfg.DatabaseURL, artifacts)
	}
	log.Printf("record stores: in-memory (DATABASE_URL not set)")
	return &gatewayStores{
		ideas:       idea.NewMemoryStore(),
		validations: validation.NewMemoryStore(),
		features:    feature.NewMemoryStore(),
		techstacks:  techstack.NewMemoryStore(),
		artifacts:   artifacts,
	}, nil
}

func initPostgresStores(dsn string, artifacts artifact.Store) (*gatewayStores, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	ideas, err := idea.NewPostgresStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize idea store: %w", err)
	}
	log.Printf("record stores: postgres")
	return &gatewayStores{
		ideas:       ideas,
		validations: validation.NewPostgresStore(db),
		features:    feature.NewPostgresStore(db),
		techstacks:  techstack.NewPostgresStore(db),
		artifacts:   artifacts,
	}, nil
}

func chooseArtifactStore(cfg *config.Config) (artifact.Store, error) {
	if cfg.Artifact.CanUseS3() {
		s3Store, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		log.Printf("artifact store: s3 bucket=%s endpoint=%s", cfg.Artifact.Bucket, cfg.Artifact.Endpoint)
		return s3Store, nil
	}
	if cfg.Artifact.Enabled {
		log.Printf("artifact store: using in-memory fallback (s3 config incomplete)")
	}
	return artifact.NewMemoryStore(), nil
}
