package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/compose"
	"github.com/Kush-Singh-26/koshpack/builder/config"
	"github.com/Kush-Singh-26/koshpack/builder/engine"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

type bundleServiceImpl struct {
	cfg    *config.Config
	srcFs  afero.Fs
	destFs afero.Fs
	logger *slog.Logger
}

// NewBundleService validates against srcFs and writes bundles to destFs.
func NewBundleService(cfg *config.Config, srcFs, destFs afero.Fs, logger *slog.Logger) BundleService {
	return &bundleServiceImpl{
		cfg:    cfg,
		srcFs:  srcFs,
		destFs: destFs,
		logger: logger,
	}
}

func (s *bundleServiceImpl) Bundle(ctx context.Context, mode models.BuildMode) (*engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.cfg.Validate(s.srcFs); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}

	d := compose.Assemble(mode, s.cfg)
	res, err := engine.Bundle(s.srcFs, s.destFs, d, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bundle written", "mode", mode, "files", len(res.Files), "bytes", res.Bytes)
	return res, nil
}
