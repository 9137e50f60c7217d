package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/compose"
	"github.com/Kush-Singh-26/koshpack/builder/config"
	"github.com/Kush-Singh-26/koshpack/builder/emit"
	"github.com/Kush-Singh-26/koshpack/builder/metrics"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// descriptorServiceImpl implements DescriptorService
type descriptorServiceImpl struct {
	cfg     *config.Config
	fs      afero.Fs
	history HistoryService
	logger  *slog.Logger
}

// NewDescriptorService wires the descriptor pipeline. history may be nil, in
// which case every emission counts as changed.
func NewDescriptorService(cfg *config.Config, fs afero.Fs, history HistoryService, logger *slog.Logger) DescriptorService {
	return &descriptorServiceImpl{
		cfg:     cfg,
		fs:      fs,
		history: history,
		logger:  logger,
	}
}

// assemble validates the project before composing anything.
func (s *descriptorServiceImpl) assemble(ctx context.Context, mode models.BuildMode) (models.BuildDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return models.BuildDescriptor{}, err
	}
	if err := s.cfg.Validate(s.fs); err != nil {
		return models.BuildDescriptor{}, fmt.Errorf("invalid project: %w", err)
	}
	return compose.Assemble(mode, s.cfg), nil
}

func (s *descriptorServiceImpl) render(d models.BuildDescriptor, format emit.Format) ([]byte, error) {
	body, err := emit.Render(d, format)
	if err != nil {
		return nil, err
	}
	if format == emit.JS {
		if err := emit.VerifyJS(body, d.Mode); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (s *descriptorServiceImpl) Render(ctx context.Context, mode models.BuildMode, format emit.Format) ([]byte, error) {
	d, err := s.assemble(ctx, mode)
	if err != nil {
		return nil, err
	}
	return s.render(d, format)
}

func (s *descriptorServiceImpl) Emit(ctx context.Context, mode models.BuildMode) (*EmitResult, error) {
	m := metrics.NewEmitMetrics()

	format, err := emit.ParseFormat(s.cfg.Format)
	if err != nil {
		return nil, err
	}
	m.Format = string(format)

	start := time.Now()
	d, err := s.assemble(ctx, mode)
	if err != nil {
		return nil, err
	}
	m.AssembleTime = time.Since(start)
	m.Observe(d)

	start = time.Now()
	body, err := s.render(d, format)
	if err != nil {
		return nil, err
	}
	m.RenderTime = time.Since(start)
	m.Bytes = len(body)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &EmitResult{
		Path:    s.cfg.DescriptorFile(),
		Format:  format,
		Body:    body,
		Changed: true,
		Metrics: m,
	}

	if s.history != nil {
		changed, err := s.history.Record(mode, string(format), body)
		if err != nil {
			// history is advisory; the descriptor still gets written
			s.logger.Warn("failed to record descriptor history", "error", err)
		} else {
			res.Changed = changed
		}
	}

	if !res.Changed && s.onDisk(res.Path, body) {
		m.Unchanged = true
		m.RecordEnd()
		s.logger.Debug("descriptor unchanged, skipping write", "path", res.Path)
		return res, nil
	}

	if err := emit.Write(s.fs, res.Path, body); err != nil {
		return nil, err
	}
	res.Written = true
	m.RecordEnd()
	s.logger.Info("descriptor written", "path", res.Path, "mode", mode, "format", format, "bytes", len(body))
	return res, nil
}

// onDisk reports whether path already holds body.
func (s *descriptorServiceImpl) onDisk(path string, body []byte) bool {
	existing, err := afero.ReadFile(s.fs, path)
	return err == nil && bytes.Equal(existing, body)
}
