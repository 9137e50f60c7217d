package services

import (
	"log/slog"

	"github.com/Kush-Singh-26/koshpack/builder/cache"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// historyServiceImpl implements HistoryService
type historyServiceImpl struct {
	manager *cache.Manager
	logger  *slog.Logger
}

func NewHistoryService(manager *cache.Manager, logger *slog.Logger) HistoryService {
	return &historyServiceImpl{
		manager: manager,
		logger:  logger,
	}
}

func (s *historyServiceImpl) Record(mode models.BuildMode, format string, body []byte) (bool, error) {
	changed, err := s.manager.Record(mode, format, body)
	if err != nil {
		return false, err
	}
	s.logger.Debug("recorded descriptor", "mode", mode, "format", format, "bytes", len(body), "changed", changed)
	return changed, nil
}

func (s *historyServiceImpl) Latest(mode models.BuildMode) (*cache.Snapshot, error) {
	return s.manager.Latest(mode)
}

func (s *historyServiceImpl) History(mode models.BuildMode, limit int) ([]cache.Snapshot, error) {
	return s.manager.History(mode, limit)
}

func (s *historyServiceImpl) Stats() (cache.Stats, error) {
	return s.manager.Stats()
}

func (s *historyServiceImpl) Clear() error {
	if err := s.manager.Clear(); err != nil {
		return err
	}
	s.logger.Info("cleared descriptor history", "path", s.manager.Path())
	return nil
}

func (s *historyServiceImpl) Close() error {
	return s.manager.Close()
}
