// Package service implements the admin-gated audit log reads
package service

import (
	"context"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/logger"
	dom "cardduel/internal/services/logs/domain"
)

// Config bounds pagination
type Config struct {
	DefaultLimit int
	HardLimit    int
}

// withDefaults fills unset fields
func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 50
	}
	if c.HardLimit <= 0 {
		c.HardLimit = 500
	}
	return c
}

// Service gates the append-only log behind the admin flag
type Service struct {
	Reader   dom.ReaderPort
	Recorder dom.RecorderPort
	Cfg      Config
	Log      logger.Logger
}

// New wires the logs service
func New(reader dom.ReaderPort, recorder dom.RecorderPort, cfg Config, log logger.Logger) *Service {
	if reader == nil {
		panic("logs: nil reader port")
	}
	return &Service{Reader: reader, Recorder: recorder, Cfg: cfg.withDefaults(), Log: log}
}

// List returns a page of the log; admin only
func (s *Service) List(ctx context.Context, subject string, admin bool, offset, limit int) (dom.Page, error) {
	if !admin {
		return dom.Page{}, perr.Forbiddenf("admin access required")
	}
	offset, limit = s.clamp(offset, limit)

	page, err := s.Reader.List(ctx, offset, limit)
	if err != nil {
		return dom.Page{}, err
	}
	s.recordView(ctx, subject, "list")
	return page, nil
}

// Search filters the log by a free-text query; admin only
func (s *Service) Search(ctx context.Context, subject string, admin bool, query string, offset, limit int) (dom.Page, error) {
	if !admin {
		return dom.Page{}, perr.Forbiddenf("admin access required")
	}
	if query == "" {
		return dom.Page{}, perr.InvalidArgf("search query is required")
	}
	offset, limit = s.clamp(offset, limit)

	page, err := s.Reader.Search(ctx, query, offset, limit)
	if err != nil {
		return dom.Page{}, err
	}
	s.recordView(ctx, subject, "search")
	return page, nil
}

func (s *Service) clamp(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = s.Cfg.DefaultLimit
	}
	if limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}
	return offset, limit
}

// recordView appends the admin-viewed-logs audit entry, best-effort
func (s *Service) recordView(ctx context.Context, subject, kind string) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.Record(ctx, dom.ActionLogsViewed, subject, kind); err != nil {
		s.Log.Warn().Err(err).Msg("audit append failed")
	}
}
