package service

import (
	"context"
	"time"

	"soloschedule/internal/domain"
	"soloschedule/internal/earnings"

	"github.com/rs/zerolog"
)

type EarningsService struct {
	repo      domain.Repository
	exportDir string
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewEarningsService(repo domain.Repository, exportDir string, logger *zerolog.Logger) *EarningsService {
	return &EarningsService{
		repo:      repo,
		exportDir: exportDir,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *EarningsService) Summary(ctx context.Context, filter earnings.Filter) (earnings.Summary, error) {
	bookings, err := s.repo.GetBookings(ctx)
	if err != nil {
		return earnings.Summary{}, err
	}
	return earnings.Summarize(bookings, filter), nil
}

// Export writes the filtered ledger as an xlsx workbook and returns its path.
func (s *EarningsService) Export(ctx context.Context, filter earnings.Filter) (string, error) {
	summary, err := s.Summary(ctx, filter)
	if err != nil {
		return "", err
	}
	path, err := earnings.ExportXLSX(summary, s.exportDir, s.now())
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("path", path).Int("rows", len(summary.Rows)).Msg("Earnings exported")
	return path, nil
}
