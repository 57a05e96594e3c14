package service

import (
	"context"
	"fmt"
	"strings"

	"soloschedule/internal/domain"
	"soloschedule/internal/models"

	"github.com/rs/zerolog"
)

// CatalogService manages the bookable services. Bookings keep referencing a
// removed service by name; their occupancy then falls back to the default
// duration.
type CatalogService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewCatalogService(repo domain.Repository, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	return s.repo.GetServices(ctx)
}

// Upsert adds svc or replaces the service with the same name.
func (s *CatalogService) Upsert(ctx context.Context, svc models.Service) (models.Service, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" || svc.Duration <= 0 || svc.Price < 0 {
		return models.Service{}, ErrInvalidService
	}

	services, err := s.repo.GetServices(ctx)
	if err != nil {
		return models.Service{}, err
	}
	replaced := false
	for i := range services {
		if services[i].Name == svc.Name {
			services[i] = svc
			replaced = true
			break
		}
	}
	if !replaced {
		services = append(services, svc)
	}
	if err := s.repo.SaveServices(ctx, services); err != nil {
		return models.Service{}, err
	}

	s.logger.Info().Str("service", svc.Name).Int("duration", svc.Duration).Bool("replaced", replaced).Msg("Service saved")
	return svc, nil
}

func (s *CatalogService) Remove(ctx context.Context, name string) error {
	services, err := s.repo.GetServices(ctx)
	if err != nil {
		return err
	}
	for i, svc := range services {
		if svc.Name == name {
			services = append(services[:i:i], services[i+1:]...)
			return s.repo.SaveServices(ctx, services)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownService, name)
}
