package service

import (
	"context"
	"fmt"
	"sort"

	"soloschedule/internal/domain"
	"soloschedule/internal/events"
	"soloschedule/internal/metrics"
	"soloschedule/internal/models"
	"soloschedule/internal/timegrid"

	"github.com/rs/zerolog"
)

const kindBlockout = "blockout"

// BlockoutDurations lists the durations offered when blocking time.
var BlockoutDurations = []int{15, 30, 45, 60, 90, 120, 180, 240}

type BlockoutService struct {
	repo      domain.Repository
	scheduler *Scheduler
	eventBus  domain.EventPublisher
	logger    *zerolog.Logger
}

func NewBlockoutService(repo domain.Repository, scheduler *Scheduler, eventBus domain.EventPublisher, logger *zerolog.Logger) *BlockoutService {
	return &BlockoutService{
		repo:      repo,
		scheduler: scheduler,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// BlockoutDuration floors minutes to the grid with a one-step minimum.
func BlockoutDuration(minutes int) int {
	d := minutes / timegrid.Step * timegrid.Step
	if d < timegrid.Step {
		return timegrid.Step
	}
	return d
}

func (s *BlockoutService) EnumerateStarts(ctx context.Context, date string, minutes int) (SlotList, error) {
	list, err := s.scheduler.EnumerateStarts(ctx, date, BlockoutDuration(minutes), "")
	if err != nil {
		return SlotList{}, err
	}
	metrics.IncSlotQuery(kindBlockout, string(list.Status))
	return list, nil
}

// CommitBlockout blocks [start, start+duration) on date after re-validating
// that the time is still free.
func (s *BlockoutService) CommitBlockout(ctx context.Context, date, blockType string, start timegrid.TimeOfDay, minutes int) (models.Blockout, error) {
	if !models.IsValidBlockType(blockType) {
		metrics.IncCommit(kindBlockout, metrics.ResultInvalid)
		return models.Blockout{}, fmt.Errorf("%w: %q", ErrInvalidBlockType, blockType)
	}
	duration := BlockoutDuration(minutes)
	blockout := models.Blockout{Type: blockType, Start: start, End: start.Add(duration)}

	err := s.scheduler.commit(ctx, kindBlockout, date, start, duration, "", func() error {
		all, err := s.repo.GetBlockouts(ctx)
		if err != nil {
			return err
		}
		list := append(all[date], blockout)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Start < list[j].Start })
		all[date] = list
		return s.repo.SaveBlockouts(ctx, all)
	})
	if err != nil {
		return models.Blockout{}, err
	}

	s.logger.Info().Str("date", date).Str("type", blockType).Str("start", start.String()).Int("duration", duration).Msg("Blockout created")
	s.publish(events.EventBlockoutCreated, date, blockout)
	return blockout, nil
}

// DeleteBlockout removes the first blockout on date matching the tuple. A
// date left without blockouts is dropped.
func (s *BlockoutService) DeleteBlockout(ctx context.Context, date string, start, end timegrid.TimeOfDay, blockType string) error {
	var removed models.Blockout
	err := s.scheduler.exclusive(func() error {
		all, err := s.repo.GetBlockouts(ctx)
		if err != nil {
			return err
		}
		list := all[date]
		idx := -1
		for i, bl := range list {
			if bl.Matches(start, end, blockType) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s %s %s-%s", ErrBlockoutNotFound, date, blockType, start, end)
		}

		removed = list[idx]
		list = append(list[:idx:idx], list[idx+1:]...)
		if len(list) == 0 {
			delete(all, date)
		} else {
			all[date] = list
		}
		return s.repo.SaveBlockouts(ctx, all)
	})
	if err != nil {
		return err
	}

	s.publish(events.EventBlockoutDeleted, date, removed)
	return nil
}

func (s *BlockoutService) List(ctx context.Context, date string) ([]models.Blockout, error) {
	all, err := s.repo.GetBlockouts(ctx)
	if err != nil {
		return nil, err
	}
	return all[date], nil
}

func (s *BlockoutService) publish(eventType, date string, bl models.Blockout) {
	if s.eventBus == nil {
		return
	}
	payload := events.BlockoutEventPayload{
		Date:  date,
		Type:  bl.Type,
		Start: bl.Start.String(),
		End:   bl.End.String(),
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
