package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"soloschedule/internal/availability"
	"soloschedule/internal/domain"
	"soloschedule/internal/interval"
	"soloschedule/internal/models"
	"soloschedule/internal/timegrid"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store implements domain.Repository over a key-value store using the JSON
// documents under the bookings, services, availability and day_blocks keys.
// Malformed documents load as empty collections and are logged, never
// returned as errors.
type Store struct {
	kv     domain.KeyValueStore
	logger *zerolog.Logger
	newID  func() string
}

var _ domain.Repository = (*Store)(nil)

func NewStore(kv domain.KeyValueStore, logger *zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
		newID:  uuid.NewString,
	}
}

func (s *Store) load(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok || len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return nil, false, nil
	}
	return raw, true, nil
}

func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) corrupt(key string, err error) {
	s.logger.Warn().Err(err).Str("key", key).Msg("Stored value is malformed, using empty default")
}

// decodeList splits a JSON array into its raw elements.
func (s *Store) decodeList(key string, raw []byte) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		s.corrupt(key, err)
		return nil
	}
	return items
}

// GetBookings loads bookings, filling defaults. Bookings stored without an id
// get one and the list is written back so ids stay stable.
func (s *Store) GetBookings(ctx context.Context) ([]models.Booking, error) {
	raw, ok, err := s.load(ctx, models.KeyBookings)
	if err != nil || !ok {
		return []models.Booking{}, err
	}

	bookings := make([]models.Booking, 0)
	assigned := false
	for _, item := range s.decodeList(models.KeyBookings, raw) {
		var w wireBooking
		if err := json.Unmarshal(item, &w); err != nil {
			s.corrupt(models.KeyBookings, err)
			continue
		}
		b := normalizeBooking(w)
		if b.ID == "" {
			b.ID = s.newID()
			assigned = true
		}
		bookings = append(bookings, b)
	}

	if assigned {
		if err := s.SaveBookings(ctx, bookings); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

func normalizeBooking(w wireBooking) models.Booking {
	b := models.Booking{
		ID:         strings.TrimSpace(string(w.ID)),
		Client:     strings.TrimSpace(string(w.Client)),
		Service:    strings.TrimSpace(string(w.Service)),
		Date:       strings.TrimSpace(string(w.Date)),
		Time:       timegrid.ParseLoose(string(w.Time)),
		Price:      float64(w.Price),
		Status:     NormalizeStatus(string(w.Status)),
		PaidStatus: models.PaidStatusUnpaid,
	}
	if strings.EqualFold(strings.TrimSpace(string(w.PaidStatus)), models.PaidStatusPaid) {
		b.PaidStatus = models.PaidStatusPaid
	}
	return b
}

// NormalizeStatus folds legacy spellings and maps unknown values to scheduled.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	status = strings.NewReplacer("-", "_", " ", "_").Replace(status)
	if status == "cancelled" {
		return models.StatusCanceled
	}
	if !models.IsValidStatus(status) {
		return models.StatusScheduled
	}
	return status
}

func (s *Store) SaveBookings(ctx context.Context, bookings []models.Booking) error {
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return s.save(ctx, models.KeyBookings, bookings)
}

// GetServices loads services, skipping entries without a name.
func (s *Store) GetServices(ctx context.Context) ([]models.Service, error) {
	raw, ok, err := s.load(ctx, models.KeyServices)
	if err != nil || !ok {
		return []models.Service{}, err
	}

	services := make([]models.Service, 0)
	for _, item := range s.decodeList(models.KeyServices, raw) {
		var w wireService
		if err := json.Unmarshal(item, &w); err != nil {
			s.corrupt(models.KeyServices, err)
			continue
		}
		name := strings.TrimSpace(string(w.Name))
		if name == "" {
			continue
		}
		services = append(services, models.Service{
			Name:     name,
			Duration: int(w.Duration),
			Price:    float64(w.Price),
		})
	}
	return services, nil
}

func (s *Store) SaveServices(ctx context.Context, services []models.Service) error {
	if services == nil {
		services = []models.Service{}
	}
	return s.save(ctx, models.KeyServices, services)
}

// GetAvailability loads the weekly schedule snapped to the grid. It returns a
// nil map when no schedule has ever been saved.
func (s *Store) GetAvailability(ctx context.Context) (models.WeeklyAvailability, error) {
	raw, ok, err := s.load(ctx, models.KeyAvailability)
	if err != nil || !ok {
		return nil, err
	}

	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		s.corrupt(models.KeyAvailability, err)
		return models.WeeklyAvailability{}.Clone(), nil
	}

	weekly := make(models.WeeklyAvailability, len(models.Weekdays))
	for _, day := range models.Weekdays {
		var pairs []json.RawMessage
		if dayRaw, ok := days[day]; ok {
			if err := json.Unmarshal(dayRaw, &pairs); err != nil {
				s.corrupt(models.KeyAvailability+"."+day, err)
			}
		}
		var ranges []interval.Interval
		for _, p := range pairs {
			var pair wireRange
			if err := json.Unmarshal(p, &pair); err != nil {
				continue
			}
			ranges = append(ranges, interval.Interval{
				Start: timegrid.ParseLoose(pair[0]),
				End:   timegrid.ParseLoose(pair[1]),
			})
		}
		weekly[day] = availability.NormalizeRanges(ranges)
	}
	return weekly, nil
}

func (s *Store) SaveAvailability(ctx context.Context, weekly models.WeeklyAvailability) error {
	out := make(map[string][]wireRange, len(models.Weekdays))
	for _, day := range models.Weekdays {
		pairs := make([]wireRange, 0, len(weekly[day]))
		for _, r := range weekly[day] {
			pairs = append(pairs, wireRange{r.Start.String(), r.End.String()})
		}
		out[day] = pairs
	}
	return s.save(ctx, models.KeyAvailability, out)
}

// GetBlockouts loads blockouts by date. Invalid entries and dates left empty
// are dropped.
func (s *Store) GetBlockouts(ctx context.Context) (models.DayBlockouts, error) {
	raw, ok, err := s.load(ctx, models.KeyDayBlocks)
	if err != nil || !ok {
		return models.DayBlockouts{}, err
	}

	var dates map[string]json.RawMessage
	if err := json.Unmarshal(raw, &dates); err != nil {
		s.corrupt(models.KeyDayBlocks, err)
		return models.DayBlockouts{}, nil
	}

	blockouts := make(models.DayBlockouts, len(dates))
	for date, listRaw := range dates {
		var list []models.Blockout
		for _, item := range s.decodeList(models.KeyDayBlocks+"."+date, listRaw) {
			var w wireBlockout
			if err := json.Unmarshal(item, &w); err != nil {
				continue
			}
			bl := models.Blockout{
				Type:  strings.TrimSpace(string(w.Type)),
				Start: timegrid.ParseLoose(string(w.Start)),
				End:   timegrid.ParseLoose(string(w.End)),
			}
			if bl.Type == "" {
				bl.Type = models.BlockOther
			}
			if bl.Start >= bl.End {
				continue
			}
			list = append(list, bl)
		}
		if len(list) > 0 {
			blockouts[date] = list
		}
	}
	return blockouts, nil
}

func (s *Store) SaveBlockouts(ctx context.Context, blockouts models.DayBlockouts) error {
	out := make(map[string][]models.Blockout, len(blockouts))
	for date, list := range blockouts {
		if len(list) > 0 {
			out[date] = list
		}
	}
	return s.save(ctx, models.KeyDayBlocks, out)
}
