package usecase

import (
	"context"
	"fmt"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/dto/response"
	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

// AvailabilityService derives the bookable time windows for a date from
// working-hour configuration, blocked dates and occupied bookings. Pure
// reads, no side effects.
type AvailabilityService interface {
	GenerateSlots(cfg *entity.TimeSlotConfig) []string
	IsDateBookable(ctx context.Context, date time.Time) (bool, error)
	AvailableSlots(ctx context.Context, date time.Time) ([]response.SlotResponse, error)

	// ValidateSlot checks that (date, slotTime) is a bookable candidate
	// slot and returns the slot capacity. Used by the reserve and
	// reschedule paths before their transactional re-check.
	ValidateSlot(ctx context.Context, date time.Time, slotTime string) (int, error)
}

type availabilityService struct {
	repo            *repository.Repository
	defaultCapacity int
	now             func() time.Time
	log             *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AvailabilityService {
	capacity := config.Booking.DefaultCapacity
	if capacity < 1 {
		capacity = 1
	}
	return &availabilityService{
		repo:            repo,
		defaultCapacity: capacity,
		now:             time.Now,
		log:             log.With(zap.String("service", "availability")),
	}
}

// minutesOf parses "HH:MM" into minutes from midnight. Inputs come from
// validated requests or admin-maintained config rows.
func minutesOf(clock string) int {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

func clockOf(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// rangesOverlap tests [s1,e1) against [s2,e2).
func rangesOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (s *availabilityService) capacityOf(cfg *entity.TimeSlotConfig) int {
	if cfg.Capacity > 0 {
		return cfg.Capacity
	}
	return s.defaultCapacity
}

// GenerateSlots steps from config start to end in duration increments. A
// slot is included only when it ends on or before the window end.
func (s *availabilityService) GenerateSlots(cfg *entity.TimeSlotConfig) []string {
	start := minutesOf(cfg.StartTime)
	end := minutesOf(cfg.EndTime)
	if start < 0 || end < 0 || cfg.SlotDuration <= 0 {
		return nil
	}

	var slots []string
	for m := start; m+cfg.SlotDuration <= end; m += cfg.SlotDuration {
		slots = append(slots, clockOf(m))
	}
	return slots
}

func (s *availabilityService) IsDateBookable(ctx context.Context, date time.Time) (bool, error) {
	if dateOnly(date).Before(dateOnly(s.now())) {
		return false, nil
	}

	cfg, err := s.repo.SlotConfig.FindActiveByDay(ctx, int(date.Weekday()))
	if err != nil {
		return false, fmt.Errorf("check slot config: %w", err)
	}
	if cfg == nil {
		// No active configuration means no availability, not a fault.
		return false, nil
	}

	blocks, err := s.repo.BlockedDate.FindByDate(ctx, dateOnly(date))
	if err != nil {
		return false, fmt.Errorf("check blocked dates: %w", err)
	}
	for _, block := range blocks {
		if block.WholeDay() {
			return false, nil
		}
	}

	return true, nil
}

func (s *availabilityService) AvailableSlots(ctx context.Context, date time.Time) ([]response.SlotResponse, error) {
	day := dateOnly(date)

	cfg, err := s.repo.SlotConfig.FindActiveByDay(ctx, int(day.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("load slot config: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("availability for %s: %w", day.Format("2006-01-02"), entity.ErrNoSlotConfig)
	}

	blocks, err := s.repo.BlockedDate.FindByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load blocked dates: %w", err)
	}

	occupied, err := s.repo.Booking.CountActiveBySlot(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load slot occupancy: %w", err)
	}

	now := s.now()
	past := day.Before(dateOnly(now))
	today := sameDate(day, now)
	nowMinutes := now.Hour()*60 + now.Minute()
	capacity := s.capacityOf(cfg)

	wholeDayBlocked := false
	for _, block := range blocks {
		if block.WholeDay() {
			wholeDayBlocked = true
			break
		}
	}

	var slots []response.SlotResponse
	for _, slotTime := range s.GenerateSlots(cfg) {
		slotStart := minutesOf(slotTime)
		slotEnd := slotStart + cfg.SlotDuration

		remaining := capacity - occupied[slotTime]
		if remaining < 0 {
			remaining = 0
		}

		available := remaining > 0 && !past && !wholeDayBlocked
		if today && slotStart <= nowMinutes {
			// Same-day slots already elapsed are excluded by policy.
			available = false
		}
		for _, block := range blocks {
			if block.WholeDay() {
				continue
			}
			if rangesOverlap(slotStart, slotEnd, minutesOf(block.StartTime), minutesOf(block.EndTime)) {
				available = false
				break
			}
		}

		slots = append(slots, response.SlotResponse{
			Time:              slotTime,
			Available:         available,
			RemainingCapacity: remaining,
		})
	}

	return slots, nil
}

func (s *availabilityService) ValidateSlot(ctx context.Context, date time.Time, slotTime string) (int, error) {
	day := dateOnly(date)

	bookable, err := s.IsDateBookable(ctx, day)
	if err != nil {
		return 0, err
	}
	if !bookable {
		return 0, fmt.Errorf("date %s: %w", day.Format("2006-01-02"), entity.ErrDateNotBookable)
	}

	cfg, err := s.repo.SlotConfig.FindActiveByDay(ctx, int(day.Weekday()))
	if err != nil {
		return 0, fmt.Errorf("load slot config: %w", err)
	}
	if cfg == nil {
		return 0, fmt.Errorf("slot config for %s: %w", day.Format("2006-01-02"), entity.ErrNoSlotConfig)
	}

	candidate := false
	for _, t := range s.GenerateSlots(cfg) {
		if t == slotTime {
			candidate = true
			break
		}
	}
	if !candidate {
		return 0, fmt.Errorf("time %s on %s: %w", slotTime, day.Format("2006-01-02"), entity.ErrInvalidSlot)
	}

	now := s.now()
	if sameDate(day, now) && minutesOf(slotTime) <= now.Hour()*60+now.Minute() {
		return 0, fmt.Errorf("time %s today already elapsed: %w", slotTime, entity.ErrDateNotBookable)
	}

	blocks, err := s.repo.BlockedDate.FindByDate(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("load blocked dates: %w", err)
	}
	slotStart := minutesOf(slotTime)
	slotEnd := slotStart + cfg.SlotDuration
	for _, block := range blocks {
		if block.WholeDay() {
			continue
		}
		if rangesOverlap(slotStart, slotEnd, minutesOf(block.StartTime), minutesOf(block.EndTime)) {
			return 0, fmt.Errorf("time %s on %s is blocked: %w", slotTime, day.Format("2006-01-02"), entity.ErrDateNotBookable)
		}
	}

	return s.capacityOf(cfg), nil
}
