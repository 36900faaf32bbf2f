package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/dto/request"
	"interview-booking/internal/notification"
	"interview-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeBookingRepo mimics the storage-level guarantees of the real
// repository: per-slot write serialization and conditional flag claims.
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*entity.Booking
	slotLocks map[string]*sync.Mutex
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:  make(map[uuid.UUID]*entity.Booking),
		slotLocks: make(map[string]*sync.Mutex),
	}
}

// slotLock mirrors the repository's per-slot advisory lock: writers of
// the same (date, time) serialize, writers of other slots do not. The
// map mutex guards lookup only, never the count-insert sequence.
func (r *fakeBookingRepo) slotLock(date time.Time, slotTime string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := date.Format("2006-01-02") + " " + slotTime
	lock, ok := r.slotLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.slotLocks[key] = lock
	}
	return lock
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) List(ctx context.Context, filter repository.BookingListFilter, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Date != nil && !b.SlotDate.Equal(*filter.Date) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBookingRepo) Count(ctx context.Context, filter repository.BookingListFilter) (int64, error) {
	list, _ := r.List(ctx, filter, 0, 0)
	return int64(len(list)), nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[bookingID]
	if !ok {
		return fmt.Errorf("update booking: %w", entity.ErrBookingNotFound)
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) CountActiveBySlot(ctx context.Context, date time.Time) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, b := range r.bookings {
		if b.IsActive() && b.SlotDate.Equal(date) {
			counts[b.SlotTime]++
		}
	}
	return counts, nil
}

func (r *fakeBookingRepo) activeAtLocked(date time.Time, slotTime string, exclude uuid.UUID) int {
	count := 0
	for _, b := range r.bookings {
		if b.ID == exclude {
			continue
		}
		if b.IsActive() && b.SlotDate.Equal(date) && b.SlotTime == slotTime {
			count++
		}
	}
	return count
}

func (r *fakeBookingRepo) ReserveAtomic(ctx context.Context, booking *entity.Booking, capacity int) error {
	lock := r.slotLock(booking.SlotDate, booking.SlotTime)
	lock.Lock()
	defer lock.Unlock()

	// Count and insert are separate critical sections, like separate SQL
	// statements: only the slot lock makes the pair atomic.
	r.mu.Lock()
	occupied := r.activeAtLocked(booking.SlotDate, booking.SlotTime, uuid.Nil)
	r.mu.Unlock()

	if occupied >= capacity {
		return fmt.Errorf("slot %s %s: %w", booking.SlotDate.Format("2006-01-02"), booking.SlotTime, entity.ErrSlotTaken)
	}

	copied := *booking
	r.mu.Lock()
	r.bookings[booking.ID] = &copied
	r.mu.Unlock()
	return nil
}

func (r *fakeBookingRepo) MoveAtomic(ctx context.Context, bookingID uuid.UUID, newDate time.Time, newTime string, status *entity.BookingStatus, capacity int) (*entity.Booking, error) {
	lock := r.slotLock(newDate, newTime)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	_, ok := r.bookings[bookingID]
	occupied := r.activeAtLocked(newDate, newTime, bookingID)
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("move booking: %w", entity.ErrBookingNotFound)
	}
	if occupied >= capacity {
		return nil, fmt.Errorf("slot %s %s: %w", newDate.Format("2006-01-02"), newTime, entity.ErrSlotTaken)
	}

	r.mu.Lock()
	booking := r.bookings[bookingID]
	booking.SlotDate = newDate
	booking.SlotTime = newTime
	if status != nil {
		booking.Status = *status
	}
	booking.UpdatedAt = time.Now()
	copied := *booking
	r.mu.Unlock()
	return &copied, nil
}

func (r *fakeBookingRepo) DueForCheckpoint(ctx context.Context, checkpoint entity.ReminderCheckpoint, now time.Time) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*entity.Booking
	for _, b := range r.bookings {
		start := b.StartsAt()
		match := false
		switch checkpoint {
		case entity.Checkpoint24hBefore:
			match = b.IsActive() && !b.Reminder24hSent && start.After(now) && !start.After(now.Add(24*time.Hour))
		case entity.Checkpoint1hBefore:
			match = b.IsActive() && !b.Reminder1hSent && start.After(now) && !start.After(now.Add(time.Hour))
		case entity.CheckpointFollowup:
			match = b.Status == entity.BookingStatusCompleted && !b.FollowupSent && !start.After(now.Add(-24*time.Hour))
		}
		if match {
			copied := *b
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (r *fakeBookingRepo) MarkReminderSent(ctx context.Context, bookingID uuid.UUID, checkpoint entity.ReminderCheckpoint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[bookingID]
	if !ok {
		return false, nil
	}
	switch checkpoint {
	case entity.Checkpoint24hBefore:
		if booking.Reminder24hSent {
			return false, nil
		}
		booking.Reminder24hSent = true
	case entity.Checkpoint1hBefore:
		if booking.Reminder1hSent {
			return false, nil
		}
		booking.Reminder1hSent = true
	case entity.CheckpointFollowup:
		if booking.FollowupSent {
			return false, nil
		}
		booking.FollowupSent = true
	}
	return true, nil
}

type fakeSlotConfigRepo struct {
	configs map[int]*entity.TimeSlotConfig
}

func (r *fakeSlotConfigRepo) FindActiveByDay(ctx context.Context, dayOfWeek int) (*entity.TimeSlotConfig, error) {
	cfg, ok := r.configs[dayOfWeek]
	if !ok || !cfg.Active {
		return nil, nil
	}
	return cfg, nil
}

func (r *fakeSlotConfigRepo) FindAll(ctx context.Context) ([]*entity.TimeSlotConfig, error) {
	var out []*entity.TimeSlotConfig
	for _, cfg := range r.configs {
		out = append(out, cfg)
	}
	return out, nil
}

type fakeBlockedDateRepo struct {
	blocks map[string][]*entity.BlockedDate
}

func (r *fakeBlockedDateRepo) FindByDate(ctx context.Context, date time.Time) ([]*entity.BlockedDate, error) {
	return r.blocks[date.Format("2006-01-02")], nil
}

// fakeNotifier records fan-out activity. Lifecycle pushes happen on
// detached goroutines, so events are signalled through a channel.
type fakeNotifier struct {
	mu         sync.Mutex
	events     []notification.Event
	messages   []string
	enqueueErr error
	signal     chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{signal: make(chan struct{}, 16)}
}

func (n *fakeNotifier) NotifyRole(role string, event notification.Event) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
	n.signal <- struct{}{}
}

func (n *fakeNotifier) EnqueueMessage(ctx context.Context, kind string, booking *entity.Booking, recipient string) error {
	if n.enqueueErr != nil {
		return n.enqueueErr
	}
	n.mu.Lock()
	n.messages = append(n.messages, kind+":"+recipient)
	n.mu.Unlock()
	return nil
}

func (n *fakeNotifier) snapshot() (events []notification.Event, messages []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Event(nil), n.events...), append([]string(nil), n.messages...)
}

func (n *fakeNotifier) waitForEvent(timeout time.Duration) (notification.Event, bool) {
	select {
	case <-n.signal:
	case <-time.After(timeout):
		return notification.Event{}, false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1], true
}

// ---- test fixture helpers ----

func weekdayConfig(capacity int) *fakeSlotConfigRepo {
	configs := make(map[int]*entity.TimeSlotConfig)
	for day := 0; day < 7; day++ {
		configs[day] = &entity.TimeSlotConfig{
			Base:         entity.Base{ID: uuid.New()},
			DayOfWeek:    day,
			StartTime:    "09:00",
			EndTime:      "12:00",
			SlotDuration: 30,
			Capacity:     capacity,
			Active:       true,
		}
	}
	return &fakeSlotConfigRepo{configs: configs}
}

func testRepository(capacity int) (*repository.Repository, *fakeBookingRepo) {
	bookings := newFakeBookingRepo()
	return &repository.Repository{
		Booking:     bookings,
		SlotConfig:  weekdayConfig(capacity),
		BlockedDate: &fakeBlockedDateRepo{blocks: map[string][]*entity.BlockedDate{}},
	}, bookings
}

func testConfig() *utils.Config {
	return &utils.Config{
		Booking: utils.BookingConfig{DefaultCapacity: 1},
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// futureDate returns a date a week out, at midnight UTC, matching the
// layout ParseDate produces.
func futureDate() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func validReserveRequest(date time.Time, slotTime string) *request.ReserveRequest {
	return &request.ReserveRequest{
		ClientName:  "Ihzha Nabilla",
		ClientEmail: "ihzha@example.com",
		ClientPhone: "+6281234567890",
		Date:        date.Format("2006-01-02"),
		Time:        slotTime,
		Modality:    "remote",
	}
}
