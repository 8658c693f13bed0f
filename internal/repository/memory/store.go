// Package memory хранилище в памяти процесса с теми же контрактами,
// что и postgres репозитории. Используется в тестах и при STORAGE=memory.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/google/uuid"
)

type reservationKey struct {
	mentorID int64
	date     string
	start    int
	end      int
}

func keyOf(k model.SlotKey) reservationKey {
	return reservationKey{mentorID: k.MentorID, date: model.FormatDate(k.Date), start: k.Range.Start, end: k.Range.End}
}

// Store общее состояние. Репозитории получаются через Mentors,
// Availability и Bookings.
type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	mentors      map[int64]*model.Mentor
	pricing      map[int64]*model.PricingRule
	templates    map[int64]*model.AvailabilityTemplate
	bookings     map[uuid.UUID]*model.Booking
	reservations map[reservationKey]uuid.UUID
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{
		now:          time.Now,
		mentors:      make(map[int64]*model.Mentor),
		pricing:      make(map[int64]*model.PricingRule),
		templates:    make(map[int64]*model.AvailabilityTemplate),
		bookings:     make(map[uuid.UUID]*model.Booking),
		reservations: make(map[reservationKey]uuid.UUID),
	}
}

// MentorRepository менторы и их тарифы
type MentorRepository struct{ s *Store }

// AvailabilityRepository еженедельные шаблоны
type AvailabilityRepository struct{ s *Store }

// BookingRepository бронирования и резервации слотов
type BookingRepository struct{ s *Store }

func (s *Store) Mentors() *MentorRepository { return &MentorRepository{s: s} }

func (s *Store) Availability() *AvailabilityRepository { return &AvailabilityRepository{s: s} }

func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// SetClock подменяет источник времени для created_at/cancelled_at
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Mentors

func (r *MentorRepository) Create(_ context.Context, mentor *model.Mentor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.mentors[mentor.ID]; ok {
		mentor.CreatedAt = existing.CreatedAt
	} else {
		mentor.CreatedAt = r.s.now()
	}
	stored := *mentor
	r.s.mentors[mentor.ID] = &stored
	return nil
}

func (r *MentorRepository) GetByID(_ context.Context, id int64) (*model.Mentor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.mentors[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *MentorRepository) ListIDs(_ context.Context) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]int64, 0, len(r.s.mentors))
	for id := range r.s.mentors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *MentorRepository) GetPricing(_ context.Context, mentorID int64) (*model.PricingRule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rule, ok := r.s.pricing[mentorID]
	if !ok {
		return nil, nil
	}
	return clonePricing(rule), nil
}

func (r *MentorRepository) UpsertPricing(_ context.Context, rule *model.PricingRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := clonePricing(rule)
	stored.GranularityMinutes = rule.Granularity()
	r.s.pricing[rule.MentorID] = stored
	return nil
}

func clonePricing(rule *model.PricingRule) *model.PricingRule {
	c := *rule
	c.Rates = make(map[model.SessionMode]int64, len(rule.Rates))
	for k, v := range rule.Rates {
		c.Rates[k] = v
	}
	return &c
}

// Availability

func (r *AvailabilityRepository) GetTemplate(_ context.Context, mentorID int64) (*model.AvailabilityTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tpl, ok := r.s.templates[mentorID]
	if !ok {
		return model.NewAvailabilityTemplate(mentorID), nil
	}
	return tpl.Clone(), nil
}

func (r *AvailabilityRepository) ReplaceDays(_ context.Context, mentorID int64, days map[model.Weekday][]model.TimeRange) (*model.AvailabilityTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tpl, ok := r.s.templates[mentorID]
	if ok {
		tpl = tpl.Clone()
	} else {
		tpl = model.NewAvailabilityTemplate(mentorID)
	}

	for w, ranges := range days {
		tpl.Days[w].Ranges = append([]model.TimeRange{}, ranges...)
	}
	tpl.Version++
	tpl.UpdatedAt = r.s.now()

	r.s.templates[mentorID] = tpl
	return tpl.Clone(), nil
}

// Bookings

func (r *BookingRepository) Reserve(_ context.Context, booking *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOf(booking.Key())
	if _, taken := r.s.reservations[key]; taken {
		return scheduling.ErrSlotAlreadyBooked
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = r.s.now()

	stored := *booking
	r.s.bookings[booking.ID] = &stored
	r.s.reservations[key] = booking.ID
	return nil
}

func (r *BookingRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *BookingRepository) GetActiveByKey(_ context.Context, key model.SlotKey) (*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.reservations[keyOf(key)]
	if !ok {
		return nil, nil
	}
	c := *r.s.bookings[id]
	return &c, nil
}

func (r *BookingRepository) ListReservedKeys(_ context.Context, mentorID int64, from, to time.Time) ([]model.SlotKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	fromStr, toStr := model.FormatDate(from), model.FormatDate(to)
	var keys []model.SlotKey
	for k, id := range r.s.reservations {
		if k.mentorID != mentorID || k.date < fromStr || k.date > toStr {
			continue
		}
		b := r.s.bookings[id]
		keys = append(keys, model.SlotKey{MentorID: mentorID, Date: b.Date, Range: b.Range})
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].Date.Equal(keys[j].Date) {
			return keys[i].Date.Before(keys[j].Date)
		}
		return keys[i].Range.Start < keys[j].Range.Start
	})
	return keys, nil
}

func (r *BookingRepository) Cancel(_ context.Context, id uuid.UUID) (*model.Booking, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, false, nil
	}
	changed := b.IsActive()
	if changed {
		now := r.s.now()
		b.Status = model.BookingStatusCancelled
		b.CancelledAt = &now
		delete(r.s.reservations, keyOf(b.Key()))
	}
	c := *b
	return &c, changed, nil
}

func (r *BookingRepository) ListByMentor(_ context.Context, mentorID int64) ([]*model.Booking, error) {
	return r.listBookings(func(b *model.Booking) bool { return b.MentorID == mentorID }), nil
}

func (r *BookingRepository) ListByCustomer(_ context.Context, customerID int64) ([]*model.Booking, error) {
	return r.listBookings(func(b *model.Booking) bool { return b.CustomerID == customerID }), nil
}

func (r *BookingRepository) listBookings(match func(*model.Booking) bool) []*model.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Booking
	for _, b := range r.s.bookings {
		if match(b) {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Range.Start < out[j].Range.Start
	})
	return out
}
