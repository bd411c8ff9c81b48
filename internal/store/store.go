package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

var ErrDuplicateID = errors.New("duplicate candidate id")

// Patch lists the fields to merge into an existing record. Nil fields are left untouched.
type Patch struct {
	Name               *string
	Position           *string
	Status             *candidate.Status
	Phone              *string
	Email              *string
	Location           *string
	Skills             *string
	Experience         *string
	GhostingRisk       *candidate.Risk
	EngagementScore    *int
	ResponseRate       *int
	LastContact        *string
	ScheduledInterview *string
}

// Store is the ordered collection of candidates. Insertion order is the listing order.
// All mutations go through one mutex so callers never observe a partial update.
type Store struct {
	mu    sync.Mutex
	items []candidate.Record
	index map[int64]int
}

func New() *Store {
	return &Store{index: make(map[int64]int)}
}

func (s *Store) Insert(rec candidate.Record) error {
	return s.BulkInsert([]candidate.Record{rec})
}

// BulkInsert appends all records or none of them.
func (s *Store) BulkInsert(recs []candidate.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{}, len(recs))
	for _, rec := range recs {
		if _, ok := s.index[rec.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
		}
		if _, ok := seen[rec.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}

	for _, rec := range recs {
		s.index[rec.ID] = len(s.items)
		s.items = append(s.items, rec)
	}

	return nil
}

// Update merges p into the record with the given id. Unknown ids are ignored.
func (s *Store) Update(id int64, p Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return false
	}

	p.apply(&s.items[idx])
	return true
}

// Modify runs fn against the stored record under the store lock, for read-modify-write
// changes such as score bumps. fn must not change the id. Unknown ids are ignored.
func (s *Store) Modify(id int64, fn func(rec candidate.Record) Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return false
	}

	p := fn(s.items[idx])
	p.apply(&s.items[idx])
	return true
}

// Remove deletes the record. Removing an absent id is a no-op.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return false
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	delete(s.index, id)
	for i := idx; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}

	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[int64]int)
}

// Replace swaps the whole content, e.g. after loading a snapshot.
func (s *Store) Replace(recs []candidate.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := make(map[int64]int, len(recs))
	for i, rec := range recs {
		if _, ok := index[rec.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
		}
		index[rec.ID] = i
	}

	s.items = append([]candidate.Record(nil), recs...)
	s.index = index
	return nil
}

// List returns a fresh copy of all records in insertion order.
func (s *Store) List() []candidate.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]candidate.Record, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Get(id int64) (candidate.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return candidate.Record{}, false
	}
	return s.items[idx], true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (p Patch) apply(rec *candidate.Record) {
	setString(&rec.Name, p.Name)
	setString(&rec.Position, p.Position)
	setString(&rec.Phone, p.Phone)
	setString(&rec.Email, p.Email)
	setString(&rec.Location, p.Location)
	setString(&rec.Skills, p.Skills)
	setString(&rec.Experience, p.Experience)
	setString(&rec.LastContact, p.LastContact)
	setString(&rec.ScheduledInterview, p.ScheduledInterview)

	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.GhostingRisk != nil {
		rec.GhostingRisk = *p.GhostingRisk
	}
	if p.EngagementScore != nil {
		rec.EngagementScore = *p.EngagementScore
	}
	if p.ResponseRate != nil {
		rec.ResponseRate = *p.ResponseRate
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
