package location

import "fmt"

// Store is an ordered collection of locations. Iteration order is insertion order
// until AssignIDs freezes the store; after that every location's ID equals its
// position and the store rejects mutation.
type Store struct {
	items  []Location
	frozen bool
}

// NewStore returns a store holding locs in order.
func NewStore(locs ...Location) *Store {
	s := &Store{items: make([]Location, 0, len(locs))}
	for _, l := range locs {
		l.ID = Unassigned
		s.items = append(s.items, l)
	}
	return s
}

// Add appends a location and returns its position.
func (s *Store) Add(l Location) (int, error) {
	if s.frozen {
		return 0, ErrFrozen
	}
	if err := l.Validate(); err != nil {
		return 0, err
	}
	l.ID = Unassigned
	s.items = append(s.items, l)
	return len(s.items) - 1, nil
}

// Len returns the number of locations.
func (s *Store) Len() int {
	return len(s.items)
}

// At returns the location at position i.
func (s *Store) At(i int) Location {
	return s.items[i]
}

// All returns a copy of the locations in iteration order.
func (s *Store) All() []Location {
	out := make([]Location, len(s.items))
	copy(out, s.items)
	return out
}

// Replace swaps the contents for locs, as done after a clustering pass.
func (s *Store) Replace(locs []Location) error {
	if s.frozen {
		return ErrFrozen
	}
	s.items = s.items[:0]
	for _, l := range locs {
		l.ID = Unassigned
		s.items = append(s.items, l)
	}
	return nil
}

// AssignIDs gives every location ID = position and freezes the store. It may be
// called only once.
func (s *Store) AssignIDs() error {
	if s.frozen {
		return fmt.Errorf("assigning ids: %w", ErrFrozen)
	}
	for i := range s.items {
		s.items[i].ID = i
	}
	s.frozen = true
	return nil
}

// Frozen reports whether IDs have been assigned.
func (s *Store) Frozen() bool {
	return s.frozen
}

// CountByRole tallies locations per role.
func (s *Store) CountByRole() map[Role]int {
	counts := make(map[Role]int)
	for _, l := range s.items {
		counts[l.Role]++
	}
	return counts
}
