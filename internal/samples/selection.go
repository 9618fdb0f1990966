package samples

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"spectra/internal/domain"
)

// Capacity is the maximum number of rows a selection holds.
const Capacity = 100

var (
	// ErrCapacity is returned by Add when the selection is full.
	ErrCapacity = fmt.Errorf("sample selection is limited to %d rows", Capacity)
	// ErrInvalidRange is returned by Add when the end is not after the start
	// or either timestamp does not parse.
	ErrInvalidRange = errors.New("end of time range must be after its start")
)

// LoadStatus tells what Load found on disk.
type LoadStatus int

const (
	LoadStatusLoaded LoadStatus = iota
	LoadStatusMissing
	LoadStatusMalformed
)

// Selection is the ordered list of sample rows behind the selection dialog.
// Rows are addressed by their surrogate ID; order is insertion order.
type Selection struct {
	mu   sync.Mutex
	rows []domain.SampleRow
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Add validates candidate and appends it with a fresh ID.
// On error the selection is unchanged.
func (s *Selection) Add(candidate domain.SampleRow) (domain.SampleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) >= Capacity {
		return domain.SampleRow{}, ErrCapacity
	}
	if err := validateRange(candidate); err != nil {
		return domain.SampleRow{}, err
	}
	candidate.ID = uuid.New().String()
	s.rows = append(s.rows, candidate)
	return candidate, nil
}

func validateRange(r domain.SampleRow) error {
	start, err := r.Start()
	if err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidRange, err)
	}
	end, err := r.End()
	if err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidRange, err)
	}
	if !end.After(start) {
		return ErrInvalidRange
	}
	return nil
}

// Delete removes the row with the given ID. Reports whether a row was removed.
func (s *Selection) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.removeLocked(i)
			return true
		}
	}
	return false
}

// DeleteAt removes the row at index if it is in bounds.
func (s *Selection) DeleteAt(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.rows) {
		return false
	}
	s.removeLocked(index)
	return true
}

func (s *Selection) removeLocked(i int) {
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.rows = nil
	s.mu.Unlock()
}

// Rows returns a copy of the rows in order.
func (s *Selection) Rows() []domain.SampleRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SampleRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of rows.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Load replaces the selection with the rows stored at path. A missing file
// leaves the selection empty; a malformed one is logged and also leaves it
// empty. Loaded rows are not re-validated.
func (s *Selection) Load(path string) LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return LoadStatusMissing
	}
	if err != nil {
		log.Printf("[SAMPLES] read %s: %v", path, err)
		return LoadStatusMalformed
	}

	var rows []domain.SampleRow
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Printf("[SAMPLES] parse %s: %v", path, err)
		return LoadStatusMalformed
	}
	if len(rows) > Capacity {
		log.Printf("[SAMPLES] %s holds %d rows, keeping the first %d", path, len(rows), Capacity)
		rows = rows[:Capacity]
	}
	for i := range rows {
		rows[i].ID = uuid.New().String()
	}
	s.rows = rows
	return LoadStatusLoaded
}

// Save writes the whole selection to path as an indented JSON array.
func (s *Selection) Save(path string) error {
	rows := s.Rows()
	if rows == nil {
		rows = []domain.SampleRow{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode samples: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create samples dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// Accept persists the selection and returns the final rows. A failed write
// is logged; the rows are returned regardless.
func (s *Selection) Accept(path string) []domain.SampleRow {
	if err := s.Save(path); err != nil {
		log.Printf("[SAMPLES] accept: %v", err)
	}
	return s.Rows()
}
