package service

import (
	"context"

	"spectra/internal/domain"
	"spectra/internal/samples"
)

// SampleService binds the sample selection to its file and tells the
// frontend when the list changes.
type SampleService struct {
	sel     *samples.Selection
	path    string
	emitter EventEmitter
}

// NewSampleService creates a SampleService persisting to path.
func NewSampleService(path string, emitter EventEmitter) *SampleService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &SampleService{sel: samples.NewSelection(), path: path, emitter: emitter}
}

// Open reloads the selection from disk, as when the dialog is shown.
func (s *SampleService) Open(ctx context.Context) []domain.SampleRow {
	s.sel.Load(s.path)
	return s.changed(ctx)
}

// Rows returns the current rows.
func (s *SampleService) Rows() []domain.SampleRow { return s.sel.Rows() }

// Add appends a row; see samples.Selection.Add for the rules.
func (s *SampleService) Add(ctx context.Context, row domain.SampleRow) (domain.SampleRow, error) {
	added, err := s.sel.Add(row)
	if err != nil {
		return domain.SampleRow{}, err
	}
	s.changed(ctx)
	return added, nil
}

// Delete removes the row with id.
func (s *SampleService) Delete(ctx context.Context, id string) bool {
	ok := s.sel.Delete(id)
	if ok {
		s.changed(ctx)
	}
	return ok
}

// DeleteAt removes the row at index.
func (s *SampleService) DeleteAt(ctx context.Context, index int) bool {
	ok := s.sel.DeleteAt(index)
	if ok {
		s.changed(ctx)
	}
	return ok
}

// Clear empties the selection.
func (s *SampleService) Clear(ctx context.Context) {
	s.sel.Clear()
	s.changed(ctx)
}

// Accept persists the selection and returns the final rows.
func (s *SampleService) Accept(ctx context.Context) []domain.SampleRow {
	rows := s.sel.Accept(s.path)
	s.emitter.Emit(ctx, EventSamplesChanged, rows)
	return rows
}

func (s *SampleService) changed(ctx context.Context) []domain.SampleRow {
	rows := s.sel.Rows()
	s.emitter.Emit(ctx, EventSamplesChanged, rows)
	return rows
}
