package service

import (
	"spectra/internal/settings"
)

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettingsService keeps the main window size in the settings file
// between sessions.
type WindowSettingsService struct {
	store *settings.Store
}

// NewWindowSettingsService creates a WindowSettingsService. store may be nil,
// in which case defaults are returned and saves are dropped.
func NewWindowSettingsService(store *settings.Store) *WindowSettingsService {
	return &WindowSettingsService{store: store}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	minWindowWidth      = 800
	minWindowHeight     = 600
)

// LoadWindowSize returns the saved window dimensions, or defaults when none
// are stored or they are below the minimum window size.
func (s *WindowSettingsService) LoadWindowSize() WindowSize {
	if s.store == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	w := s.store.GetInt(settingWindowWidth, defaultWindowWidth)
	h := s.store.GetInt(settingWindowHeight, defaultWindowHeight)
	if w < minWindowWidth {
		w = defaultWindowWidth
	}
	if h < minWindowHeight {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the window dimensions. Reports whether both writes happened.
func (s *WindowSettingsService) SaveWindowSize(width, height int) bool {
	if s.store == nil {
		return false
	}
	return s.store.Set(settingWindowWidth, int64(width)) &&
		s.store.Set(settingWindowHeight, int64(height))
}
