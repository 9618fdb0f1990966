package service

import (
	"context"
	"log"

	"spectra/internal/domain"
	"spectra/internal/secret"
	"spectra/internal/settings"
)

// SettingsService fronts the settings store for the shell: it resolves the
// connection profile (with the password from the secret store when the file
// has none) and tells the frontend about external edits.
type SettingsService struct {
	store   *settings.Store
	secrets secret.SecretStore
	emitter EventEmitter
}

// NewSettingsService creates a SettingsService. secrets may be nil.
func NewSettingsService(store *settings.Store, secrets secret.SecretStore, emitter EventEmitter) *SettingsService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &SettingsService{store: store, secrets: secrets, emitter: emitter}
}

// Store exposes the underlying store.
func (s *SettingsService) Store() *settings.Store { return s.store }

// Load returns the current record and how it was obtained.
func (s *SettingsService) Load() settings.LoadResult { return s.store.Load() }

// Get returns the value for key or def.
func (s *SettingsService) Get(key string, def any) any { return s.store.Get(key, def) }

// Set stores a value and notifies the frontend when the write happened.
func (s *SettingsService) Set(ctx context.Context, key string, value any) bool {
	if key == settings.KeyPassword && s.secrets != nil {
		if err := s.secrets.Set(secret.DBPasswordKey, []byte(toSecret(value))); err == nil {
			// Keep the password out of the plain-text file.
			value = ""
		} else {
			log.Printf("[SETTINGS] secret store unavailable, keeping password in file: %v", err)
		}
	}
	ok := s.store.Set(key, value)
	if ok {
		s.emitter.Emit(ctx, EventSettingsChanged, map[string]any{"key": key})
	}
	return ok
}

// Unset removes a key and notifies the frontend when the write happened.
func (s *SettingsService) Unset(ctx context.Context, key string) bool {
	ok := s.store.Unset(key)
	if ok {
		s.emitter.Emit(ctx, EventSettingsChanged, map[string]any{"key": key})
	}
	return ok
}

// Profile derives the connection profile, filling an empty password from the
// secret store.
func (s *SettingsService) Profile() domain.Profile {
	p := s.store.Profile()
	if p.Password != "" || s.secrets == nil {
		return p
	}
	pw, err := s.secrets.Get(secret.DBPasswordKey)
	if err != nil {
		log.Printf("[SETTINGS] read password from secret store: %v", err)
		return p
	}
	p.Password = string(pw)
	return p
}

// Watch forwards external edits of the settings file to the frontend and to
// onChange (which may be nil).
func (s *SettingsService) Watch(ctx context.Context, onChange func(settings.LoadResult)) error {
	return s.store.Watch(ctx, func(res settings.LoadResult) {
		log.Printf("[SETTINGS] file changed on disk (%s)", res.Status)
		s.emitter.Emit(ctx, EventSettingsChanged, map[string]any{"status": res.Status.String()})
		if onChange != nil {
			onChange(res)
		}
	})
}

func toSecret(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
