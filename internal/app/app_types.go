package app

import "spectra/internal/domain"

// SampleView is a sample row as the frontend sees it, including the
// in-memory id used for deletion.
type SampleView struct {
	ID string `json:"id"`
	domain.SampleRow
}

// ProfileView is the frontend-safe view of the connection profile (no password).
type ProfileView struct {
	Driver     string `json:"driver"`
	Host       string `json:"host"`
	Server     string `json:"server"`
	Port       int    `json:"port"`
	Database   string `json:"database"`
	User       string `json:"user"`
	ODBCDriver string `json:"odbcDriver"`
	HasSecret  bool   `json:"hasPassword"`
}

// SettingsView is the whole settings record plus how it was obtained.
type SettingsView struct {
	Values map[string]any `json:"values"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
}

func toSampleViews(rows []domain.SampleRow) []SampleView {
	views := make([]SampleView, len(rows))
	for i, r := range rows {
		views[i] = SampleView{ID: r.ID, SampleRow: r}
	}
	return views
}

func toProfileView(p domain.Profile) ProfileView {
	return ProfileView{
		Driver:     string(p.Driver),
		Host:       p.Host,
		Server:     p.Server,
		Port:       p.Port,
		Database:   p.Database,
		User:       p.User,
		ODBCDriver: p.ODBCDriver,
		HasSecret:  p.Password != "",
	}
}
