package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SampleDateLayout and SampleTimeLayout are the literal string formats used in
// the sample selection file (dd.MM.yyyy and HH:mm, no timezone).
const (
	SampleDateLayout = "02.01.2006"
	SampleTimeLayout = "15:04"
)

// SampleRow is one product + time range entry of the sample selection.
// ID is assigned in memory when the row enters a selection and is not persisted.
type SampleRow struct {
	ID          string `json:"-"`
	ProductID   int64  `json:"product_id"`
	ProductText string `json:"product_text"`
	DateFrom    string `json:"date_from"`
	TimeFrom    string `json:"time_from"`
	DateTo      string `json:"date_to"`
	TimeTo      string `json:"time_to"`
}

// Start parses the start timestamp.
func (r SampleRow) Start() (time.Time, error) {
	return time.Parse(SampleDateLayout+" "+SampleTimeLayout, r.DateFrom+" "+r.TimeFrom)
}

// End parses the end timestamp.
func (r SampleRow) End() (time.Time, error) {
	return time.Parse(SampleDateLayout+" "+SampleTimeLayout, r.DateTo+" "+r.TimeTo)
}

// UnmarshalJSON accepts product_id both as a JSON number and as a numeric
// string, since the file format keeps every value textual.
func (r *SampleRow) UnmarshalJSON(data []byte) error {
	type plain SampleRow
	var aux struct {
		plain
		ProductID json.RawMessage `json:"product_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := parseProductID(aux.ProductID)
	if err != nil {
		return err
	}
	*r = SampleRow(aux.plain)
	r.ProductID = id
	return nil
}

func parseProductID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("product_id: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("product_id %s is not an integer", raw)
	}
	return id, nil
}
