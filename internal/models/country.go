package models

import (
	"encoding/json"
	"time"
)

// Country is a stored historical series for one country code.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`

	// Series is the year-indexed history in split-orient JSON.
	Series json.RawMessage `json:"series"`

	UpdatedAt time.Time `json:"updated_at"`
}
