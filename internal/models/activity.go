package models

import "time"

// Activity is a single auth audit event sent to the activity logger.
type Activity struct {
	Message string
	Object  any
	Filter  map[string]string
}

// TimeSeriesPoint is one bucket of the activity count-by-day aggregation.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// AccountActivityResponse is the caller's recent security activity.
type AccountActivityResponse struct {
	Entries []map[string]any  `json:"entries"`
	Daily   []TimeSeriesPoint `json:"daily"`
}
