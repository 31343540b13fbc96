package models

import "time"

// PriceCandidate is a single extracted price with its provenance, as
// produced by one source before selection. It is never persisted.
type PriceCandidate struct {
	Price    float64 `json:"price"`
	URL      string  `json:"url"`
	Store    string  `json:"store"`
	StoreURL string  `json:"store_url"`
}

// TimerStatus is a snapshot of the recurring check schedule.
type TimerStatus struct {
	NextCheckTime      *time.Time    `json:"next_check_time"`
	TimeUntilNextCheck time.Duration `json:"time_until_next_check"`
}
