package entity

import "time"

// SyncSummary is the outcome of one sync run
type SyncSummary struct {
	RunID          string    `json:"runId"`
	Purpose        string    `json:"purpose"`
	TotalProcessed int       `json:"totalProcessed"`
	Added          int       `json:"added"`
	Skipped        int       `json:"skipped"`
	Unparsed       int       `json:"unparsed"`
	Failed         int       `json:"failed"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	Error          string    `json:"error,omitempty"`
}

// ReminderResult summarises an advance reminder run
type ReminderResult struct {
	Total  int             `json:"total"`
	Sent   int             `json:"sent"`
	Failed int             `json:"failed"`
	Errors []ReminderError `json:"errors"`
}

// ReminderError records one failed reminder
type ReminderError struct {
	BookingID  string `json:"bookingId"`
	BookNumber string `json:"bookNumber"`
	Error      string `json:"error"`
}
