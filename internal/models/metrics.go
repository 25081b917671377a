package models

import "time"

// MetricsSnapshot aggregates counters for the JSON metrics summary.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	ActiveSessions           int64     `json:"activeSessions"`
	DraftSaves               uint64    `json:"draftSaves"`
	DraftSaveFailures        uint64    `json:"draftSaveFailures"`
	StepsAdvanced            uint64    `json:"stepsAdvanced"`
	StepsBlocked             uint64    `json:"stepsBlocked"`
	Redirects                uint64    `json:"redirects"`
	SubmissionsSucceeded     uint64    `json:"submissionsSucceeded"`
	SubmissionsFailed        uint64    `json:"submissionsFailed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
