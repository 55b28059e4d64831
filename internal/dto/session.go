package dto

import (
	"time"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
)

// SessionResponse describes an open roster session.
type SessionResponse struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// FormChangeRequest carries field edits keyed by field name.
type FormChangeRequest map[string]string

// RosterResponse is the tabular listing, newest first.
type RosterResponse struct {
	Students []models.StudentRecord `json:"students"`
	Total    int                    `json:"total"`
}

// StatCard is one dashboard figure.
type StatCard struct {
	Title string `json:"title"`
	Value int    `json:"value"`
}

// StatsResponse holds the raw aggregates plus the cards shown on the page.
type StatsResponse struct {
	models.RosterStats
	Cards []StatCard `json:"cards"`
}

// NewStatsResponse builds the dashboard cards from stats.
func NewStatsResponse(stats models.RosterStats) StatsResponse {
	return StatsResponse{
		RosterStats: stats,
		Cards: []StatCard{
			{Title: "Total Students", Value: stats.Total},
			{Title: "Enrolled", Value: stats.ByStatus[models.EnrollmentStatusEnrolled]},
			{Title: "Courses", Value: stats.Courses},
		},
	}
}
