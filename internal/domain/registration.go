package domain

import "time"

// Registration is a tournament entry submitted through the website form.
type Registration struct {
	ID           string    `json:"id"`
	Reference    string    `json:"reference"`
	TournamentID string    `json:"tournament_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Rating       *int      `json:"rating,omitempty"`
	Section      string    `json:"section,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
