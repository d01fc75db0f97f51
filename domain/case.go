// Package domain defines the core models shared by the server and the
// case/session client core.
package domain

import "time"

// CaseRecord is one saved clinical-history document. ID is server-assigned;
// a zero ID marks a case that has never been saved.
type CaseRecord struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"-"`
	Title     string       `json:"case_title"`
	Data      FormDocument `json:"case_data,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CaseSummary is the list-view projection of a CaseRecord. The full
// document is not included.
type CaseSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"case_title"`
	UpdatedAt time.Time `json:"updated_at"`
}
