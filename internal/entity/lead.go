package entity

import (
	"context"
	"time"
)

// Lead statuses. StatusDeleted is a soft-delete marker used by backends
// that cannot physically remove a row (append-only spreadsheet).
const (
	StatusNew        = "new"
	StatusContacted  = "contacted"
	StatusInProgress = "in_progress"
	StatusQuoted     = "quoted"
	StatusConverted  = "converted"
	StatusLost       = "lost"
	StatusDeleted    = "deleted"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusInProgress, StatusQuoted,
		StatusConverted, StatusLost, StatusDeleted:
		return true
	}
	return false
}

type Lead struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username,omitempty"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	ServiceType    string    `json:"service_type"`
	Budget         string    `json:"budget"`
	Timeline       string    `json:"timeline"`
	CompanyName    string    `json:"company_name"`
	ContactName    string    `json:"contact_name"`
	ContactPhone   string    `json:"contact_phone"`
	ContactEmail   string    `json:"contact_email"`
	AdditionalInfo string    `json:"additional_info"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// SaveResult reports the outcome of a Save call. Backend failures are
// carried in Success/Message instead of an error so the conversation
// flow that triggered the save never has to unwind.
type SaveResult struct {
	ID      string `json:"lead_id,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LeadRepository is implemented by every storage backend. Operations are
// independent network calls; there is no cross-operation transaction.
// Delete may be implemented as a status update when the backend cannot
// remove rows, in which case the lead stays visible to Get and List.
type LeadRepository interface {
	Save(ctx context.Context, lead *Lead) SaveResult
	Get(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, limit, offset int) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id, status string) bool
	Delete(ctx context.Context, id string) bool
}

type NotFoundError struct {
	Msg string
}

func (e NotFoundError) Error() string { return e.Msg }

// ErrLeadNotFound is returned by Get when no lead exists for the id.
var ErrLeadNotFound = NotFoundError{"lead not found"}
