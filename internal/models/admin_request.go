package models

import "time"

// RequestStatus is the lifecycle state of an admin request
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// IsDecision reports whether s is a valid outcome for a pending request
func (s RequestStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// AdminRequest is a user's petition for admin rights
type AdminRequest struct {
	ID         int64         `db:"id" json:"id"`
	Nickname   string        `db:"nickname" json:"nickname"`
	Status     RequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	ReviewedBy *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// IsPending reports whether the request still awaits a decision
func (r *AdminRequest) IsPending() bool {
	return r.Status == StatusPending
}
