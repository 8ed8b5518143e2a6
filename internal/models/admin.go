package models

import "time"

// LoginRequest carries the admin credential pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the issued admin session marker.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type NotificationEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type TestNotificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TestNotificationResult is the inline status line shown after a test send.
type TestNotificationResult struct {
	Status  NotificationStatus `json:"status"`
	Message string             `json:"message"`
}

// InscriptionList is a filtered, sorted page of the dashboard with
// counters computed over the whole working set.
type InscriptionList struct {
	Items []Inscription `json:"items"`
	Stats Stats         `json:"stats"`
	Total int           `json:"total"`
}

// CodeCheck is the answer to a duplicate-code probe.
type CodeCheck struct {
	Code      string `json:"numero_cp"`
	Valid     bool   `json:"valid"`
	Available bool   `json:"available"`
	// Verified is false when storage could not be asked and the check failed open.
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// ExportFile is a rendered dashboard export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
