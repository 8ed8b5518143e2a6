package models

import "time"

// ConfigurationID is the fixed key of the single configuration row.
const ConfigurationID = "00000000-0000-0000-0000-000000000000"

// Configuration is the dashboard-editable settings record.
type Configuration struct {
	ID                string     `db:"id" json:"id"`
	NotificationEmail string     `db:"email_notification" json:"email_notification"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
