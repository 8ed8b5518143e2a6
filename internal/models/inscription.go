package models

import "time"

// Status is the admin-controlled workflow state of a registration. The
// French labels are the stored values.
type Status string

const (
	StatusReceived    Status = "Demande reçue"
	StatusRequestSent Status = "Demande de dégagement demandée"
	StatusAccepted    Status = "Demande acceptée"
	StatusRefused     Status = "Demande refusée"
	StatusTransmitted Status = "Réponse transmise à l'agent"
)

// Statuses lists every workflow status in workflow order.
var Statuses = []Status{
	StatusReceived,
	StatusRequestSent,
	StatusAccepted,
	StatusRefused,
	StatusTransmitted,
}

// Valid reports whether s is one of the five workflow labels.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Inscription is one persisted registration.
type Inscription struct {
	ID         string     `db:"id" json:"id"`
	Code       string     `db:"numero_cp" json:"numero_cp"`
	LastName   string     `db:"nom" json:"nom"`
	FirstName  string     `db:"prenom" json:"prenom"`
	FullName   string     `db:"nom_prenom" json:"nom_prenom"`
	Unit       string     `db:"lieu_affectation_uo" json:"lieu_affectation_uo"`
	Status     Status     `db:"statut" json:"statut"`
	CreatedAt  time.Time  `db:"date_inscription" json:"date_inscription"`
	ModifiedAt *time.Time `db:"date_modification" json:"date_modification,omitempty"`
	Comment    *string    `db:"commentaires" json:"commentaires,omitempty"`
}

// CommentText returns the comment or an empty string.
func (i Inscription) CommentText() string {
	if i.Comment == nil {
		return ""
	}
	return *i.Comment
}

// FullNameOf joins family and given names the way nom_prenom is stored.
func FullNameOf(lastName, firstName string) string {
	return lastName + " " + firstName
}

// Registration is the registrant-supplied part of an inscription.
type Registration struct {
	LastName  string `json:"nom" validate:"required,min=2,max=100"`
	FirstName string `json:"prenom" validate:"required,min=2,max=100"`
	Code      string `json:"numero_cp" validate:"required,regcode"`
	Unit      string `json:"lieu_affectation_uo" validate:"required,min=2,max=100"`
}

// StatusUpdate carries the fields changed together by the status-edit workflow.
type StatusUpdate struct {
	Status     Status    `json:"statut" validate:"required,workflow_status"`
	Comment    string    `json:"commentaires" validate:"max=2000"`
	ModifiedAt time.Time `json:"date_modification"`
}

// Stats are the dashboard summary counters.
type Stats struct {
	Total       int `json:"total"`
	Received    int `json:"recues"`
	RequestSent int `json:"demandees"`
	Accepted    int `json:"acceptees"`
	Refused     int `json:"refusees"`
	Transmitted int `json:"transmises"`
}

// NotificationStatus describes the outcome of the best-effort email.
type NotificationStatus string

const (
	NotificationSent      NotificationStatus = "sent"
	NotificationQueued    NotificationStatus = "queued"
	NotificationFailed    NotificationStatus = "failed"
	NotificationSimulated NotificationStatus = "simulated"
	NotificationDisabled  NotificationStatus = "disabled"
)

// Receipt acknowledges a created registration.
type Receipt struct {
	Inscription  Inscription        `json:"inscription"`
	Notification NotificationStatus `json:"notification"`
}
