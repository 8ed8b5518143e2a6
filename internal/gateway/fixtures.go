package gateway

import (
	"time"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

// SimulatedTakenCodes are reported as registered when storage is unavailable.
var SimulatedTakenCodes = []string{"8710320P", "1234567A", "TESTCP01", "9999999Z"}

// Fixtures returns the demonstration dataset served when storage is
// unavailable or failing. Each call returns fresh values.
func Fixtures() []models.Inscription {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	ptrTime := func(s string) *time.Time {
		t := at(s)
		return &t
	}
	ptrString := func(s string) *string { return &s }

	return []models.Inscription{
		{
			ID:         "1",
			Code:       "8710320P",
			LastName:   "Karine",
			FirstName:  "Sud Rail",
			FullName:   "Karine Sud Rail",
			Unit:       "UO PCD-COGC",
			Status:     models.StatusReceived,
			CreatedAt:  at("2025-08-11T10:30:00Z"),
			ModifiedAt: ptrTime("2025-08-11T10:30:00Z"),
		},
		{
			ID:         "2",
			Code:       "1234567A",
			LastName:   "Jean",
			FirstName:  "Dupont",
			FullName:   "Jean Dupont",
			Unit:       "UO Lyon Part-Dieu",
			Status:     models.StatusRequestSent,
			CreatedAt:  at("2025-08-11T09:15:00Z"),
			ModifiedAt: ptrTime("2025-08-11T11:20:00Z"),
			Comment:    ptrString("Demande transmise au chef de service"),
		},
		{
			ID:         "3",
			Code:       "TESTCP01",
			LastName:   "Marie",
			FirstName:  "Martin",
			FullName:   "Marie Martin",
			Unit:       "UO Gare du Nord",
			Status:     models.StatusAccepted,
			CreatedAt:  at("2025-08-10T16:45:00Z"),
			ModifiedAt: ptrTime("2025-08-11T08:30:00Z"),
			Comment:    ptrString("Dégagement accordé par la hiérarchie"),
		},
	}
}
