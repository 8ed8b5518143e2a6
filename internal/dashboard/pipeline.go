package dashboard

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

// SortKey selects the ordering of the dashboard list.
type SortKey string

const (
	SortDateDesc SortKey = "date_desc"
	SortDateAsc  SortKey = "date_asc"
	SortNameAsc  SortKey = "nom_asc"
	SortNameDesc SortKey = "nom_desc"
	SortStatus   SortKey = "statut"
)

// SortKeys lists the accepted keys, default first.
var SortKeys = []SortKey{SortDateDesc, SortDateAsc, SortNameAsc, SortNameDesc, SortStatus}

// View is the filter, search and sort state of the list.
type View struct {
	Status models.Status `form:"status" json:"status,omitempty"`
	Search string        `form:"search" json:"search,omitempty"`
	Sort   SortKey       `form:"sort" json:"sort,omitempty"`
}

// Apply returns the records matching view in view order. The input slice
// is never modified. An empty sort key means date_desc; an unknown key
// keeps input order.
func Apply(records []models.Inscription, view View) []models.Inscription {
	search := strings.ToLower(strings.TrimSpace(view.Search))

	out := make([]models.Inscription, 0, len(records))
	for _, r := range records {
		if view.Status != "" && r.Status != view.Status {
			continue
		}
		if search != "" && !matches(r, search) {
			continue
		}
		out = append(out, r)
	}

	if less := comparator(view.Sort, out); less != nil {
		sort.SliceStable(out, less)
	}
	return out
}

func matches(r models.Inscription, needle string) bool {
	return strings.Contains(strings.ToLower(r.FullName), needle) ||
		strings.Contains(strings.ToLower(r.Code), needle) ||
		strings.Contains(strings.ToLower(r.Unit), needle)
}

func comparator(key SortKey, out []models.Inscription) func(i, j int) bool {
	switch key {
	case "", SortDateDesc:
		return func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) }
	case SortDateAsc:
		return func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) }
	case SortNameAsc:
		col := collate.New(language.French)
		return func(i, j int) bool { return col.CompareString(out[i].FullName, out[j].FullName) < 0 }
	case SortNameDesc:
		col := collate.New(language.French)
		return func(i, j int) bool { return col.CompareString(out[j].FullName, out[i].FullName) < 0 }
	case SortStatus:
		// byte order of the labels, not workflow order
		return func(i, j int) bool { return out[i].Status < out[j].Status }
	}
	return nil
}

// ValidSort reports whether key is a known sort key or empty.
func ValidSort(key SortKey) bool {
	if key == "" {
		return true
	}
	for _, k := range SortKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Count tallies records per workflow status.
func Count(records []models.Inscription) models.Stats {
	stats := models.Stats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.StatusReceived:
			stats.Received++
		case models.StatusRequestSent:
			stats.RequestSent++
		case models.StatusAccepted:
			stats.Accepted++
		case models.StatusRefused:
			stats.Refused++
		case models.StatusTransmitted:
			stats.Transmitted++
		}
	}
	return stats
}
