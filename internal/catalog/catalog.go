// Package catalog holds the user-facing text of the forum: event details,
// form and dashboard messages, and notification email templates.
package catalog

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var embedded []byte

// Template names.
const (
	TemplateNewInscription = "new_inscription"
	TemplateTest           = "test"
)

type Event struct {
	Name     string `toml:"name" json:"name"`
	Date     string `toml:"date" json:"date"`
	Time     string `toml:"time" json:"time"`
	Location string `toml:"location" json:"location"`
	Address  string `toml:"address" json:"address"`
}

type RegistrationMessages struct {
	NomRequired     string `toml:"nom_required"`
	NomMinLength    string `toml:"nom_min_length"`
	NomMaxLength    string `toml:"nom_max_length"`
	PrenomRequired  string `toml:"prenom_required"`
	PrenomMinLength string `toml:"prenom_min_length"`
	PrenomMaxLength string `toml:"prenom_max_length"`
	UORequired      string `toml:"uo_required"`
	UOMinLength     string `toml:"uo_min_length"`
	UOMaxLength     string `toml:"uo_max_length"`
	CPRequired      string `toml:"cp_required"`
	CPCharset       string `toml:"cp_charset"`
	CPTooShort      string `toml:"cp_too_short"`
	CPTooLong       string `toml:"cp_too_long"`
	CPFormat        string `toml:"cp_format"`
	CPUnverified    string `toml:"cp_unverified"`
	CPChecking      string `toml:"cp_checking"`
	CPAvailable     string `toml:"cp_available"`
	CPTaken         string `toml:"cp_taken"`
	CPExists        string `toml:"cp_exists"`
	SubmissionError string `toml:"submission_error"`
	SuccessTitle    string `toml:"success_title"`
	SuccessText     string `toml:"success_text"`
	SuccessContact  string `toml:"success_contact"`
}

type AdminMessages struct {
	EmailRequired      string `toml:"email_required"`
	PasswordRequired   string `toml:"password_required"`
	InvalidCredentials string `toml:"invalid_credentials"`
	SessionRequired    string `toml:"session_required"`
	LoadError          string `toml:"load_error"`
	StatusUpdated      string `toml:"status_updated"`
	UpdateError        string `toml:"update_error"`
	Deleted            string `toml:"deleted"`
	DeleteError        string `toml:"delete_error"`
	NotFound           string `toml:"not_found"`
	InvalidStatus      string `toml:"invalid_status"`
	InvalidEmail       string `toml:"invalid_email"`
	EmailUpdated       string `toml:"email_updated"`
	TestSending        string `toml:"test_sending"`
	TestSent           string `toml:"test_sent"`
	TestError          string `toml:"test_error"`
	EmailSimulation    string `toml:"email_simulation"`
	RateLimited        string `toml:"rate_limited"`
	EmptyState         string `toml:"empty_state"`
}

type Template struct {
	Subject string `toml:"subject"`
	Body    string `toml:"body"`
}

type Catalog struct {
	Event    Event `toml:"event"`
	Messages struct {
		Registration RegistrationMessages `toml:"registration"`
		Admin        AdminMessages        `toml:"admin"`
	} `toml:"messages"`
	Templates map[string]Template `toml:"templates"`
}

// Load parses a catalog document.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, name := range []string{TemplateNewInscription, TemplateTest} {
		if _, ok := c.Templates[name]; !ok {
			return nil, fmt.Errorf("catalog: missing template %q", name)
		}
	}
	return &c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(embedded)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Render fills the named template. Event placeholders are always available.
func (c *Catalog) Render(name string, data map[string]string) (subject, body string, err error) {
	tpl, ok := c.Templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}
	merged := map[string]string{
		"event_name":     c.Event.Name,
		"event_date":     c.Event.Date,
		"event_time":     c.Event.Time,
		"event_location": c.Event.Location,
		"event_address":  c.Event.Address,
	}
	for k, v := range data {
		merged[k] = v
	}
	return Interpolate(tpl.Subject, merged), strings.TrimSpace(Interpolate(tpl.Body, merged)), nil
}

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Interpolate replaces {{key}} with data[key]. Unknown or empty keys are
// left as written.
func Interpolate(template string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		if v := data[key]; v != "" {
			return v
		}
		return match
	})
}

var paris = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// FormatDate renders t as dd/mm/yyyy hh:mm in Paris time.
func FormatDate(t time.Time) string {
	return t.In(paris).Format("02/01/2006 15:04")
}

// SanitizeString trims s and collapses internal whitespace runs to one space.
func SanitizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
