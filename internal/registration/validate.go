package registration

import (
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
)

// Field names a form input. Values match the form's element ids.
type Field string

const (
	FieldLastName  Field = "nom"
	FieldFirstName Field = "prenom"
	FieldCode      Field = "numeroCP"
	FieldUnit      Field = "lieuAffectation"
)

// FieldOrder is the order fields are validated in on submit.
var FieldOrder = []Field{FieldLastName, FieldFirstName, FieldCode, FieldUnit}

const (
	MinCodeLength = 3
	MaxCodeLength = 10
	MinTextLength = 2
	MaxTextLength = 100
)

// CodeShape classifies a registration code before any lookup.
type CodeShape int

const (
	ShapeEmpty CodeShape = iota
	ShapeBadCharset
	ShapeTooShort
	ShapeTooLong
	ShapeValid
)

// NormalizeCode trims and upper-cases a registration code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ClassifyCode checks a raw code. The charset is tested before
// upper-casing so that no non-ASCII rune can fold into [A-Z].
func ClassifyCode(raw string) CodeShape {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ShapeEmpty
	}
	for i := 0; i < len(code); i++ {
		if !isAlnum(code[i]) {
			return ShapeBadCharset
		}
	}
	switch {
	case len(code) < MinCodeLength:
		return ShapeTooShort
	case len(code) > MaxCodeLength:
		return ShapeTooLong
	}
	return ShapeValid
}

func isAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// ValidCode reports whether raw normalizes to an acceptable code.
func ValidCode(raw string) bool {
	return ClassifyCode(raw) == ShapeValid
}

// CodeShapeMessage returns the message shown for a code shape, empty for
// ShapeValid. Too-short codes get an informational message.
func CodeShapeMessage(shape CodeShape, msgs catalog.RegistrationMessages) string {
	switch shape {
	case ShapeEmpty:
		return msgs.CPRequired
	case ShapeBadCharset:
		return msgs.CPCharset
	case ShapeTooShort:
		return msgs.CPTooShort
	case ShapeTooLong:
		return msgs.CPTooLong
	}
	return ""
}

// ValidateText applies the non-empty and length rules to a name or unit
// field and returns the field message, or "" when the value passes.
func ValidateText(field Field, value string, msgs catalog.RegistrationMessages) string {
	value = strings.TrimSpace(value)
	required, short, long := textMessages(field, msgs)
	if value == "" {
		return required
	}
	switch n := utf8.RuneCountInString(value); {
	case n < MinTextLength:
		return short
	case n > MaxTextLength:
		return long
	}
	return ""
}

func textMessages(field Field, msgs catalog.RegistrationMessages) (required, short, long string) {
	switch field {
	case FieldLastName:
		return msgs.NomRequired, msgs.NomMinLength, msgs.NomMaxLength
	case FieldFirstName:
		return msgs.PrenomRequired, msgs.PrenomMinLength, msgs.PrenomMaxLength
	default:
		return msgs.UORequired, msgs.UOMinLength, msgs.UOMaxLength
	}
}

var fieldsByName = map[string]Field{
	"nom":                 FieldLastName,
	"prenom":              FieldFirstName,
	"numero_cp":           FieldCode,
	"lieu_affectation_uo": FieldUnit,
}

// FieldFromName maps a payload field name, as reported by the API, to the
// form field it belongs to.
func FieldFromName(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}
