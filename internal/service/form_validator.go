package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
)

// emailAtom excludes every Unicode space, vertical tab and BOM along with @.
const emailAtom = `[^\s\v\p{Z}\x{85}\x{FEFF}@]+`

var (
	emailPattern = regexp.MustCompile(`^` + emailAtom + `@` + emailAtom + `\.` + emailAtom + `$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// contactDigits is the exact number of digits a contact number must carry.
const contactDigits = 10

// ErrorMap maps a form field (by its JSON name) to the message explaining why
// it was rejected. Fields that passed have no entry.
type ErrorMap map[string]string

// Valid reports whether no field failed.
func (m ErrorMap) Valid() bool {
	return len(m) == 0
}

// Clone returns an independent copy.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fieldMessages holds the user facing message per field and failing rule.
var fieldMessages = map[string]map[string]string{
	models.FieldName: {
		"notblank": "Student name is required",
	},
	models.FieldEmail: {
		"notblank":  "Email is required",
		"emailaddr": "Please enter a valid email address",
	},
	models.FieldContactNumber: {
		"notblank":  "Contact number is required",
		"contact10": "Please enter a valid 10-digit number",
	},
	models.FieldCourse: {
		"required": "Please select a course",
		"course":   "Please select a course",
	},
	models.FieldStatus: {
		"required":          "Please select a status",
		"enrollment_status": "Please select a status",
	},
}

// FormValidator checks enrollment candidates. Every field is checked on each
// call and at most one message is reported per field.
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator registers the enrollment rules on a fresh validator.
func NewFormValidator() *FormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimFunc(fl.Field().String(), isFormSpace) != ""
	})
	mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "contact10", func(fl validator.FieldLevel) bool {
		return len(NormalizeContactNumber(fl.Field().String())) == contactDigits
	})
	mustRegister(v, "course", func(fl validator.FieldLevel) bool {
		return models.Course(fl.Field().String()).Valid()
	})
	mustRegister(v, "enrollment_status", func(fl validator.FieldLevel) bool {
		return models.EnrollmentStatus(fl.Field().String()).Valid()
	})
	return &FormValidator{validate: v}
}

// Validate returns the per-field errors for candidate. An empty map means the
// candidate can be accepted.
func (f *FormValidator) Validate(candidate models.Candidate) ErrorMap {
	errs := ErrorMap{}
	err := f.validate.Struct(candidate)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: candidate is always a struct.
		panic(err)
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = messageFor(field, fe.Tag())
	}
	return errs
}

// NormalizeContactNumber strips every non-digit character. The result is only
// used for checking; stored records keep the number as typed.
func NormalizeContactNumber(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

func isFormSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func messageFor(field, tag string) string {
	if msg, ok := fieldMessages[field][tag]; ok {
		return msg
	}
	return "is invalid"
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}
