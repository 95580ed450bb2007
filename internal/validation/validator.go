// Package validation checks and normalizes form submissions for InfraTrack
// records before they reach storage.
//
// Every string field is trimmed of surrounding whitespace before it is
// validated, and the trimmed value is what gets stored. A submission either
// yields a complete set of accepted values or a per-field list of
// human-readable messages; there is no partial result.
//
// # Usage Example
//
//	v := validation.New()
//	fields, result := v.ValidateHost(validation.HostInput{
//	    Hostname:  " web-01 ",
//	    IPAddress: "10.0.0.1",
//	})
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        fmt.Printf("%s: %s\n", e.Field, e.Message)
//	    }
//	}
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"infratrack.io/infratrack/models"
)

// hostnamePattern matches a single DNS label: alphanumerics and hyphens,
// without a leading or trailing hyphen.
var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// Validator validates Host, Task and Change submissions.
type Validator struct {
	// structValidator validates Go struct constraints and tags
	structValidator *validator.Validate
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the form name of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// FieldErrors groups the error messages by field name.
func (r *ValidationResult) FieldErrors() map[string][]string {
	out := make(map[string][]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// HostInput is a raw Host form submission.
type HostInput struct {
	Hostname  string `form:"hostname" validate:"required,max=63,hostname_label"`
	IPAddress string `form:"ip_address" validate:"required,ip"`
	OS        string `form:"os" validate:"max=64"`
	Tags      string `form:"tags" validate:"max=255"`
}

// TaskInput is a raw Task form submission.
type TaskInput struct {
	HostID      string `form:"host_id" validate:"required"`
	Description string `form:"description" validate:"required,max=255"`
}

// ChangeInput is a raw Change form submission.
type ChangeInput struct {
	HostID  string `form:"host_id" validate:"required"`
	Summary string `form:"summary" validate:"required,max=255"`
}

// New creates a Validator with the InfraTrack custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the form field name rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("hostname_label", func(fl validator.FieldLevel) bool {
		return hostnamePattern.MatchString(fl.Field().String())
	})

	return &Validator{structValidator: v}
}

// ValidateHost trims and validates a Host submission.
func (v *Validator) ValidateHost(in HostInput) (models.HostFields, *ValidationResult) {
	in.Hostname = strings.TrimSpace(in.Hostname)
	in.IPAddress = strings.TrimSpace(in.IPAddress)
	in.OS = strings.TrimSpace(in.OS)
	in.Tags = strings.TrimSpace(in.Tags)

	result := v.check(in)
	if !result.Valid {
		return models.HostFields{}, result
	}

	return models.HostFields{
		Hostname:  in.Hostname,
		IPAddress: in.IPAddress,
		OS:        in.OS,
		Tags:      in.Tags,
	}, result
}

// ValidateTask trims and validates a Task submission. The host reference
// must name one of choices, which the caller queries just before validating.
func (v *Validator) ValidateTask(in TaskInput, choices []models.HostChoice) (models.TaskFields, *ValidationResult) {
	in.HostID = strings.TrimSpace(in.HostID)
	in.Description = strings.TrimSpace(in.Description)

	result := v.check(in)
	hostID := v.checkChoice(result, in.HostID, choices)
	if !result.Valid {
		return models.TaskFields{}, result
	}

	return models.TaskFields{HostID: hostID, Description: in.Description}, result
}

// ValidateChange trims and validates a Change submission. The host
// reference must name one of choices.
func (v *Validator) ValidateChange(in ChangeInput, choices []models.HostChoice) (models.ChangeFields, *ValidationResult) {
	in.HostID = strings.TrimSpace(in.HostID)
	in.Summary = strings.TrimSpace(in.Summary)

	result := v.check(in)
	hostID := v.checkChoice(result, in.HostID, choices)
	if !result.Valid {
		return models.ChangeFields{}, result
	}

	return models.ChangeFields{HostID: hostID, Summary: in.Summary}, result
}

func (v *Validator) check(in interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	err := v.structValidator.Struct(in)
	if err == nil {
		return result
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{Field: "form", Message: err.Error()})
		return result
	}

	for _, fe := range verrs {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   fe.Value(),
		})
	}
	return result
}

// checkChoice resolves a submitted host reference against the current
// choices. A missing reference has already been reported by check.
func (v *Validator) checkChoice(result *ValidationResult, raw string, choices []models.HostChoice) int64 {
	if raw == "" {
		return 0
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		for _, c := range choices {
			if c.ID == id {
				return id
			}
		}
	}

	result.Valid = false
	result.Errors = append(result.Errors, ValidationError{
		Field:   "host_id",
		Message: "Not a valid choice.",
		Value:   raw,
	})
	return 0
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "hostname_label":
		return "Invalid hostname. Use letters, digits and hyphens; no leading or trailing hyphen."
	case "ip":
		return "Invalid IP address."
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}
