package catalog

import (
	"errors"
	"fmt"
	"strings"

	"bookminton/pkg/logger"
	"bookminton/pkg/model"
	"bookminton/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("catalog validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type DocumentValidator struct {
	validate *validator.Validate
}

func NewDocumentValidator(log *logger.Logger) *DocumentValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'hhmm' validator",
			"error", err,
		)
	}

	return &DocumentValidator{
		validate: v,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := model.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func (v *DocumentValidator) Validate(doc *Document) error {
	if err := v.validate.Struct(doc); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(doc)
}

func (v *DocumentValidator) validateBusinessRules(doc *Document) error {
	var errs ValidationErrors

	sports := make(map[string]struct{}, len(doc.Sports))
	for i, s := range doc.Sports {
		if _, dup := sports[s.ID]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("Sports[%d].ID", i),
				Message: fmt.Sprintf("sport id %q is declared twice", s.ID),
			})
		}
		sports[s.ID] = struct{}{}
	}

	venueKeys := make(map[string]struct{}, len(doc.Venues))
	for i, vd := range doc.Venues {
		field := fmt.Sprintf("Venues[%d]", i)

		key := vd.ID
		if key == "" {
			key = sanitizer.SanitizeKey(vd.Name)
		}
		if _, dup := venueKeys[key]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".Name",
				Message: fmt.Sprintf("venue %q is declared twice", vd.Name),
			})
		}
		venueKeys[key] = struct{}{}

		open, _ := model.ParseTimeOfDay(vd.Open)
		closing, _ := model.ParseEndTime(vd.Close)
		if !(model.OpenHours{Open: open, Close: closing}).Valid() {
			errs = append(errs, ValidationError{
				Field:   field + ".Close",
				Message: fmt.Sprintf("closing time %s must be after opening time %s", closing, open),
			})
		}

		courtKeys := make(map[string]struct{}, len(vd.Courts))
		for j, cd := range vd.Courts {
			courtField := fmt.Sprintf("%s.Courts[%d]", field, j)

			ckey := cd.ID
			if ckey == "" {
				ckey = sanitizer.SanitizeKey(cd.Number)
			}
			if _, dup := courtKeys[ckey]; dup {
				errs = append(errs, ValidationError{
					Field:   courtField + ".Number",
					Message: fmt.Sprintf("court %q is declared twice in venue %q", cd.Number, vd.Name),
				})
			}
			courtKeys[ckey] = struct{}{}

			for k, pd := range cd.Sports {
				if _, ok := sports[pd.Sport]; !ok {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.Sports[%d].Sport", courtField, k),
						Message: fmt.Sprintf("unknown sport %q", pd.Sport),
					})
				}
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *DocumentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must have at least %s entries", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s cannot be negative", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "hhmm":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   strings.TrimPrefix(err.Namespace(), "Document."),
			Message: message,
		})
	}

	return validationErrors
}
