package types

import (
	"errors"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
)

// ------------------------------
// Validation
// ------------------------------

var genderRule = validation.In(GenderMale, GenderFemale).Error("must be either 'male' or 'female'")

// positive rejects zero and negative values; Required catches the zero value
// because ozzo threshold rules skip empty inputs.
func positive(msg string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(msg),
		validation.Min(0.0).Exclusive().Error(msg),
		finite,
	}
}

// finite rejects NaN and infinities, which JSON cannot carry.
var finite = validation.By(func(value interface{}) error {
	f, ok := value.(float64)
	if ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return errors.New("must be a finite number")
	}
	return nil
})

// Validate checks the optional image metadata. Only supplied fields are
// checked; zero values are left to server defaults.
func (s AvatarSpec) Validate() error {
	if s.Height < 0 {
		return sdkerrors.Invalidf("height", "must be a positive integer")
	}
	if s.Weight < 0 {
		return sdkerrors.Invalidf("weight", "must be a positive integer")
	}
	if err := validation.Validate(s.Gender, genderRule); err != nil {
		return sdkerrors.NewValidationError("gender", err)
	}
	return nil
}

// Validate checks a measurement-based creation request.
func (r CreateFromMeasurementsRequest) Validate() error {
	if err := validation.Validate(strings.TrimSpace(r.Name), validation.Required.Error("avatar name is required")); err != nil {
		return sdkerrors.NewValidationError("name", err)
	}
	if err := validation.Validate(r.Gender, validation.Required.Error("gender is required"), genderRule); err != nil {
		return sdkerrors.NewValidationError("gender", err)
	}
	return r.Measurements.Validate()
}

// Validate checks that every name belongs to the measurement vocabulary and
// every value is positive. At least one measurement must be supplied.
func (m Measurements) Validate() error {
	if len(m) == 0 {
		return sdkerrors.Invalidf("measurements", "at least one measurement is required")
	}
	keys := make([]*validation.KeyRules, 0, len(MeasurementNames))
	for _, name := range MeasurementNames {
		keys = append(keys, validation.Key(name, positive("must be a positive number")...).Optional())
	}
	if err := validation.Validate(map[string]float64(m), validation.Map(keys...)); err != nil {
		return sdkerrors.NewValidationError("measurements", err)
	}
	return nil
}

// ValidateIDPresent returns a ValidationError if id is empty.
func ValidateIDPresent(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return sdkerrors.Invalidf(field, "is required")
	}
	return nil
}

// ValidatePage checks list paging arguments.
func ValidatePage(page, pageSize int) error {
	atLeastOne := []validation.Rule{
		validation.Required.Error("must be >= 1"),
		validation.Min(1).Error("must be >= 1"),
	}
	if err := validation.Validate(page, atLeastOne...); err != nil {
		return sdkerrors.NewValidationError("page", err)
	}
	if err := validation.Validate(pageSize, atLeastOne...); err != nil {
		return sdkerrors.NewValidationError("pageSize", err)
	}
	return nil
}

// Validate checks the poll loop options after defaults have been applied.
func (o DownloadOptions) Validate() error {
	if o.PollInterval < 0 {
		return sdkerrors.Invalidf("pollInterval", "must not be negative")
	}
	if o.MaxAttempts < 1 {
		return sdkerrors.Invalidf("maxAttempts", "must be >= 1")
	}
	return nil
}
