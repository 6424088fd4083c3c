package types

import "time"

// ------------------------------
// Request Types
// ------------------------------

// Measurement names accepted by the measurement-based creation endpoint.
// Lengths and girths are in centimeters, Weight in kilograms.
const (
	MeasureHeight          = "Height"
	MeasureWeight          = "Weight"
	MeasureBustGirth       = "Bust_girth"
	MeasureAnkleGirth      = "Ankle_girth"
	MeasureThighGirth      = "Thigh_girth"
	MeasureWaistGirth      = "Waist_girth"
	MeasureArmscyeGirth    = "Armscye_girth"
	MeasureTopHipGirth     = "Top_hip_girth"
	MeasureNeckBaseGirth   = "Neck_base_girth"
	MeasureShoulderLength  = "Shoulder_length"
	MeasureLowerArmLength  = "Lower_arm_length"
	MeasureUpperArmLength  = "Upper_arm_length"
	MeasureInsideLegHeight = "Inside_leg_height"
)

// MeasurementNames lists the full vocabulary in documentation order.
var MeasurementNames = []string{
	MeasureHeight,
	MeasureWeight,
	MeasureBustGirth,
	MeasureAnkleGirth,
	MeasureThighGirth,
	MeasureWaistGirth,
	MeasureArmscyeGirth,
	MeasureTopHipGirth,
	MeasureNeckBaseGirth,
	MeasureShoulderLength,
	MeasureLowerArmLength,
	MeasureUpperArmLength,
	MeasureInsideLegHeight,
}

// Measurements maps measurement names to positive values. Omitted names take
// server-side defaults.
type Measurements map[string]float64

// AvatarSpec holds the optional metadata sent with image-based creation.
// Zero values mean "not supplied".
type AvatarSpec struct {
	Name   string `json:"avatarname,omitempty"`
	Height int    `json:"height,omitempty"`
	Weight int    `json:"weight,omitempty"`
	Gender Gender `json:"gender,omitempty"`
}

// CreateFromImagesRequest holds parameters for image-based creation.
type CreateFromImagesRequest struct {
	ImagePaths []string
	AvatarSpec
}

// CreateFromMeasurementsRequest holds parameters for measurement-based creation.
type CreateFromMeasurementsRequest struct {
	Name         string       `json:"name"`
	Gender       Gender       `json:"gender"`
	Measurements Measurements `json:"measurements"`
}

// DownloadOptions controls the poll loop in Download. Zero values select
// the defaults.
type DownloadOptions struct {
	PollInterval time.Duration
	MaxAttempts  int
}

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 60
)

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o DownloadOptions) WithDefaults() DownloadOptions {
	if o.PollInterval == 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// PredefinedMeasurementsRequest is the fixed body used by CreatePredefined.
func PredefinedMeasurementsRequest() CreateFromMeasurementsRequest {
	return CreateFromMeasurementsRequest{
		Name:   "Created from measurements API",
		Gender: GenderFemale,
		Measurements: Measurements{
			MeasureHeight:          180,
			MeasureWeight:          87,
			MeasureBustGirth:       109,
			MeasureAnkleGirth:      27,
			MeasureThighGirth:      70,
			MeasureWaistGirth:      94,
			MeasureArmscyeGirth:    42,
			MeasureTopHipGirth:     114,
			MeasureNeckBaseGirth:   39,
			MeasureShoulderLength:  10,
			MeasureLowerArmLength:  24,
			MeasureUpperArmLength:  35,
			MeasureInsideLegHeight: 83,
		},
	}
}
