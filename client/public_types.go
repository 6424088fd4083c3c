package client

import "github.com/meshcapade/meshcapade-go/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	AvatarSpec                    = types.AvatarSpec
	CreateFromImagesRequest       = types.CreateFromImagesRequest
	CreateFromMeasurementsRequest = types.CreateFromMeasurementsRequest
	Measurements                  = types.Measurements
	DownloadOptions               = types.DownloadOptions

	// Domain entities
	Avatar = types.Avatar
	Asset  = types.Asset
	Gender = types.Gender

	// Responses
	ListAvatarsResponse = types.ListAvatarsResponse
	Pagination          = types.Pagination
	DeleteAck           = types.DeleteAck
	ImageUpload         = types.ImageUpload
)

const (
	GenderMale   = types.GenderMale
	GenderFemale = types.GenderFemale

	StateReady  = types.StateReady
	StateFailed = types.StateFailed
	StateError  = types.StateError

	DefaultPollInterval = types.DefaultPollInterval
	DefaultMaxAttempts  = types.DefaultMaxAttempts
)

// Measurement names; see Measurements.
const (
	MeasureHeight          = types.MeasureHeight
	MeasureWeight          = types.MeasureWeight
	MeasureBustGirth       = types.MeasureBustGirth
	MeasureAnkleGirth      = types.MeasureAnkleGirth
	MeasureThighGirth      = types.MeasureThighGirth
	MeasureWaistGirth      = types.MeasureWaistGirth
	MeasureArmscyeGirth    = types.MeasureArmscyeGirth
	MeasureTopHipGirth     = types.MeasureTopHipGirth
	MeasureNeckBaseGirth   = types.MeasureNeckBaseGirth
	MeasureShoulderLength  = types.MeasureShoulderLength
	MeasureLowerArmLength  = types.MeasureLowerArmLength
	MeasureUpperArmLength  = types.MeasureUpperArmLength
	MeasureInsideLegHeight = types.MeasureInsideLegHeight
)

// MeasurementNames returns the accepted measurement vocabulary.
func MeasurementNames() []string {
	return append([]string(nil), types.MeasurementNames...)
}
