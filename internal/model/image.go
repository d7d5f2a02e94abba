package model

// Image is one selected property photograph.
type Image struct {
	Name        string `json:"name" yaml:"name"`
	ContentType string `json:"contentType" yaml:"contentType"`
	Data        []byte `json:"-" yaml:"-"`
}

// ReferenceObject is a real-world object of known height visible in a photo,
// used by the remote service to calibrate scale.
type ReferenceObject struct {
	Name         string  `json:"name" yaml:"name"`
	HeightMeters float64 `json:"heightMeters" yaml:"heightMeters"`
}
