package models

// Location is the region a PIN code resolves to.
type Location struct {
	State string `json:"state" yaml:"state"`
	City  string `json:"city" yaml:"city"`
}
