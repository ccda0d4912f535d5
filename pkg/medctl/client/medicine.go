package client

// Medicine is the representation exchanged with the medicines collection.
// ID and the timestamps are assigned by the server and are absent from
// request documents.
type Medicine struct {
	ID           int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string  `json:"name" yaml:"name"`
	Description  string  `json:"description" yaml:"description"`
	DosageAmount float64 `json:"dosageAmount" yaml:"dosageAmount"`
	DosageUnit   string  `json:"dosageUnit" yaml:"dosageUnit"`
	// Timestamps are kept as strings: the server emits local date-times
	// without a zone offset, which time.Time cannot unmarshal.
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}
