// Package fixture reads request documents from disk and writes the sample
// medicine files used to drive the create and update commands.
package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/meditracker/medctl/pkg/medctl/client"
)

const DefaultFile = "medicine.json"

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidJSON  = errors.New("invalid JSON")
)

// Load reads path and returns its contents if they parse as JSON. The
// returned document is the file content with surrounding whitespace removed.
func Load(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrInvalidJSON, path, err)
	}
	return json.RawMessage(bytes.TrimSpace(data)), nil
}

// Sample pairs a file name with the record written to it.
type Sample struct {
	File     string
	Medicine client.Medicine
}

// Samples returns the default fixture followed by the numbered ones.
func Samples() []Sample {
	return []Sample{
		{File: DefaultFile, Medicine: client.Medicine{
			Name:         "Aspirin",
			Description:  "Pain relief and anti-inflammatory medication",
			DosageAmount: 500.0,
			DosageUnit:   "mg",
		}},
		{File: "medicine_1.json", Medicine: client.Medicine{
			Name:         "Ibuprofen",
			Description:  "Anti-inflammatory pain reliever",
			DosageAmount: 200.0,
			DosageUnit:   "mg",
		}},
		{File: "medicine_2.json", Medicine: client.Medicine{
			Name:         "Vitamin D3",
			Description:  "Daily vitamin supplement",
			DosageAmount: 1000.0,
			DosageUnit:   "IU",
		}},
		{File: "medicine_3.json", Medicine: client.Medicine{
			Name:         "Metformin",
			Description:  "Diabetes medication",
			DosageAmount: 500.0,
			DosageUnit:   "mg",
		}},
	}
}

// WriteSamples writes every sample into dir, overwriting existing files,
// and returns the written paths in order.
func WriteSamples(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	samples := Samples()
	written := make([]string, 0, len(samples))
	for _, s := range samples {
		data, err := json.MarshalIndent(newSampleDocument(s.Medicine), "", "  ")
		if err != nil {
			return written, fmt.Errorf("failed to marshal %s: %w", s.File, err)
		}
		path := filepath.Join(dir, s.File)
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// sampleDocument is the on-disk form of a sample. Dosage amounts are always
// written with a fractional part, so 500 is stored as 500.0.
type sampleDocument struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	DosageAmount json.Number `json:"dosageAmount"`
	DosageUnit   string      `json:"dosageUnit"`
}

func newSampleDocument(m client.Medicine) sampleDocument {
	return sampleDocument{
		Name:         m.Name,
		Description:  m.Description,
		DosageAmount: formatAmount(m.DosageAmount),
		DosageUnit:   m.DosageUnit,
	}
}

func formatAmount(v float64) json.Number {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return json.Number(s)
}
