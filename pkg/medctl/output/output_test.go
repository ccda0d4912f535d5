package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/meditracker/medctl/pkg/medctl/client"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatRaw},
		{in: "raw", want: FormatRaw},
		{in: "json", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: "table", want: FormatTable},
		{in: "wide", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteObject_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	med := client.Medicine{ID: 1, Name: "Aspirin", DosageAmount: 500, DosageUnit: "mg"}
	require.NoError(t, WriteObject(buf, FormatJSON, med))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Aspirin", decoded["name"])
	assert.EqualValues(t, 1, decoded["id"])
	assert.Contains(t, buf.String(), "\n  \"name\"")
}

func TestWriteObject_YAML(t *testing.T) {
	buf := &bytes.Buffer{}
	meds := []client.Medicine{{Name: "Vitamin D3", DosageAmount: 1000, DosageUnit: "IU"}}
	require.NoError(t, WriteObject(buf, FormatYAML, meds))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Vitamin D3", decoded[0]["name"])
	assert.Equal(t, "IU", decoded[0]["dosageUnit"])
}

func TestWriteObject_Unsupported(t *testing.T) {
	for _, f := range []Format{FormatTable, FormatRaw, Format("xml")} {
		require.Error(t, WriteObject(&bytes.Buffer{}, f, struct{}{}), string(f))
	}
}
