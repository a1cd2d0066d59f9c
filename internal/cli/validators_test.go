package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"title=Metro Bridge", " budget =1000", "description=", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []Assignment{
		{Field: "title", Value: "Metro Bridge"},
		{Field: "budget", Value: "1000"},
		{Field: "description", Value: ""},
		{Field: "note", Value: "a=b"},
	}, got)

	for _, bad := range []string{"title", "=value", " =x"} {
		_, err := ParseAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("project", " 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, bad := range []string{"", "0", "-3", "twelve"} {
		_, err := ParseID("project", bad)
		assert.ErrorContains(t, err, "invalid project id", bad)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("worker@buildtrack.local"))
	assert.Error(t, ValidateEmail("Wren <worker@buildtrack.local>"))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestValidateOutputFormat(t *testing.T) {
	for _, ok := range []string{"text", "json", "yaml"} {
		assert.NoError(t, ValidateOutputFormat(ok))
	}
	assert.Error(t, ValidateOutputFormat("csv"))
}

func TestParsePlace(t *testing.T) {
	lat, lng := 51.5, -0.12
	tests := []struct {
		name    string
		raw     string
		want    Place
		wantErr string
	}{
		{name: "name only", raw: " Riverside ", want: Place{Location: "Riverside"}},
		{name: "with coordinates", raw: "Riverside@51.5, -0.12", want: Place{Location: "Riverside", Lat: &lat, Lng: &lng}},
		{name: "at sign in name", raw: "Dock @ Pier 4@51.5,-0.12", want: Place{Location: "Dock @ Pier 4", Lat: &lat, Lng: &lng}},
		{name: "missing longitude", raw: "Riverside@51.5", wantErr: "expected location@lat,lng"},
		{name: "bad latitude", raw: "Riverside@north,-0.12", wantErr: "latitude must be a number"},
		{name: "bad longitude", raw: "Riverside@51.5,west", wantErr: "longitude must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlace(tt.raw)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
