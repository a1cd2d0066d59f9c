package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BlankHasEveryField(t *testing.T) {
	store := NewStore(ProjectSchema)
	values := store.Get()

	for _, f := range ProjectSchema.Fields {
		_, ok := values[f.Name]
		assert.True(t, ok, "missing field %s", f.Name)
	}
	assert.Equal(t, "", values["title"])
	assert.Equal(t, 0.0, values["budget"])
	assert.Nil(t, values["latitude"])
	assert.Equal(t, "planning", values["status"])
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(ProjectSchema)
	snapshot := store.Get()
	snapshot["title"] = "changed elsewhere"

	assert.Equal(t, "", store.Value("title"))
}

func TestStore_Set(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		raw         string
		want        any
		wantChanged bool
		wantErr     error
	}{
		{name: "text stored as is", field: "title", raw: "  Metro Bridge ", want: "  Metro Bridge ", wantChanged: true},
		{name: "number parsed", field: "budget", raw: "250000", want: 250000.0, wantChanged: true},
		{name: "decimal parsed", field: "current_spending", raw: "1200.50", want: 1200.5, wantChanged: true},
		{name: "non numeric rejected", field: "budget", raw: "12abc", want: 0.0, wantErr: ErrNotNumeric},
		{name: "NaN rejected", field: "budget", raw: "NaN", want: 0.0, wantErr: ErrNotNumeric},
		{name: "empty nullable number clears", field: "latitude", raw: "", want: nil},
		{name: "empty number is zero", field: "budget", raw: "", want: 0.0},
		{name: "date stored as is", field: "start_date", raw: "2025-01-01", want: "2025-01-01", wantChanged: true},
		{name: "unknown field", field: "nope", raw: "x", wantErr: ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(ProjectSchema)
			changed, err := store.Set(tt.field, tt.raw)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				var fe *FieldError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, tt.field, fe.Field)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantChanged, changed)
			if tt.wantErr != ErrUnknownField {
				assert.Equal(t, tt.want, store.Value(tt.field))
			}
		})
	}
}

func TestStore_SetBoolean(t *testing.T) {
	store := NewStore(TimelineEventSchema)

	changed, err := store.Set("is_milestone", "true")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, true, store.Value("is_milestone"))

	_, err = store.Set("is_milestone", "maybe")
	assert.ErrorIs(t, err, ErrNotBoolean)
	assert.Equal(t, true, store.Value("is_milestone"))
}

func TestStore_SetIsIdempotent(t *testing.T) {
	for _, f := range ProjectSchema.Fields {
		t.Run(f.Name, func(t *testing.T) {
			raw := "42"
			if f.Kind == KindEnum {
				raw = "completed"
			}
			store := NewStore(ProjectSchema)
			_, err := store.Set(f.Name, raw)
			require.NoError(t, err)
			once := store.Get()
			rev := store.Revision()

			changed, err := store.Set(f.Name, raw)
			require.NoError(t, err)
			assert.False(t, changed)
			assert.Equal(t, rev, store.Revision())
			assert.Equal(t, once, store.Get())
		})
	}
}

func TestStore_NumericParseFailureLeavesEveryNumberUnchanged(t *testing.T) {
	for _, schema := range []*Schema{ProjectSchema, SupplierSchema, RiskSchema, TimelineEventSchema} {
		for _, f := range schema.Fields {
			if f.Kind != KindNumber {
				continue
			}
			t.Run(schema.Name+"/"+f.Name, func(t *testing.T) {
				store := NewStore(schema)
				_, err := store.Set(f.Name, "3")
				require.NoError(t, err)

				changed, err := store.Set(f.Name, "three")
				assert.ErrorIs(t, err, ErrNotNumeric)
				assert.False(t, changed)
				assert.Equal(t, 3.0, store.Value(f.Name))
			})
		}
	}
}

func TestStore_Reset(t *testing.T) {
	store := NewStore(ProjectSchema)
	_, _ = store.Set("title", "draft")

	store.Reset(Values{
		"title":      "Tower",
		"budget":     "200000.00",
		"start_date": "2025-01-01T00:00:00Z",
		"latitude":   51.5,
		"unknown":    "dropped",
	})

	values := store.Get()
	assert.Equal(t, "Tower", values["title"])
	assert.Equal(t, 200000.0, values["budget"])
	assert.Equal(t, "2025-01-01", values["start_date"])
	assert.Equal(t, 51.5, values["latitude"])
	assert.Equal(t, "", values["description"])
	assert.NotContains(t, values, "unknown")

	store.Reset(nil)
	assert.Equal(t, ProjectSchema.Blank(), store.Get())
}

func TestStore_SetCoordinates(t *testing.T) {
	store := NewStore(ProjectSchema)
	lat, lng := 40.7128, -74.006

	assert.True(t, store.SetCoordinates("New York", &lat, &lng))
	assert.Equal(t, "New York", store.Value("location"))
	assert.Equal(t, lat, store.Value("latitude"))
	assert.Equal(t, lng, store.Value("longitude"))

	assert.False(t, store.SetCoordinates("New York", &lat, &lng))
	assert.True(t, store.SetCoordinates("Somewhere", nil, nil))
	assert.Nil(t, store.Value("latitude"))
}

func TestSchema_Defaults(t *testing.T) {
	supplier := SupplierSchema.Blank()
	assert.Equal(t, 80.0, supplier["reliability_score"])
	assert.Equal(t, 7.0, supplier["lead_time_days"])

	risk := RiskSchema.Blank()
	assert.Equal(t, "medium", risk["risk_level"])
	assert.Equal(t, "other", risk["risk_category"])
	assert.Equal(t, 0.5, risk["probability"])
	assert.Equal(t, 5.0, risk["impact"])
}

func TestNewSchema_Errors(t *testing.T) {
	_, err := NewSchema("empty", nil, nil)
	assert.Error(t, err)

	_, err = NewSchema("dup", []SectionID{SectionMain}, []FieldSpec{
		{Name: "a", Kind: KindText, Section: SectionMain},
		{Name: "a", Kind: KindText, Section: SectionMain},
	})
	assert.Error(t, err)

	_, err = NewSchema("orphan", []SectionID{SectionMain}, []FieldSpec{
		{Name: "a", Kind: KindText, Section: "elsewhere"},
	})
	assert.Error(t, err)
}
