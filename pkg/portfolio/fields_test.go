package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetField_Coercion(t *testing.T) {
	p := &PricingPackage{Price: 10, OrderIndex: 3}

	require.NoError(t, SetField(p, "price", "49.90"))
	assert.Equal(t, 49.90, p.Price)

	require.NoError(t, SetField(p, "price", ""))
	assert.Equal(t, 0.0, p.Price)

	require.NoError(t, SetField(p, "order_index", " "))
	assert.Equal(t, 0, p.OrderIndex)

	require.NoError(t, SetField(p, "is_custom", "on"))
	assert.True(t, p.IsCustom)

	require.NoError(t, SetField(p, "features_en", "one\n\n two \r\nthree\n"))
	assert.Equal(t, []string{"one", "two", "three"}, p.FeaturesEN)
}

func TestSetField_RejectsWithoutMutating(t *testing.T) {
	tests := []struct {
		name  string
		rec   Record
		field string
		value string
	}{
		{"non-numeric price", &PricingPackage{Price: 5}, "price", "cheap"},
		{"infinite price", &PricingPackage{Price: 5}, "price", "Inf"},
		{"non-numeric order", &FAQItem{OrderIndex: 2}, "order_index", "2nd"},
		{"bad boolean", &Client{IsVerified: true}, "is_verified", "maybe"},
		{"unknown field", &Video{}, "duration", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.rec.Clone()
			err := SetField(tt.rec, tt.field, tt.value)
			assert.ErrorIs(t, err, ErrInvalidField)
			assert.Equal(t, before, tt.rec)
		})
	}
}

func TestSetField_VideoURLRefreshesThumbnail(t *testing.T) {
	v := &Video{ThumbnailURL: "https://example.com/old.jpg"}

	require.NoError(t, SetField(v, "youtube_url", "https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg", v.ThumbnailURL)

	require.NoError(t, SetField(v, "youtube_url", "not a url"))
	assert.Empty(t, v.ThumbnailURL)
}

func TestSetField_SettingsFlags(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, SetField(s, "show_pricing", "false"))
	require.NoError(t, SetField(s, "email", "  me@example.com "))

	assert.False(t, s.Shows(SectionPricing))
	assert.True(t, s.Shows(SectionFAQ))
	assert.Equal(t, "me@example.com", s.Email)
}

func TestFieldValueRoundTrip(t *testing.T) {
	for _, c := range append([]Collection{CollectionSettings}, ItemCollections...) {
		t.Run(string(c), func(t *testing.T) {
			rec, err := NewBlank(c)
			require.NoError(t, err)
			fields := Fields(c)
			require.NotEmpty(t, fields)

			for _, field := range fields {
				value, err := FieldValue(rec, field)
				require.NoError(t, err, field)
				require.NoError(t, SetField(rec, field, value), field)
				again, err := FieldValue(rec, field)
				require.NoError(t, err)
				assert.Equal(t, value, again, field)
			}

			_, err = FieldValue(rec, "nope")
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
}

func TestFieldValueFormats(t *testing.T) {
	p := &PricingPackage{Price: 49.9, FeaturesEN: []string{"a", "b"}, IsCustom: true, OrderIndex: 3}

	tests := map[string]string{
		"price":       "49.9",
		"features_en": "a\nb",
		"is_custom":   "true",
		"order_index": "3",
	}
	for field, want := range tests {
		got, err := FieldValue(p, field)
		require.NoError(t, err)
		assert.Equal(t, want, got, field)
	}
}
