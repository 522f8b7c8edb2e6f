package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchFallbackCity(t *testing.T) {
	tests := []struct {
		name        string
		location    string
		expectedKey string
		expectMatch bool
	}{
		{
			name:        "Simple city name",
			location:    "Pune",
			expectedKey: "pune",
			expectMatch: true,
		},
		{
			name:        "Case insensitive match",
			location:    "KOLKATA, West Bengal",
			expectedKey: "kolkata",
			expectMatch: true,
		},
		{
			name:        "Substring inside a longer address",
			location:    "221B Baker Street, London, UK",
			expectedKey: "london",
			expectMatch: true,
		},
		{
			name:        "Landmark wins over city declared later",
			location:    "Bandra West, Mumbai",
			expectedKey: "bandra",
			expectMatch: true,
		},
		{
			name:        "Connaught Place wins over Delhi",
			location:    "Connaught Place, Delhi",
			expectedKey: "connaught place",
			expectMatch: true,
		},
		{
			name:        "Bandra anywhere in the address",
			location:    "Hill Road, BANDRA",
			expectedKey: "bandra",
			expectMatch: true,
		},
		{
			name:        "No match",
			location:    "Somewhere unknown",
			expectMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city := MatchFallbackCity(tt.location)
			if !tt.expectMatch {
				assert.Nil(t, city)
				return
			}
			assert.NotNil(t, city)
			assert.Equal(t, tt.expectedKey, city.Key)
		})
	}
}

func TestMatchFallbackCityBandraCoordinate(t *testing.T) {
	city := MatchFallbackCity("office near bandra station, mumbai")
	assert.NotNil(t, city)
	assert.InDelta(t, 19.0596, city.Lat, 0.0001)
	assert.InDelta(t, 72.8295, city.Lng, 0.0001)
}

func TestDefaultFallbackCity(t *testing.T) {
	city := DefaultFallbackCity()
	assert.Equal(t, "mumbai", city.Key)
	assert.InDelta(t, 19.0760, city.Lat, 0.0001)
	assert.InDelta(t, 72.8777, city.Lng, 0.0001)
}
