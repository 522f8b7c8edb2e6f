package config

import "strings"

// FallbackCity is one entry of the geocoding fallback table.
type FallbackCity struct {
	Key string  `json:"key"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FallbackCities is matched by case-insensitive substring containment against
// the query, first entry wins. Landmarks are declared before city names so an
// address like "Bandra West, Mumbai" resolves to the landmark rather than the
// broader city. The table is an ordered slice on purpose: match precedence is
// declaration order, never map iteration order.
var FallbackCities = []FallbackCity{
	{Key: "connaught place", Lat: 28.6304, Lng: 77.2177},
	{Key: "bandra", Lat: 19.0596, Lng: 72.8295},
	{Key: "delhi", Lat: 28.6139, Lng: 77.2090},
	{Key: "mumbai", Lat: 19.0760, Lng: 72.8777},
	{Key: "pune", Lat: 18.5204, Lng: 73.8567},
	{Key: "bangalore", Lat: 12.9716, Lng: 77.5946},
	{Key: "chennai", Lat: 13.0827, Lng: 80.2707},
	{Key: "kolkata", Lat: 22.5726, Lng: 88.3639},
	{Key: "hyderabad", Lat: 17.3850, Lng: 78.4867},
	{Key: "london", Lat: 51.5074, Lng: -0.1278},
	{Key: "new york", Lat: 40.7128, Lng: -74.0060},
	{Key: "paris", Lat: 48.8566, Lng: 2.3522},
}

// defaultCityKey is used when no table entry matches the query.
const defaultCityKey = "mumbai"

// MatchFallbackCity returns the first table entry whose key appears in the
// lowercased query, or nil if none matches.
func MatchFallbackCity(location string) *FallbackCity {
	lower := strings.ToLower(location)
	for i := range FallbackCities {
		if strings.Contains(lower, FallbackCities[i].Key) {
			return &FallbackCities[i]
		}
	}
	return nil
}

// DefaultFallbackCity returns the coordinate used when nothing matches.
func DefaultFallbackCity() FallbackCity {
	for _, city := range FallbackCities {
		if city.Key == defaultCityKey {
			return city
		}
	}
	// Unreachable as long as the table contains the default key.
	return FallbackCities[0]
}
