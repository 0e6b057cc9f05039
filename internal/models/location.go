package models

import "time"

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within the WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Location is a single device fix. It is replaced wholesale on every update and never mutated in place.
type Location struct {
	Coordinate         Coordinate `json:"coordinate"`
	Timestamp          time.Time  `json:"timestamp"`
	HorizontalAccuracy float64    `json:"horizontal_accuracy"`
}

// Placemark holds the administrative information resolved for a location by reverse geocoding.
type Placemark struct {
	Name               string     `json:"name,omitempty"`
	Street             string     `json:"street,omitempty"`
	SubLocality        string     `json:"sub_locality,omitempty"`
	Locality           string     `json:"locality,omitempty"`
	AdministrativeArea string     `json:"administrative_area,omitempty"`
	PostalCode         string     `json:"postal_code,omitempty"`
	Country            string     `json:"country,omitempty"`
	Coordinate         Coordinate `json:"coordinate"`
}
