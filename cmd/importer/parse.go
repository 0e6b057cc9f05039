package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okieraised/points-of-interests/internal/models"
)

var requiredColumns = []string{"name", "latitude", "longitude"}

// parsePlaces reads a places CSV. Columns are matched by header name; only name,
// latitude and longitude are required.
func parsePlaces(r io.Reader) ([]models.Place, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}

	var places []models.Place
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		p := models.Place{
			Kind:        models.ResultType(field("kind")),
			Name:        field("name"),
			Category:    models.Category(field("category")),
			Street:      field("street"),
			SubLocality: field("sub_locality"),
			Locality:    field("locality"),
			Region:      field("region"),
			PostalCode:  field("postal_code"),
			Country:     field("country"),
			Phone:       field("phone"),
			Website:     field("website"),
		}
		if p.Name == "" {
			return nil, fmt.Errorf("line %d: empty name", line)
		}
		switch p.Kind {
		case "":
			p.Kind = models.ResultTypePointOfInterest
		case models.ResultTypePointOfInterest, models.ResultTypeAddress:
		default:
			return nil, fmt.Errorf("line %d: unknown kind %q", line, p.Kind)
		}

		if p.Latitude, err = strconv.ParseFloat(field("latitude"), 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid latitude: %s", line, field("latitude"))
		}
		if p.Longitude, err = strconv.ParseFloat(field("longitude"), 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid longitude: %s", line, field("longitude"))
		}
		if !p.Coordinate().Valid() {
			return nil, fmt.Errorf("line %d: coordinate out of range", line)
		}
		if s := field("popularity"); s != "" {
			if p.Popularity, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("line %d: invalid popularity: %s", line, s)
			}
		}

		places = append(places, p)
	}

	return places, nil
}
