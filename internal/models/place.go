package models

import (
	"strconv"
	"strings"
)

// Category is a point-of-interest category tag.
type Category string

const (
	CategoryAirport         Category = "airport"
	CategoryAmusementPark   Category = "amusement_park"
	CategoryAquarium        Category = "aquarium"
	CategoryBakery          Category = "bakery"
	CategoryBeach           Category = "beach"
	CategoryBrewery         Category = "brewery"
	CategoryCafe            Category = "cafe"
	CategoryCampground      Category = "campground"
	CategoryCarRental       Category = "car_rental"
	CategoryEVCharger       Category = "ev_charger"
	CategoryGasStation      Category = "gas_station"
	CategoryHotel           Category = "hotel"
	CategoryMarina          Category = "marina"
	CategoryMovieTheater    Category = "movie_theater"
	CategoryMuseum          Category = "museum"
	CategoryNationalPark    Category = "national_park"
	CategoryNightlife       Category = "nightlife"
	CategoryPark            Category = "park"
	CategoryParking         Category = "parking"
	CategoryPublicTransport Category = "public_transport"
	CategoryRestaurant      Category = "restaurant"
	CategoryStadium         Category = "stadium"
	CategoryTheater         Category = "theater"
	CategoryWinery          Category = "winery"
	CategoryZoo             Category = "zoo"
)

// TravelCategories is the allow-list applied to every completion and search.
var TravelCategories = []Category{
	CategoryAirport, CategoryAmusementPark, CategoryAquarium, CategoryBakery, CategoryBeach,
	CategoryBrewery, CategoryCafe, CategoryCampground, CategoryCarRental, CategoryEVCharger,
	CategoryGasStation, CategoryHotel, CategoryMarina, CategoryMovieTheater, CategoryMuseum,
	CategoryNationalPark, CategoryNightlife, CategoryPark, CategoryParking, CategoryPublicTransport,
	CategoryRestaurant, CategoryStadium, CategoryTheater, CategoryWinery, CategoryZoo,
}

// ResultType distinguishes venue matches from plain address matches.
type ResultType string

const (
	ResultTypePointOfInterest ResultType = "poi"
	ResultTypeAddress         ResultType = "address"
)

// Range is a half-open [Start, End) interval of rune offsets into a string.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SuggestionItem is a predicted completion of the current fragment.
type SuggestionItem struct {
	Title              string  `json:"title"`
	Subtitle           string  `json:"subtitle"`
	TitleHighlights    []Range `json:"title_highlights,omitempty"`
	SubtitleHighlights []Range `json:"subtitle_highlights,omitempty"`
	// Handle is opaque to clients; it is passed back to resolve the suggestion without re-running free text search.
	Handle string `json:"handle"`
}

// PlaceItem is a resolved venue returned by an authoritative search.
type PlaceItem struct {
	Handle           string     `json:"handle"`
	Name             string     `json:"name"`
	FormattedAddress string     `json:"formatted_address"`
	Phone            string     `json:"phone,omitempty"`
	URL              string     `json:"url,omitempty"`
	Category         Category   `json:"category,omitempty"`
	Coordinate       Coordinate `json:"coordinate"`
}

// Place is a stored venue or address record.
type Place struct {
	ID          int64      `json:"id"`
	Kind        ResultType `json:"kind"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	Street      string     `json:"street"`
	SubLocality string     `json:"sub_locality"`
	Locality    string     `json:"locality"`
	Region      string     `json:"region"`
	PostalCode  string     `json:"postal_code"`
	Country     string     `json:"country"`
	Phone       string     `json:"phone"`
	Website     string     `json:"website"`
	Popularity  int        `json:"popularity"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
}

// Handle returns the opaque identifier clients use to refer back to the record.
func (p Place) Handle() string {
	return strconv.FormatInt(p.ID, 10)
}

// ParseHandle converts a handle back into a record ID.
func ParseHandle(handle string) (int64, bool) {
	id, err := strconv.ParseInt(handle, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Coordinate returns the record position.
func (p Place) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// FormattedAddress joins the non-empty address parts in display order.
func (p Place) FormattedAddress() string {
	var parts []string
	for _, s := range []string{p.Street, p.SubLocality, p.Locality, strings.TrimSpace(p.Region + " " + p.PostalCode), p.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Item converts the record into the client-facing place item.
func (p Place) Item() PlaceItem {
	return PlaceItem{
		Handle:           p.Handle(),
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress(),
		Phone:            p.Phone,
		URL:              p.Website,
		Category:         p.Category,
		Coordinate:       p.Coordinate(),
	}
}

// Placemark converts the record into administrative placemark information.
func (p Place) Placemark() Placemark {
	return Placemark{
		Name:               p.Name,
		Street:             p.Street,
		SubLocality:        p.SubLocality,
		Locality:           p.Locality,
		AdministrativeArea: p.Region,
		PostalCode:         p.PostalCode,
		Country:            p.Country,
		Coordinate:         p.Coordinate(),
	}
}

// CompletionRequest scopes a completion query.
type CompletionRequest struct {
	Fragment    string       `json:"fragment"`
	Region      SearchRegion `json:"region"`
	Categories  []Category   `json:"categories,omitempty"`
	ResultTypes []ResultType `json:"result_types,omitempty"`
	Limit       int          `json:"limit,omitempty"`
}

// SearchRequest is either a free text query or a suggestion handle, never both.
type SearchRequest struct {
	Query       string       `json:"query,omitempty"`
	Handle      string       `json:"handle,omitempty"`
	Region      SearchRegion `json:"region"`
	Categories  []Category   `json:"categories,omitempty"`
	ResultTypes []ResultType `json:"result_types,omitempty"`
	Limit       int          `json:"limit,omitempty"`
}

// SearchResponse carries the resolved places and the region they were drawn from.
type SearchResponse struct {
	Places         []PlaceItem  `json:"places"`
	BoundingRegion SearchRegion `json:"region"`
}

// PlaceFilter scopes a storage query to a bounding box and allow-lists.
type PlaceFilter struct {
	Text       string
	MinLat     float64
	MinLon     float64
	MaxLat     float64
	MaxLon     float64
	Categories []Category
	Kinds      []ResultType
	Limit      int
}

// FilterFor builds a storage filter covering region.
func FilterFor(text string, region SearchRegion, categories []Category, kinds []ResultType, limit int) PlaceFilter {
	minLat, minLon, maxLat, maxLon := region.Bounds()
	return PlaceFilter{
		Text:       text,
		MinLat:     minLat,
		MinLon:     minLon,
		MaxLat:     maxLat,
		MaxLon:     maxLon,
		Categories: categories,
		Kinds:      kinds,
		Limit:      limit,
	}
}
