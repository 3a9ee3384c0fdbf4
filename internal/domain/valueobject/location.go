package valueobject

import (
	"github.com/paulmach/orb"

	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

var barangays = []string{
	"Ampid I",
	"Ampid II",
	"Banaba",
	"Dulong Bayan I",
	"Dulong Bayan II",
	"Guinayang",
	"Guitnang Bayan I",
	"Guitnang Bayan II",
	"Gulod Malaya",
	"Malanday",
	"Maly",
	"Santa Ana",
	"Santo Niño",
	"Silangan",
}

// Barangays возвращает список барангаев San Mateo.
func Barangays() []string {
	out := make([]string, len(barangays))
	copy(out, barangays)
	return out
}

func IsKnownBarangay(name string) bool {
	for _, b := range barangays {
		if b == name {
			return true
		}
	}
	return false
}

// ServiceArea — грубые границы муниципалитета San Mateo, Rizal.
var ServiceArea = orb.Bound{
	Min: orb.Point{121.05, 14.64},
	Max: orb.Point{121.20, 14.78},
}

// Coordinates — пара широта/долгота. Частично заданная пара не представима.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, apperror.New(apperror.ErrCodeValidation, "latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, apperror.New(apperror.ErrCodeValidation, "longitude must be between -180 and 180")
	}
	return Coordinates{Latitude: lat, Longitude: lng}, nil
}

// Point переводит координаты в orb.Point (порядок lon, lat).
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

func (c Coordinates) InServiceArea() bool {
	return ServiceArea.Contains(c.Point())
}
