// Package geo строит карту отчётов в формате GeoJSON.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
)

// ReportsToFeatureCollection превращает отчёты в точки. Контакты заявителя на карту не попадают.
func ReportsToFeatureCollection(reports []*entity.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	bound := orb.Bound{}
	first := true

	for _, r := range reports {
		point := r.Coordinates.Point()
		feature := geojson.NewFeature(point)
		feature.ID = r.ID
		feature.Properties["id"] = r.ID
		feature.Properties["category"] = string(r.Category)
		feature.Properties["categoryLabel"] = r.Category.Label()
		feature.Properties["icon"] = r.Category.Icon()
		feature.Properties["status"] = string(r.Status)
		feature.Properties["badge"] = string(valueobject.BadgeFor(string(r.Status)))
		feature.Properties["priority"] = string(r.Priority)
		feature.Properties["barangay"] = r.Barangay
		feature.Properties["submittedAt"] = r.SubmittedAt
		feature.Properties["inServiceArea"] = r.Coordinates.InServiceArea()
		fc.Append(feature)

		if first {
			bound = point.Bound()
			first = false
		} else {
			bound = bound.Extend(point)
		}
	}

	if !first {
		fc.BBox = geojson.NewBBox(bound)
	}
	return fc
}
