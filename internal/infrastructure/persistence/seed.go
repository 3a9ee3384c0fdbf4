package persistence

import (
	"time"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
)

var manila = time.FixedZone("PHT", 8*60*60)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, manila)
}

func ptr(s string) *string { return &s }

type seedUpdate struct {
	at      time.Time
	status  valueobject.ReportStatus
	message string
}

func seedReport(base entity.Report, updates ...seedUpdate) *entity.Report {
	r := base
	r.Timeline = make([]entity.TimelineEntry, 0, len(updates))
	for _, u := range updates {
		r.Timeline = append(r.Timeline, entity.TimelineEntry{Date: u.at, Status: u.status, Message: u.message})
	}
	last := r.Timeline[len(r.Timeline)-1]
	r.SubmittedAt = r.Timeline[0].Date
	r.UpdatedAt = last.Date
	r.Status = last.Status
	if r.Department == "" {
		r.Department = r.Category.Department()
	}
	return &r
}

// SeedReports — демонстрационные отчёты для режима хранения в памяти.
func SeedReports() []*entity.Report {
	return []*entity.Report{
		seedReport(entity.Report{
			ID:            "SM-2K4X-AB12",
			Category:      valueobject.CategoryRoads,
			Description:   "Large pothole on the main road near the elementary school. Approximately 1 meter wide and 6 inches deep. Multiple vehicles have been damaged.",
			Barangay:      "Guinayang",
			StreetAddress: "Near San Mateo Elementary School",
			Coordinates:   valueobject.Coordinates{Latitude: 14.6978, Longitude: 121.1203},
			Priority:      valueobject.PriorityHigh,
			AssignedTo:    ptr("Road Maintenance Team A"),
			Attachments:   []string{"/placeholder-road.jpg"},
			Reporter:      entity.Reporter{Name: "Juan D."},
		},
			seedUpdate{at(2025, time.January, 17, 14, 30), valueobject.ReportStatusSubmitted, "Report received and logged into the system."},
			seedUpdate{at(2025, time.January, 17, 16, 45), valueobject.ReportStatusReviewed, "Report reviewed and categorized as high priority."},
			seedUpdate{at(2025, time.January, 18, 8, 0), valueobject.ReportStatusAssigned, "Assigned to Road Maintenance Team A for repair."},
			seedUpdate{at(2025, time.January, 18, 9, 15), valueobject.ReportStatusInProgress, "Team dispatched to location. Repair work in progress."},
		),
		seedReport(entity.Report{
			ID:            "SM-3Y5Z-CD34",
			Category:      valueobject.CategoryStreetlights,
			Description:   "Streetlight not working for over a week. Very dark at night and poses safety hazard for pedestrians.",
			Barangay:      "Malanday",
			StreetAddress: "Corner of Rizal Ave and Luna St",
			Coordinates:   valueobject.Coordinates{Latitude: 14.7012, Longitude: 121.1189},
			Priority:      valueobject.PriorityMedium,
			AssignedTo:    ptr("Electrical Team B"),
			Reporter:      entity.Reporter{Name: "Maria S."},
		},
			seedUpdate{at(2025, time.January, 15, 10, 0), valueobject.ReportStatusSubmitted, "Report received and logged into the system."},
			seedUpdate{at(2025, time.January, 15, 14, 20), valueobject.ReportStatusReviewed, "Report verified and forwarded to Electrical Division."},
			seedUpdate{at(2025, time.January, 16, 9, 0), valueobject.ReportStatusAssigned, "Assigned to Electrical Team B."},
			seedUpdate{at(2025, time.January, 17, 14, 0), valueobject.ReportStatusInProgress, "Technician on-site. Bulb replacement in progress."},
			seedUpdate{at(2025, time.January, 17, 16, 30), valueobject.ReportStatusResolved, "Streetlight repaired and tested. Issue resolved."},
		),
		seedReport(entity.Report{
			ID:            "SM-4Z6A-EF56",
			Category:      valueobject.CategoryDrainage,
			Description:   "Clogged drainage causing flooding along the street after light rain.",
			Barangay:      "Ampid I",
			StreetAddress: "General Luna St",
			Coordinates:   valueobject.Coordinates{Latitude: 14.7095, Longitude: 121.1231},
			Priority:      valueobject.PriorityCritical,
			Reporter:      entity.Reporter{Name: "Pedro R."},
		},
			seedUpdate{at(2025, time.January, 18, 10, 45), valueobject.ReportStatusSubmitted, "Report received and logged into the system."},
		),
		seedReport(entity.Report{
			ID:            "SM-5B7C-GH78",
			Category:      valueobject.CategoryGarbage,
			Description:   "Garbage not collected for 3 days, bags piling up on the sidewalk.",
			Barangay:      "Santo Niño",
			StreetAddress: "Santo Niño Chapel road",
			Coordinates:   valueobject.Coordinates{Latitude: 14.6832, Longitude: 121.1145},
			Priority:      valueobject.PriorityMedium,
			AssignedTo:    ptr("Collection Crew 3"),
			Reporter:      entity.Reporter{Name: "Ana L."},
		},
			seedUpdate{at(2025, time.January, 18, 9, 20), valueobject.ReportStatusSubmitted, "Report received and logged into the system."},
			seedUpdate{at(2025, time.January, 18, 11, 0), valueobject.ReportStatusReviewed, "Report verified and forwarded to MENRO."},
			seedUpdate{at(2025, time.January, 18, 13, 30), valueobject.ReportStatusAssigned, "Assigned to Collection Crew 3."},
		),
		seedReport(entity.Report{
			ID:            "SM-6D8E-IJ90",
			Category:      valueobject.CategorySidewalks,
			Description:   "Cracked sidewalk near the market entrance, a tripping hazard for pedestrians.",
			Barangay:      "Guitnang Bayan I",
			StreetAddress: "Public Market entrance",
			Coordinates:   valueobject.Coordinates{Latitude: 14.6960, Longitude: 121.1172},
			Priority:      valueobject.PriorityLow,
			AssignedTo:    ptr("Road Maintenance Team B"),
			Reporter:      entity.Reporter{Name: "Jose M."},
		},
			seedUpdate{at(2025, time.January, 16, 8, 10), valueobject.ReportStatusSubmitted, "Report received and logged into the system."},
			seedUpdate{at(2025, time.January, 16, 15, 0), valueobject.ReportStatusReviewed, "Report reviewed by the Engineering Office."},
			seedUpdate{at(2025, time.January, 17, 8, 30), valueobject.ReportStatusAssigned, "Assigned to Road Maintenance Team B."},
			seedUpdate{at(2025, time.January, 17, 10, 0), valueobject.ReportStatusInProgress, "Repair crew on-site."},
			seedUpdate{at(2025, time.January, 17, 16, 30), valueobject.ReportStatusResolved, "Sidewalk section replaced. Issue resolved."},
		),
	}
}
