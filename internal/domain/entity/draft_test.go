package entity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
)

func TestDraft_StepOne(t *testing.T) {
	cases := []struct {
		name        string
		category    valueobject.Category
		description string
		want        bool
	}{
		{"empty draft", "", "", false},
		{"category only", valueobject.CategoryRoads, "", false},
		{"19 chars", valueobject.CategoryRoads, strings.Repeat("a", 19), false},
		{"20 chars", valueobject.CategoryRoads, strings.Repeat("a", 20), true},
		{"no category", "", strings.Repeat("a", 40), false},
		{"multibyte counts runes", valueobject.CategoryOther, strings.Repeat("ñ", 20), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := entity.Draft{Category: tc.category, Description: tc.description}
			assert.Equal(t, tc.want, d.IsStepComplete(1))
		})
	}
}

func TestDraft_StepTwo(t *testing.T) {
	coords := &valueobject.Coordinates{Latitude: 14.6978, Longitude: 121.1203}

	assert.False(t, (&entity.Draft{}).IsStepComplete(2))
	assert.False(t, (&entity.Draft{Barangay: "Malanday"}).IsStepComplete(2))
	assert.False(t, (&entity.Draft{Coordinates: coords}).IsStepComplete(2))
	assert.True(t, (&entity.Draft{Barangay: "Malanday", Coordinates: coords}).IsStepComplete(2))

	// Нулевые координаты — валидная точка, а не отсутствие.
	zero := &valueobject.Coordinates{}
	assert.True(t, (&entity.Draft{Barangay: "Banaba", Coordinates: zero}).IsStepComplete(2))
}

func TestDraft_StepThree(t *testing.T) {
	cases := []struct {
		name     string
		reporter entity.Reporter
		want     bool
	}{
		{"empty", entity.Reporter{}, false},
		{"name only", entity.Reporter{Name: "Juan Dela Cruz"}, false},
		{"phone only", entity.Reporter{Phone: "09171234567"}, false},
		{"name and phone", entity.Reporter{Name: "Juan", Phone: "09171234567"}, true},
		{"name and email", entity.Reporter{Name: "Juan Dela Cruz", Email: "juan@test.com"}, true},
		{"name and both", entity.Reporter{Name: "Juan", Phone: "0917", Email: "juan@test.com"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := entity.Draft{Reporter: tc.reporter}
			assert.Equal(t, tc.want, d.IsStepComplete(3))
		})
	}
}

func TestDraft_ValidateStep_FieldMessages(t *testing.T) {
	d := entity.Draft{}
	errs := d.ValidateStep(1)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"category", "description"}, fields)

	assert.NotEmpty(t, d.ValidateStep(4))
}

func TestDraft_CloneIsDeep(t *testing.T) {
	d := entity.Draft{
		Coordinates: &valueobject.Coordinates{Latitude: 1, Longitude: 2},
		Attachments: []entity.Attachment{{FileName: "a.jpg"}},
	}
	c := d.Clone()
	c.Coordinates.Latitude = 99
	c.Attachments[0].FileName = "b.jpg"

	assert.Equal(t, 1.0, d.Coordinates.Latitude)
	assert.Equal(t, "a.jpg", d.Attachments[0].FileName)
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("x", 600)
	assert.Len(t, entity.TruncateDescription(long), entity.MaxDescriptionLength)
	assert.Equal(t, "short", entity.TruncateDescription("short"))
}
