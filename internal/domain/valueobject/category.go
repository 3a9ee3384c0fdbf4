package valueobject

import "github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"

type Category string

const (
	CategoryRoads        Category = "roads"
	CategoryStreetlights Category = "streetlights"
	CategoryDrainage     Category = "drainage"
	CategoryGarbage      Category = "garbage"
	CategoryFlooding     Category = "flooding"
	CategorySidewalks    Category = "sidewalks"
	CategoryBridges      Category = "bridges"
	CategoryOther        Category = "other"
)

// CategoryInfo — описание категории для справочника клиента.
type CategoryInfo struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
	Icon  string   `json:"icon"`
}

var categories = []CategoryInfo{
	{Value: CategoryRoads, Label: "Roads & Potholes", Icon: "🛣️"},
	{Value: CategoryStreetlights, Label: "Streetlights", Icon: "💡"},
	{Value: CategoryDrainage, Label: "Drainage & Canals", Icon: "🌊"},
	{Value: CategoryGarbage, Label: "Garbage Collection", Icon: "🗑️"},
	{Value: CategoryFlooding, Label: "Flooding", Icon: "🌧️"},
	{Value: CategorySidewalks, Label: "Sidewalks", Icon: "🚶"},
	{Value: CategoryBridges, Label: "Bridges", Icon: "🌉"},
	{Value: CategoryOther, Label: "Other", Icon: "📋"},
}

func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

func (c Category) IsValid() bool {
	_, ok := c.info()
	return ok
}

func (c Category) Label() string {
	if info, ok := c.info(); ok {
		return info.Label
	}
	return string(c)
}

// Icon возвращает иконку категории, для неизвестных — иконку other.
func (c Category) Icon() string {
	if info, ok := c.info(); ok {
		return info.Icon
	}
	return "📋"
}

// Department возвращает ответственное подразделение муниципалитета.
func (c Category) Department() string {
	switch c {
	case CategoryRoads, CategorySidewalks, CategoryBridges:
		return "Engineering Office"
	case CategoryStreetlights:
		return "Electrical Division"
	case CategoryDrainage, CategoryFlooding:
		return "Disaster Risk Reduction and Management Office"
	case CategoryGarbage:
		return "Municipal Environment and Natural Resources Office"
	default:
		return "Municipal Administrator's Office"
	}
}

func (c Category) info() (CategoryInfo, bool) {
	for _, info := range categories {
		if info.Value == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

func NewCategory(value string) (Category, error) {
	c := Category(value)
	if !c.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "unknown issue category")
	}
	return c, nil
}
