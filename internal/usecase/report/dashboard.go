package report

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
)

const (
	DashboardCachePrefix = "dashboard:"
	dashboardCacheKey    = DashboardCachePrefix + "overview"

	topBarangaysLimit  = 5
	recentReportsLimit = 5
)

type CategoryStat struct {
	Category   valueobject.Category
	Label      string
	Icon       string
	Count      int
	Percentage int
}

type BarangayStat struct {
	Name  string
	Count int
}

// Dashboard — сводка для админ-панели.
type Dashboard struct {
	Total         int
	PendingReview int
	InProgress    int
	Resolved      int
	Rejected      int
	Categories    []CategoryStat
	TopBarangays  []BarangayStat
	Recent        []*entity.Report
	GeneratedAt   time.Time
}

type DashboardUseCase struct {
	reportRepo repository.ReportRepository
	cache      Cache
	ttl        time.Duration
	now        func() time.Time
}

func NewDashboardUseCase(reportRepo repository.ReportRepository, cache Cache, ttl time.Duration) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo, cache: cache, ttl: ttl, now: time.Now}
}

func (uc *DashboardUseCase) Execute(ctx context.Context) (*Dashboard, error) {
	if uc.cache == nil || uc.ttl <= 0 {
		return uc.build(ctx)
	}

	value, err := uc.cache.GetOrSet(ctx, dashboardCacheKey, uc.ttl, func() (interface{}, error) {
		return uc.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.(*Dashboard), nil
}

func (uc *DashboardUseCase) build(ctx context.Context) (*Dashboard, error) {
	stats, err := uc.reportRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	recent, _, err := uc.reportRepo.List(ctx, repository.ReportFilter{Limit: recentReportsLimit})
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Total:         stats.Total,
		PendingReview: stats.Pending,
		InProgress:    stats.InProgress,
		Resolved:      stats.Resolved,
		Rejected:      stats.Rejected,
		Categories:    categoryBreakdown(stats),
		TopBarangays:  topBarangays(stats, topBarangaysLimit),
		Recent:        recent,
		GeneratedAt:   uc.now().UTC(),
	}, nil
}

// categoryBreakdown возвращает категории по убыванию числа отчётов.
// Категории без отчётов не включаются.
func categoryBreakdown(stats *entity.Stats) []CategoryStat {
	out := make([]CategoryStat, 0, len(stats.ByCategory))
	for _, info := range valueobject.Categories() {
		count := stats.ByCategory[info.Value]
		if count == 0 {
			continue
		}
		out = append(out, CategoryStat{
			Category:   info.Value,
			Label:      info.Label,
			Icon:       info.Icon,
			Count:      count,
			Percentage: percentage(count, stats.Total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func topBarangays(stats *entity.Stats, limit int) []BarangayStat {
	out := make([]BarangayStat, 0, len(stats.ByBarangay))
	for name, count := range stats.ByBarangay {
		out = append(out, BarangayStat{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) * 100 / float64(total)))
}
