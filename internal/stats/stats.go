// Package stats derives dashboard figures from a snapshot of reports. It
// holds no state; callers recompute on every fetch or change event.
package stats

import (
	"math"
	"sort"
	"time"

	"report-service/internal/model"
)

const TrendMonths = 6

var Palette = []string{
	"#ef4444",
	"#3b82f6",
	"#eab308",
	"#22c55e",
	"#a855f7",
	"#f97316",
	"#ec4899",
	"#6b7280",
}

var monthLabels = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

type StatusCounts struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
	Done       int `json:"done"`
	Closed     int `json:"closed"`
	Other      int `json:"other"`
}

type CategoryShare struct {
	Code       model.ViolenceType `json:"code"`
	Label      string             `json:"label"`
	Count      int                `json:"count"`
	Percentage int                `json:"percentage"`
	Color      string             `json:"color"`
}

type MonthTrend struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Label     string `json:"label"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

type Dashboard struct {
	Status            StatusCounts    `json:"status"`
	Categories        []CategoryShare `json:"categories"`
	AnonymousCount    int             `json:"anonymous_count"`
	AnonymousRatio    int             `json:"anonymous_ratio"`
	HighPriorityCount int             `json:"high_priority_count"`
	Today             int             `json:"today"`
	ThisWeek          int             `json:"this_week"`
	Trend             []MonthTrend    `json:"trend"`
	AveragePerDay     float64         `json:"average_per_day"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// CountStatuses tallies reports per status in one pass.
func CountStatuses(reports []model.Report) StatusCounts {
	var counts StatusCounts
	for _, r := range reports {
		counts.Total++
		switch r.Status {
		case model.ReportStatusNew:
			counts.New++
		case model.ReportStatusInProgress:
			counts.InProgress++
		case model.ReportStatusPending:
			counts.Pending++
		case model.ReportStatusDone:
			counts.Done++
		case model.ReportStatusClosed:
			counts.Closed++
		default:
			counts.Other++
		}
	}
	return counts
}

// Compute builds the full dashboard for reports as seen at now. Calendar
// buckets (today, months) are evaluated in loc.
func Compute(reports []model.Report, now time.Time, loc *time.Location) Dashboard {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	dashboard := Dashboard{
		Status:      CountStatuses(reports),
		Categories:  categoryShares(reports),
		Trend:       monthlyTrend(reports, now, loc),
		GeneratedAt: now,
	}

	todayYear, todayMonth, todayDay := now.Date()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	var oldest time.Time

	for _, r := range reports {
		if r.IsAnonymous {
			dashboard.AnonymousCount++
		}
		if r.Priority != nil && r.Priority.IsHigh() {
			dashboard.HighPriorityCount++
		}

		created := r.CreatedAt.In(loc)
		if y, m, d := created.Date(); y == todayYear && m == todayMonth && d == todayDay {
			dashboard.Today++
		}
		if created.After(weekAgo) && !created.After(now) {
			dashboard.ThisWeek++
		}
		if !r.CreatedAt.IsZero() && (oldest.IsZero() || r.CreatedAt.Before(oldest)) {
			oldest = r.CreatedAt
		}
	}

	total := len(reports)
	dashboard.AnonymousRatio = percent(dashboard.AnonymousCount, total)
	dashboard.AveragePerDay = averagePerDay(total, oldest, now)

	return dashboard
}

func categoryShares(reports []model.Report) []CategoryShare {
	counts := make(map[model.ViolenceType]int)
	for _, r := range reports {
		counts[r.ViolenceType]++
	}

	shares := make([]CategoryShare, 0, len(counts))
	for code, count := range counts {
		shares = append(shares, CategoryShare{
			Code:       code,
			Label:      code.Label(),
			Count:      count,
			Percentage: percent(count, len(reports)),
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Code < shares[j].Code
	})

	for i := range shares {
		shares[i].Color = Palette[i%len(Palette)]
	}
	return shares
}

func monthlyTrend(reports []model.Report, now time.Time, loc *time.Location) []MonthTrend {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	trend := make([]MonthTrend, TrendMonths)
	index := make(map[[2]int]int, TrendMonths)
	for i := 0; i < TrendMonths; i++ {
		month := firstOfMonth.AddDate(0, i-(TrendMonths-1), 0)
		trend[i] = MonthTrend{
			Year:  month.Year(),
			Month: int(month.Month()),
			Label: monthLabels[month.Month()-1],
		}
		index[[2]int{month.Year(), int(month.Month())}] = i
	}

	for _, r := range reports {
		created := r.CreatedAt.In(loc)
		i, ok := index[[2]int{created.Year(), int(created.Month())}]
		if !ok {
			continue
		}
		trend[i].Total++
		if r.Status == model.ReportStatusDone {
			trend[i].Completed++
		}
	}
	for i := range trend {
		trend[i].Pending = trend[i].Total - trend[i].Completed
	}
	return trend
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func averagePerDay(total int, oldest, now time.Time) float64 {
	if total == 0 || oldest.IsZero() {
		return 0
	}
	days := int(now.Sub(oldest).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return math.Round(float64(total)/float64(days)*10) / 10
}
