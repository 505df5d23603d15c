package service

import (
	"strings"

	"golang.org/x/text/cases"

	"report-service/internal/model"
)

const filterAll = "all"

// Filter holds the listing predicates. Empty or "all" disables a predicate.
type Filter struct {
	Search   string
	Status   string
	Category string
}

type predicate func(model.Report) bool

// ApplyFilter keeps the reports that satisfy every enabled predicate. The
// predicates are independent, so their order never changes the result.
func ApplyFilter(reports []model.Report, filter Filter) []model.Report {
	predicates := filter.predicates()
	out := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if matchesAll(r, predicates) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r model.Report, predicates []predicate) bool {
	for _, p := range predicates {
		if !p(r) {
			return false
		}
	}
	return true
}

func (f Filter) predicates() []predicate {
	var out []predicate
	if p := searchPredicate(f.Search); p != nil {
		out = append(out, p)
	}
	if p := statusPredicate(f.Status); p != nil {
		out = append(out, p)
	}
	if p := categoryPredicate(f.Category); p != nil {
		out = append(out, p)
	}
	return out
}

func disabled(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || strings.EqualFold(raw, filterAll)
}

func searchPredicate(raw string) predicate {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(raw))
	return func(r model.Report) bool {
		haystack := []string{
			r.TicketNumber,
			string(r.ViolenceType),
			r.ViolenceType.Label(),
		}
		if r.VictimName != nil {
			haystack = append(haystack, *r.VictimName)
		}
		if r.ReporterName != nil {
			haystack = append(haystack, *r.ReporterName)
		}
		for _, value := range haystack {
			if strings.Contains(fold.String(value), needle) {
				return true
			}
		}
		return false
	}
}

func statusPredicate(raw string) predicate {
	if disabled(raw) {
		return nil
	}
	want, ok := model.ParseReportStatus(raw)
	if !ok {
		want = model.ReportStatus(strings.ToLower(strings.TrimSpace(raw)))
	}
	return func(r model.Report) bool { return r.Status == want }
}

func categoryPredicate(raw string) predicate {
	if disabled(raw) {
		return nil
	}
	want, ok := model.ParseViolenceType(raw)
	if !ok {
		want = model.ViolenceType(strings.TrimSpace(raw))
	}
	return func(r model.Report) bool { return r.ViolenceType == want }
}
