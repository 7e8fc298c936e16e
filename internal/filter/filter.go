// Package filter implements the fund search and filter pipeline over the
// in-memory catalog. Every call is an independent linear scan; no index is
// kept between catalog loads.
package filter

import (
	"sort"
	"strings"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/classifier"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// Selector extracts one derived attribute from a fund.
type Selector func(model.Fund) string

// ByFundHouse selects the fund house. The AMC and the fund house are the same attribute.
func ByFundHouse(f model.Fund) string { return classifier.FundHouse(f.SchemeName) }

// ByCategory selects the scheme category.
func ByCategory(f model.Fund) string { return classifier.SchemeCategory(f.SchemeName) }

// ByType selects the scheme type.
func ByType(f model.Fund) string { return classifier.SchemeType(f.SchemeName) }

// Search returns the funds whose scheme name, fund house (AMC) or category
// contains query, ignoring case. An empty query returns funds unchanged.
func Search(funds []model.Fund, query string) []model.Fund {
	if query == "" {
		return funds
	}

	q := strings.ToLower(query)
	matched := make([]model.Fund, 0, len(funds))
	for _, f := range funds {
		attrs := classifier.Classify(f.SchemeName)
		if containsFold(f.SchemeName, q) ||
			containsFold(attrs.FundHouse, q) ||
			containsFold(attrs.SchemeCategory, q) {
			matched = append(matched, f)
		}
	}
	return matched
}

// Filter applies the search text and then narrows conjunctively by fund
// house, category and type. Attribute comparisons are exact and case
// insensitive; empty fields are ignored. With no constraint set the input is
// returned unchanged.
func Filter(funds []model.Fund, spec model.FundFilters) []model.Fund {
	if spec.IsEmpty() {
		return funds
	}

	result := Search(funds, spec.SearchText)
	if !spec.HasActive() {
		return result
	}

	narrowed := make([]model.Fund, 0, len(result))
	for _, f := range result {
		if matches(f, spec) {
			narrowed = append(narrowed, f)
		}
	}
	return narrowed
}

func matches(f model.Fund, spec model.FundFilters) bool {
	attrs := classifier.Classify(f.SchemeName)
	if spec.SelectedAMC != "" && !strings.EqualFold(attrs.FundHouse, spec.SelectedAMC) {
		return false
	}
	if spec.SelectedCategory != "" && !strings.EqualFold(attrs.SchemeCategory, spec.SelectedCategory) {
		return false
	}
	if spec.SelectedType != "" && !strings.EqualFold(attrs.SchemeType, spec.SelectedType) {
		return false
	}
	return true
}

// DistinctValues maps funds through selector, drops empty values, removes
// duplicates and returns the result sorted ascending.
func DistinctValues(funds []model.Fund, selector Selector) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, f := range funds {
		v := selector(f)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Options computes the three option lists offered by the filter UI.
func Options(funds []model.Fund) model.FilterOptions {
	return model.FilterOptions{
		FundHouses: DistinctValues(funds, ByFundHouse),
		Categories: DistinctValues(funds, ByCategory),
		Types:      DistinctValues(funds, ByType),
	}
}

// SelectedFirst moves the funds for which isSelected is true to the front,
// keeping the relative order inside both groups.
func SelectedFirst(funds []model.Fund, isSelected func(model.Fund) bool) []model.Fund {
	ordered := make([]model.Fund, 0, len(funds))
	var rest []model.Fund
	for _, f := range funds {
		if isSelected(f) {
			ordered = append(ordered, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(ordered, rest...)
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
