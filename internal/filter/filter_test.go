package filter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/classifier"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/filter"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

func catalog() []model.Fund {
	return []model.Fund{
		{SchemeCode: 100, SchemeName: "HDFC Large Cap Fund - Growth"},
		{SchemeCode: 101, SchemeName: "HDFC Short Duration Fund"},
		{SchemeCode: 200, SchemeName: "Axis ELSS Tax Saver Fund"},
		{SchemeCode: 300, SchemeName: "Mirae Asset Mid Cap Fund"},
		{SchemeCode: 400, SchemeName: "SBI Banking & PSU Fund"},
		{SchemeCode: 500, SchemeName: "Zebra Prime Fund"},
	}
}

func codes(funds []model.Fund) []int {
	out := make([]int, 0, len(funds))
	for _, f := range funds {
		out = append(out, f.SchemeCode)
	}
	return out
}

func TestSearch(t *testing.T) {
	funds := catalog()

	t.Run("empty query returns input", func(t *testing.T) {
		assert.Equal(t, funds, filter.Search(funds, ""))
	})

	t.Run("matches scheme name case insensitively", func(t *testing.T) {
		assert.Equal(t, []int{200}, codes(filter.Search(funds, "tax saver")))
	})

	t.Run("matches derived fund house", func(t *testing.T) {
		// "Mirae Asset" is the derived house; "asset" also appears in the name.
		assert.Equal(t, []int{300}, codes(filter.Search(funds, "MIRAE ASSET")))
	})

	t.Run("matches derived category", func(t *testing.T) {
		// Only the category "Sectoral/Thematic" contains a slash.
		got := filter.Search(funds, "/thematic")
		require.NotEmpty(t, got)
		for _, f := range got {
			assert.Equal(t, "Sectoral/Thematic", classifier.SchemeCategory(f.SchemeName))
		}
	})

	t.Run("every result contains the query in a searchable field", func(t *testing.T) {
		for _, q := range []string{"fund", "cap", "hdfc", "equity", "x"} {
			for _, f := range filter.Search(funds, q) {
				attrs := classifier.Classify(f.SchemeName)
				haystack := strings.ToLower(f.SchemeName + "|" + attrs.FundHouse + "|" + attrs.SchemeCategory)
				assert.Contains(t, haystack, strings.ToLower(q))
			}
		}
	})

	t.Run("no match returns empty", func(t *testing.T) {
		assert.Empty(t, filter.Search(funds, "nothing like this"))
	})
}

func TestFilter(t *testing.T) {
	funds := catalog()

	t.Run("empty spec is identity", func(t *testing.T) {
		assert.Equal(t, funds, filter.Filter(funds, model.FundFilters{}))
	})

	t.Run("fund house is exact and case insensitive", func(t *testing.T) {
		got := filter.Filter(funds, model.FundFilters{SelectedAMC: "hdfc"})
		assert.Equal(t, []int{100, 101}, codes(got))

		assert.Empty(t, filter.Filter(funds, model.FundFilters{SelectedAMC: "HDF"}))
	})

	t.Run("type narrows", func(t *testing.T) {
		got := filter.Filter(funds, model.FundFilters{SelectedType: "Debt Fund"})
		assert.Equal(t, []int{101}, codes(got))
	})

	t.Run("category narrows", func(t *testing.T) {
		got := filter.Filter(funds, model.FundFilters{SelectedCategory: "large cap"})
		assert.Equal(t, []int{100}, codes(got))
	})

	t.Run("all constraints are combined with AND", func(t *testing.T) {
		spec := model.FundFilters{
			SearchText:       "fund",
			SelectedAMC:      "HDFC",
			SelectedCategory: "Large Cap",
			SelectedType:     "Equity Fund",
		}
		assert.Equal(t, []int{100}, codes(filter.Filter(funds, spec)))

		spec.SelectedType = "ELSS"
		assert.Empty(t, filter.Filter(funds, spec))
	})

	t.Run("search text applies before attribute filters", func(t *testing.T) {
		spec := model.FundFilters{SearchText: "short", SelectedAMC: "HDFC"}
		assert.Equal(t, []int{101}, codes(filter.Filter(funds, spec)))
	})
}

func TestDistinctValues(t *testing.T) {
	funds := catalog()

	t.Run("deduplicated and sorted", func(t *testing.T) {
		got := filter.DistinctValues(funds, filter.ByFundHouse)
		assert.Equal(t, []string{"Axis", "HDFC", "Mirae Asset", "SBI", "Zebra"}, got)
	})

	t.Run("empty values dropped", func(t *testing.T) {
		withBlank := append(catalog(), model.Fund{SchemeCode: 900, SchemeName: ""})
		got := filter.DistinctValues(withBlank, filter.ByFundHouse)
		assert.NotContains(t, got, "")
	})

	t.Run("empty catalog yields empty list", func(t *testing.T) {
		got := filter.DistinctValues(nil, filter.ByType)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestOptions(t *testing.T) {
	opts := filter.Options(catalog())

	assert.Equal(t, []string{"Axis", "HDFC", "Mirae Asset", "SBI", "Zebra"}, opts.FundHouses)
	assert.Equal(t, []string{"Debt Fund", "ELSS", "Equity Fund"}, opts.Types)
	assert.Contains(t, opts.Categories, "Large Cap")
	assert.Contains(t, opts.Categories, "Mid Cap")
	assert.IsNonDecreasing(t, opts.Categories)
}

func TestSelectedFirst(t *testing.T) {
	funds := catalog()
	selected := map[int]bool{300: true, 101: true}

	got := filter.SelectedFirst(funds, func(f model.Fund) bool { return selected[f.SchemeCode] })

	assert.Equal(t, []int{101, 300, 100, 200, 400, 500}, codes(got))
}
