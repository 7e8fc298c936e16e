package model

// FundFilters is the user's filter specification. An empty field leaves that
// dimension unconstrained.
type FundFilters struct {
	SearchText       string `json:"searchText"`
	SelectedAMC      string `json:"selectedAMC"`
	SelectedCategory string `json:"selectedCategory"`
	SelectedType     string `json:"selectedType"`
}

// IsEmpty reports whether no constraint is set.
func (f FundFilters) IsEmpty() bool {
	return f.SearchText == "" && !f.HasActive()
}

// HasActive reports whether any of the attribute filters (not the search text) is set.
func (f FundFilters) HasActive() bool {
	return f.ActiveCount() > 0
}

// ActiveCount counts the attribute filters that are set.
func (f FundFilters) ActiveCount() int {
	count := 0
	for _, v := range []string{f.SelectedAMC, f.SelectedCategory, f.SelectedType} {
		if v != "" {
			count++
		}
	}
	return count
}
