// Package classifier derives a fund's house, type and category from its
// scheme name. The upstream catalog carries no structured attributes, so every
// grouping and filter in the application is built on these heuristics.
//
// Each classification is an independent first-match-wins pass over the
// upper-cased name; a name can be both "ELSS" by type and "Large Cap" by
// category.
package classifier

import "strings"

// Attributes are the derived attributes of a scheme.
type Attributes struct {
	FundHouse      string `json:"fundHouse"`
	SchemeType     string `json:"schemeType"`
	SchemeCategory string `json:"schemeCategory"`
}

// Default labels used when no rule matches.
const (
	DefaultSchemeType     = "Equity Fund"
	DefaultSchemeCategory = "Diversified Equity"
)

type rule struct {
	fragments []string
	label     string
}

// Order matters: earlier fragments shadow later ones ("LIC" before "UNION").
var fundHouseRules = []rule{
	{[]string{"HDFC"}, "HDFC"},
	{[]string{"ICICI"}, "ICICI Prudential"},
	{[]string{"SBI"}, "SBI"},
	{[]string{"AXIS"}, "Axis"},
	{[]string{"KOTAK"}, "Kotak"},
	{[]string{"NIPPON"}, "Nippon India"},
	{[]string{"ADITYA BIRLA"}, "Aditya Birla Sun Life"},
	{[]string{"MIRAE"}, "Mirae Asset"},
	{[]string{"DSP"}, "DSP"},
	{[]string{"FRANKLIN"}, "Franklin Templeton"},
	{[]string{"INVESCO"}, "Invesco"},
	{[]string{"UTI"}, "UTI"},
	{[]string{"TATA"}, "Tata"},
	{[]string{"BAJAJ"}, "Bajaj Finserv"},
	{[]string{"GROWW"}, "Groww"},
	{[]string{"BANDHAN"}, "Bandhan"},
	{[]string{"MOTILAL"}, "Motilal Oswal"},
	{[]string{"CANARA"}, "Canara Robeco"},
	{[]string{"EDELWEISS"}, "Edelweiss"},
	{[]string{"LIC"}, "LIC MF"},
	{[]string{"BARODA"}, "Baroda BNP Paribas"},
	{[]string{"MAHINDRA"}, "Mahindra Manulife"},
	{[]string{"SUNDARAM"}, "Sundaram"},
	{[]string{"UNION"}, "Union"},
	{[]string{"PGIM"}, "PGIM India"},
	{[]string{"HSBC"}, "HSBC"},
	{[]string{"JM "}, "JM Financial"},
	{[]string{"QUANT "}, "Quant"},
	{[]string{"SAMCO"}, "Samco"},
	{[]string{"SHRIRAM"}, "Shriram"},
}

var schemeTypeRules = []rule{
	{[]string{"ETF"}, "ETF"},
	{[]string{"INDEX"}, "Index Fund"},
	{[]string{"DEBT", "GILT", "LIQUID", "DURATION"}, "Debt Fund"},
	{[]string{"ARBITRAGE"}, "Arbitrage Fund"},
	{[]string{"ELSS", "TAX"}, "ELSS"},
	{[]string{"OVERNIGHT"}, "Overnight Fund"},
	{[]string{"MONEY MARKET"}, "Money Market Fund"},
}

// Plain substring tests: "IT" also matches words such as "EQUITY".
var schemeCategoryRules = []rule{
	{[]string{"LARGE CAP"}, "Large Cap"},
	{[]string{"MID CAP"}, "Mid Cap"},
	{[]string{"SMALL CAP"}, "Small Cap"},
	{[]string{"MULTI CAP"}, "Multi Cap"},
	{[]string{"FLEXI CAP"}, "Flexi Cap"},
	{[]string{"FOCUSED"}, "Focused Fund"},
	{[]string{"VALUE"}, "Value Fund"},
	{[]string{"CONTRA"}, "Contra Fund"},
	{[]string{"SECTOR", "BANKING", "PHARMA", "IT", "INFRASTRUCTURE", "ENERGY", "CONSUMPTION", "HEALTHCARE", "FINANCIAL"}, "Sectoral/Thematic"},
	{[]string{"INTERNATIONAL", "GLOBAL"}, "International Fund"},
	{[]string{"HYBRID", "BALANCED"}, "Hybrid Fund"},
}

// Classify derives all three attributes of a scheme name. It never fails.
func Classify(schemeName string) Attributes {
	return Attributes{
		FundHouse:      FundHouse(schemeName),
		SchemeType:     SchemeType(schemeName),
		SchemeCategory: SchemeCategory(schemeName),
	}
}

// FundHouse returns the canonical fund house (AMC) for a scheme name. Names
// matching no known issuer fall back to their first space-delimited token.
func FundHouse(schemeName string) string {
	if label, ok := firstMatch(strings.ToUpper(schemeName), fundHouseRules); ok {
		return label
	}
	first, _, _ := strings.Cut(schemeName, " ")
	return first
}

// SchemeType returns the scheme type, defaulting to DefaultSchemeType.
func SchemeType(schemeName string) string {
	if label, ok := firstMatch(strings.ToUpper(schemeName), schemeTypeRules); ok {
		return label
	}
	return DefaultSchemeType
}

// SchemeCategory returns the scheme category, defaulting to DefaultSchemeCategory.
func SchemeCategory(schemeName string) string {
	if label, ok := firstMatch(strings.ToUpper(schemeName), schemeCategoryRules); ok {
		return label
	}
	return DefaultSchemeCategory
}

func firstMatch(upperName string, rules []rule) (string, bool) {
	for _, r := range rules {
		for _, fragment := range r.fragments {
			if strings.Contains(upperName, fragment) {
				return r.label, true
			}
		}
	}
	return "", false
}
