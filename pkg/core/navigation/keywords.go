package navigation

import "strings"

// keywordRoutes maps message keywords to tab ids for the no-provider
// fallback. Earlier entries win, so put the more specific phrases first.
var keywordRoutes = []struct {
	keyword string
	tabID   string
}{
	{"cap rate", "proforma"},
	{"cash on cash", "proforma"},
	{"noi", "proforma"},
	{"pro forma", "proforma"},
	{"proforma", "proforma"},
	{"vacancy", "proforma"},
	{"absorption", "absorption"},
	{"sale pace", "absorption"},
	{"premium", "land-pricing"},
	{"lot price", "land-pricing"},
	{"pricing", "land-pricing"},
	{"price", "land-pricing"},
	{"escalation", "growth-rates"},
	{"growth", "growth-rates"},
	{"assumption", "growth-rates"},
	{"step", "growth-rates"},
	{"rate", "growth-rates"},
	{"parcel", "containers"},
	{"phase", "containers"},
	{"acreage", "containers"},
	{"land plan", "containers"},
	{"unit", "containers"},
	{"document", "documents"},
	{"upload", "documents"},
	{"file", "documents"},
	{"report", "reports"},
	{"summary", "reports"},
	{"export", "reports"},
	{"settings", "settings"},
	{"provider", "settings"},
	{"config", "settings"},
	{"overview", "overview"},
}

// Suggest scans a free-text message for a known keyword and returns the tab
// it routes to along with the keyword that matched. Used when no model
// provider is available.
func Suggest(message string) (Tab, string, bool) {
	msg := strings.ToLower(message)
	for _, route := range keywordRoutes {
		if !strings.Contains(msg, route.keyword) {
			continue
		}
		tab, err := ResolveTab(route.tabID)
		if err != nil {
			continue
		}
		return tab, route.keyword, true
	}
	return Tab{}, "", false
}
