package screener

import (
	_ "embed"
)

//go:embed default_screener.json
var defaultScreenerJSON []byte

// DefaultScreenerType names the fallback screener served for unknown types.
const DefaultScreenerType = "default"

// DefaultScreener returns the minimal contact and date-of-birth screener used
// when a requested screener type is not configured.
func DefaultScreener() *Screener {
	s, err := ParseSchema(defaultScreenerJSON)
	if err != nil {
		panic(err)
	}
	return s
}
