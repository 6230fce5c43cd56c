package model

import (
	"regexp"
	"strings"
)

// symbolPattern accepts exchange-suffixed tickers (2330.TW), index carets (^GSPC) and
// share classes (BRK-B).
var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,19}$`)

// NormalizeSymbol trims and uppercases symbol and rejects malformed input.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", InvalidSymbol(symbol, "symbol is empty")
	}
	if !symbolPattern.MatchString(s) {
		return "", InvalidSymbol(symbol, "symbol contains unsupported characters")
	}
	return s, nil
}
