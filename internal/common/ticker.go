// Package common provides shared utilities across the application.
package common

import (
	"fmt"
	"strings"
)

// maxTickerLen bounds accepted symbols; the longest real listings are
// well under this.
const maxTickerLen = 12

// NormalizeTicker canonicalizes a ticker symbol: surrounding whitespace is
// trimmed and the symbol is uppercased, so "aapl" and "AAPL" address the
// same cache row. Returns an error for empty or malformed input.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		return "", fmt.Errorf("ticker cannot be empty")
	}
	if len(ticker) > maxTickerLen {
		return "", fmt.Errorf("ticker too long: %q", ticker)
	}
	for _, r := range ticker {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '.' && r != '-' {
			return "", fmt.Errorf("ticker contains invalid character %q", r)
		}
	}
	return ticker, nil
}
