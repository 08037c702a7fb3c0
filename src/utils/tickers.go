package utils

import (
	"regexp"
	"strings"
)

var (
	// $AAPL, $BRK-A
	dollarTickerRe = regexp.MustCompile(`\$([A-Z]{1,5})(?:[\-\.]([A-Z]{1,2}))?\b`)
	// BRK-A, BRK.B
	joinedTickerRe = regexp.MustCompile(`\b([A-Z]{1,5})[\-\.]([A-Z]{1,2})\b`)
	// AAPL, only when whitelisted
	bareTickerRe = regexp.MustCompile(`\b([A-Z]{1,5})\b`)
)

// -----------------------------------------------------------------------------

// ExtractTickers finds ticker symbols in free text.
//
// The text is upper-cased first, then three passes run in precedence order:
// $-prefixed tokens and hyphen/dot-joined tokens are always accepted, while bare
// words must be on the known-ticker whitelist and must not be a part of an
// already accepted joined ticker. Discovery order is preserved and the first
// occurrence of a duplicate wins. Dotted suffixes are normalized to a hyphen.
func ExtractTickers(text string) []string {
	upper := strings.ToUpper(text)

	tickers := []string{}
	seen := make(map[string]bool)
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			tickers = append(tickers, t)
		}
	}

	for _, m := range dollarTickerRe.FindAllStringSubmatch(upper, -1) {
		if m[2] != "" {
			add(m[1] + "-" + m[2])
		} else {
			add(m[1])
		}
	}

	for _, m := range joinedTickerRe.FindAllStringSubmatch(upper, -1) {
		add(m[1] + "-" + m[2])
	}

	parts := make(map[string]bool)
	for _, t := range tickers {
		for _, p := range strings.Split(t, "-") {
			parts[p] = true
		}
	}

	for _, m := range bareTickerRe.FindAllStringSubmatch(upper, -1) {
		word := m[1]
		if IsKnownTicker(word) && !parts[word] {
			add(word)
		}
	}

	return tickers
}

// -----------------------------------------------------------------------------

// NormalizeTicker trims a user-typed symbol into the form the data service expects.
func NormalizeTicker(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	t = strings.TrimPrefix(t, "$")
	return strings.ReplaceAll(t, ".", "-")
}

// -----------------------------------------------------------------------------

// CorrectTicker applies the typo table (APPL to AAPL, FB to META, ...).
// The second result is true when a correction was made.
func CorrectTicker(ticker string) (string, bool) {
	if c, ok := tickerCorrections[ticker]; ok && c != ticker {
		return c, true
	}
	return ticker, false
}

// -----------------------------------------------------------------------------

// CompanyTickers returns tickers for company names mentioned as whole words in
// the text, in table order.
func CompanyTickers(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for i, c := range companyToTicker {
		if companyPatterns[i].MatchString(lower) {
			out = append(out, c.Ticker)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// ResolveTickers is the host-side resolution pass: company names first, then
// extracted symbols, corrected and deduplicated in order.
func ResolveTickers(text string) []string {
	candidates := append(CompanyTickers(text), ExtractTickers(text)...)

	out := []string{}
	seen := make(map[string]bool)
	for _, t := range candidates {
		t, _ = CorrectTicker(t)
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
