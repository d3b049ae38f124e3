// Package currency resolves the currency for a donation from the
// submission context and formats minor-unit amounts for display.
package currency

import (
	"fmt"
	"strconv"
	"strings"

	"globalcrusade/pkg/types"
)

// Donations at or above this amount are assumed to be Naira regardless
// of any other signal. Amounts are minor units, so this is 10,000 in
// the nominal unit.
const ngnThresholdCents = 10_000 * 100

var euCountries = []string{"france", "germany", "spain", "italy"}

var euTLDs = []string{".fr", ".de", ".es", ".it", ".eu"}

// Resolve maps a donation's context to a currency code. Rules apply in
// fixed priority order, first match wins; the function is total and
// always returns one of USD, NGN, EUR, GBP.
func Resolve(amountCents int64, method types.PaymentMethod, country, email string) types.Currency {
	if method == types.PaymentMethodBank {
		return types.CurrencyNGN
	}

	if amountCents >= ngnThresholdCents {
		return types.CurrencyNGN
	}

	if country != "" {
		lower := strings.ToLower(country)
		switch {
		case strings.Contains(lower, "nigeria"):
			return types.CurrencyNGN
		case containsAny(lower, euCountries):
			return types.CurrencyEUR
		case strings.Contains(lower, "uk"), strings.Contains(lower, "britain"):
			return types.CurrencyGBP
		}
	}

	if email != "" {
		lower := strings.ToLower(email)
		switch {
		case strings.HasSuffix(lower, ".ng"):
			return types.CurrencyNGN
		case hasAnySuffix(lower, euTLDs):
			return types.CurrencyEUR
		case strings.HasSuffix(lower, ".uk"):
			return types.CurrencyGBP
		}
	}

	return types.CurrencyUSD
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func Symbol(code types.Currency) string {
	switch code {
	case types.CurrencyNGN:
		return "₦"
	case types.CurrencyEUR:
		return "€"
	case types.CurrencyGBP:
		return "£"
	}
	return "$"
}

// FormatAmount renders a minor-unit amount with its currency symbol and
// thousands separators, e.g. 500000 NGN -> "₦5,000.00".
func FormatAmount(amountCents int64, code types.Currency) string {
	return Symbol(code) + formatGrouped(amountCents)
}

// CentsToDecimal renders a minor-unit amount as a plain decimal string
// with two fraction digits, e.g. 500000 -> "5000.00".
func CentsToDecimal(amountCents int64) string {
	sign := ""
	if amountCents < 0 {
		sign = "-"
		amountCents = -amountCents
	}
	return fmt.Sprintf("%s%d.%02d", sign, amountCents/100, amountCents%100)
}

// ParseAmount converts a user-entered decimal amount into minor units.
// At most two fraction digits are accepted.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	return units*100 + cents, nil
}

func formatGrouped(amountCents int64) string {
	whole := strconv.FormatInt(amountCents/100, 10)

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}

	return fmt.Sprintf("%s.%02d", b.String(), amountCents%100)
}
