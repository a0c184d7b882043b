package transfer

import (
	"strings"

	"github.com/voidshard/ledgerview/pkg/domain"
)

const pinLength = 4

func digits(s string, max int) string {
	b := strings.Builder{}
	for _, r := range s {
		if b.Len() >= max {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanAccountNumber keeps digits only, truncated to the account number length.
func CleanAccountNumber(s string) string {
	return digits(s, domain.AccountNumberLength)
}

// CleanPIN keeps digits only, truncated to 4.
func CleanPIN(s string) string {
	return digits(s, pinLength)
}

// CleanAmount keeps digits and the first decimal point.
func CleanAmount(s string) string {
	b := strings.Builder{}
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !dot:
			dot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
