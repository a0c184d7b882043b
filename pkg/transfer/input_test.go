package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanAmount(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"100":       "100",
		"1,000.50":  "1000.50",
		"1.2.3":     "1.23",
		"abc":       "",
		".5":        ".5",
		"-20":       "20",
		"12.34 GBP": "12.34",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanAmount(in), in)
	}
}

func TestCleanAccountNumber(t *testing.T) {
	assert.Equal(t, "123456789012", CleanAccountNumber("1234 5678 9012 345"))
	assert.Equal(t, "42", CleanAccountNumber("ac-42"))
}

func TestCleanPIN(t *testing.T) {
	assert.Equal(t, "0000", CleanPIN("000000"))
	assert.Equal(t, "12", CleanPIN("1x2"))
}
