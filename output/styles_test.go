package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStylesKeepText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Success", styles.Success("test message"), "test message"},
		{"Error", styles.Error("error message"), "error message"},
		{"FilePath", styles.FilePath("/path/to/ledger.yaml"), "/path/to/ledger.yaml"},
		{"Account", styles.Account("Assets:Checking"), "Assets:Checking"},
		{"Amount", styles.Amount("100.50 USD", false), "100.50"},
		{"NegativeAmount", styles.Amount("-3.20 EUR", true), "-3.20"},
		{"Keyword", styles.Keyword("balance"), "balance"},
		{"Header", styles.Header("Account"), "Account"},
		{"Dim", styles.Dim("dimmed text"), "dimmed text"},
		{"Warning", styles.Warning("warning message"), "warning"},
		{"FastTiming", styles.Timing("5ms", false), "5ms"},
		{"SlowTiming", styles.Timing("500ms", true), "500ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.got, tt.want)
		})
	}
}

func TestStylesWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	// A buffer is not a terminal, so no escape sequences are emitted.
	assert.Equal(t, "Assets:Checking", styles.Account("Assets:Checking"))
	assert.Equal(t, "-", styles.Status(""))
	assert.Equal(t, "●", styles.Status("green"))
	assert.NotZero(t, styles.Renderer())
}
