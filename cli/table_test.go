package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beanreport/output"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	styles := output.NewStyles(&buf)

	t.Run("AlignsColumns", func(t *testing.T) {
		tbl := &table{}
		tbl.add(plain("Assets:Bank"), plain("-3.20 EUR"))
		tbl.add(plain("Food"), plain("3.20 EUR"))

		var out bytes.Buffer
		tbl.render(&out, styles)
		assert.Equal(t, "Assets:Bank  -3.20 EUR\nFood          3.20 EUR\n", out.String())
	})

	t.Run("LeftColumns", func(t *testing.T) {
		tbl := &table{left: 2}
		tbl.add(plain("a"), plain("long"), plain("1"))
		tbl.add(plain("bb"), plain("x"), plain("10"))

		var out bytes.Buffer
		tbl.render(&out, styles)
		assert.Equal(t, "a   long   1\nbb  x     10\n", out.String())
	})

	t.Run("WideRunes", func(t *testing.T) {
		tbl := &table{}
		tbl.add(plain("日本"), plain("1"))
		tbl.add(plain("abc"), plain("2"))
		assert.Equal(t, []int{4, 1}, tbl.widths())
	})

	t.Run("Header", func(t *testing.T) {
		tbl := &table{header: []string{"Account", "Balance"}}
		tbl.add(plain("Assets"), plain("1"))

		var out bytes.Buffer
		tbl.render(&out, styles)
		lines := strings.Split(out.String(), "\n")
		assert.Equal(t, 3, len(lines))
		assert.Contains(t, lines[0], "Account")
		assert.Contains(t, lines[0], "Balance")
		assert.Equal(t, "Assets         1", lines[1])
	})

	t.Run("StylesAfterPadding", func(t *testing.T) {
		tbl := &table{}
		tbl.add(plain("abc"), cell{text: "1", style: func(s string) string { return "[" + s + "]" }})
		tbl.add(plain("d"), plain("22"))

		var out bytes.Buffer
		tbl.render(&out, styles)
		assert.Equal(t, "abc  [ 1]\nd    22\n", out.String())
	})
}

func TestAccountCell(t *testing.T) {
	var buf bytes.Buffer
	styles := output.NewStyles(&buf)

	tests := []struct {
		account string
		base    string
		want    string
	}{
		{"Assets", "", "Assets"},
		{"Assets:Bank", "", "  Bank"},
		{"Assets:Bank:Checking", "", "    Checking"},
		{"Expenses:Food", "Expenses", "  Food"},
		{"Expenses", "Expenses", "Expenses"},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			assert.Equal(t, tt.want, accountCell(styles, tt.account, tt.base).text)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Groceries", truncate("Groceries", 20))
	assert.Equal(t, "Groc…", truncate("Groceries", 5))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "Bakery", formatValue("Bakery"))
	assert.Equal(t, "3.2", formatValue(3.2))
	assert.Equal(t, "true", formatValue(true))
}
