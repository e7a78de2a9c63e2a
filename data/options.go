package data

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// AccountTypes holds the root names of the five account categories.
type AccountTypes struct {
	Assets      string
	Liabilities string
	Equity      string
	Income      string
	Expenses    string
}

// Roots returns the root names in their conventional order.
func (t AccountTypes) Roots() []string {
	return []string{t.Assets, t.Liabilities, t.Equity, t.Income, t.Expenses}
}

// Options holds the ledger-wide settings that come with the entries.
type Options struct {
	Title               string
	OperatingCurrencies []string
	AccountTypes        AccountTypes
	RenderCommas        bool
	// DisplayPrecision overrides the number of decimals shown per currency.
	DisplayPrecision map[string]int32
	// InferredToleranceDefault is used for balance assertions without explicit tolerance.
	InferredToleranceDefault decimal.Decimal

	Filename  string
	Includes  []string
	Documents []string

	AccountPreviousBalances    string
	AccountPreviousEarnings    string
	AccountPreviousConversions string
	AccountCurrentEarnings     string
	AccountCurrentConversions  string
}

// DefaultOptions returns the options of an empty ledger.
func DefaultOptions() Options {
	return Options{
		AccountTypes: AccountTypes{
			Assets:      "Assets",
			Liabilities: "Liabilities",
			Equity:      "Equity",
			Income:      "Income",
			Expenses:    "Expenses",
		},
		DisplayPrecision:           map[string]int32{},
		InferredToleranceDefault:   decimal.RequireFromString("0.005"),
		AccountPreviousBalances:    "Opening-Balances",
		AccountPreviousEarnings:    "Earnings:Previous",
		AccountPreviousConversions: "Conversions:Previous",
		AccountCurrentEarnings:     "Earnings:Current",
		AccountCurrentConversions:  "Conversions:Current",
	}
}

// EquityAccount prefixes an equity sub-account name with the equity root.
func (o Options) EquityAccount(name string) string {
	return AccountJoin(o.AccountTypes.Equity, name)
}

// IsBalanceSheetAccount reports whether name is an asset, liability or equity account.
func (o Options) IsBalanceSheetAccount(name string) bool {
	root := AccountRoot(name)
	return root == o.AccountTypes.Assets || root == o.AccountTypes.Liabilities || root == o.AccountTypes.Equity
}

// IsIncomeStatementAccount reports whether name is an income or expenses account.
func (o Options) IsIncomeStatementAccount(name string) bool {
	root := AccountRoot(name)
	return root == o.AccountTypes.Income || root == o.AccountTypes.Expenses
}

// AccountSign returns +1 for accounts with a normal debit balance and -1 otherwise.
func (o Options) AccountSign(name string) int {
	switch AccountRoot(name) {
	case o.AccountTypes.Assets, o.AccountTypes.Expenses:
		return 1
	}
	return -1
}

// IsOperatingCurrency reports whether currency is listed as operating currency.
func (o Options) IsOperatingCurrency(currency string) bool {
	return slices.Contains(o.OperatingCurrencies, currency)
}
