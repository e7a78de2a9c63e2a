package cli

type Commands struct {
	Globals

	Check    CheckCmd    `cmd:"" help:"Load a ledger export and report its errors."`
	Balances BalancesCmd `cmd:"" help:"Show account balances per interval."`
	Networth NetworthCmd `cmd:"" help:"Show net worth at the end of every interval."`
	Trial    TrialCmd    `cmd:"" help:"Show the trial balance."`
	Holdings HoldingsCmd `cmd:"" help:"Show asset and liability holdings."`
	Journal  JournalCmd  `cmd:"" help:"Show the journal of an account with running balances."`
	Status   StatusCmd   `cmd:"" help:"Show whether accounts are reconciled."`
	Context  ContextCmd  `cmd:"" help:"Show an entry with the balances before and after it."`
	Query    QueryCmd    `cmd:"" help:"Run a JSONPath query against all entries."`
	Doctor   DoctorCmd   `cmd:"" help:"Doctor utilities for debugging ledger exports."`
	Serve    ServeCmd    `cmd:"" help:"Serve metrics, sources and reload events over HTTP."`
}
