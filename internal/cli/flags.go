package cli

import (
	"flag"

	"github.com/eshaffer321/venmo-auto-cashout/internal/application/cashout"
)

// RunFlags are the command line flags for a cashout run
type RunFlags struct {
	DryRun           bool
	Quiet            bool
	LookbackDays     int
	CashOutRemainder bool
	ImportExpenses   bool
	ConfigPath       string
	Verbose          bool
}

// ParseRunFlags parses cashout flags from the command line
func ParseRunFlags() RunFlags {
	var flags RunFlags
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Report intended transfers without making them")
	flag.BoolVar(&flags.Quiet, "quiet", false, "Only print output when transfers are made")
	flag.IntVar(&flags.LookbackDays, "days", 30, "Number of days of transactions to look back")
	flag.BoolVar(&flags.CashOutRemainder, "cash-out-remainder", false, "Also transfer balance not tied to any transaction")
	flag.BoolVar(&flags.ImportExpenses, "import-expenses", false, "Import new expenses into Lunch Money")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file (falls back to environment)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ToOptions converts RunFlags to cashout.Options
func (f RunFlags) ToOptions() cashout.Options {
	return cashout.Options{
		DryRun:           f.DryRun,
		LookbackDays:     f.LookbackDays,
		CashOutRemainder: f.CashOutRemainder,
		ImportExpenses:   f.ImportExpenses,
	}
}
