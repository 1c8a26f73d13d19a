package common

import (
	"flag"
	"fmt"
	"os"
)

// CommonFlags contains flags shared by the advisor commands
type CommonFlags struct {
	EnvFile     *string
	Preset      *string
	Account     *float64
	NoColors    *bool
	MetricsAddr *string
	JSONOut     *string
	Version     *bool
}

// RegisterCommonFlags registers common flags with the default flag set
func RegisterCommonFlags() *CommonFlags {
	return &CommonFlags{
		EnvFile:     flag.String("env", ".env", "Environment file path"),
		Preset:      flag.String("preset", "moderate", "Risk preset (conservative, moderate, aggressive)"),
		Account:     flag.Float64("account", 0, "Account value in dollars (0 = ACCOUNT_BALANCE env or 100000)"),
		NoColors:    flag.Bool("no-colors", false, "Disable colored output"),
		MetricsAddr: flag.String("metrics-addr", "", "Serve Prometheus metrics on this address after the run"),
		JSONOut:     flag.String("json-out", "", "Write the assessment JSON to this path"),
		Version:     flag.Bool("version", false, "Show version information"),
	}
}

// Exitf prints a formatted message to stderr and exits non-zero.
func Exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
