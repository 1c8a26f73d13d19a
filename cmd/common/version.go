package common

import "fmt"

// Version is stamped at build time via -ldflags.
var Version = "dev"

// PrintVersion prints the binary name with its version
func PrintVersion(name string) {
	fmt.Printf("%s %s\n", name, Version)
}
