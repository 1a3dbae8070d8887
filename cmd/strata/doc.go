// Package strata provides the command-line interface for the Strata tool. It
// configures subcommands (analyze, signatures, store), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/strata-dev/strata/cmd/strata"
//	func main() { strata.Execute() }
package strata
