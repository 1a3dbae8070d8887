package main

import "github.com/strata-dev/strata/cmd/strata"

func main() { strata.Execute() }
