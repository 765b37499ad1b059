// Package main provides the inkwell CLI.
package main

import (
	"os"

	_ "github.com/inkwell-sql/inkwell/internal/bootstrap"
	"github.com/inkwell-sql/inkwell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
