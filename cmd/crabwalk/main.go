// Command crabwalk orchestrates SQL transformations over DuckDB.
package main

import (
	"os"

	"github.com/crabwalk-labs/crabwalk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
