// qsolog - QSO reconstruction for WSJT-X contact logs
//
// qsolog reads a WSJT-X ALL.TXT log, rebuilds the two-party exchanges it
// records and writes the completed ones as ADIF for import into logging
// software.
package main

import (
	"os"

	"github.com/ccollicutt/qsolog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
