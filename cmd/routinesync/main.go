// routinesync - SQL Server routine deployment CLI
//
// routinesync keeps stored procedures, functions and triggers stored as .sql
// files in sync with a SQL Server database, applying every change in one
// transaction.
package main

import (
	"github.com/enunezf/routinesync/internal/cli"
)

func main() {
	cli.Execute()
}
