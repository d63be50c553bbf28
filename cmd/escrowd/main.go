/*
escrowd operates a token swap ledger stored on the local disk.

Every command opens the ledger, executes a single transaction or query and
exits. Configuration is read from flags, ESCROWD_ prefixed environment
variables and the escrowd.toml file in the home directory, in that order
of precedence.

	$ escrowd keys generate
	$ escrowd init genesis.json
	$ escrowd escrow make --seed 1 --deposit-mint <A> --amount 10 --receive-mint <B> --receive 5
	$ escrowd escrow list
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
