/*

Package tokenswap defines interfaces used throughout the ledger, such as:
storage, accounts, instructions, programs etc.
It also contains the deterministic address derivation used by programs to
own accounts no private key can sign for.
Look into this package to get an brief overview of design decisions made
around interfaces and program building blocks.

*/

package tokenswap
