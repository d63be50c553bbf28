/*
Package escrow implements a two party token swap.

A maker locks an amount of one token (the deposit mint) in a vault and names
the amount of another token (the receive mint) wanted in return. Any taker
that pays the asked amount receives the whole deposit in the same
transaction. Until then, the maker can refund the deposit.

The terms are kept in a record account whose address is derived from the
maker and a maker chosen seed. The vault is a token account owned by the
record address. Only this program can sign for the record, so no one else
can move or close the vault.
*/
package escrow
