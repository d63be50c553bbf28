/*
Package token implements fungible tokens on top of ledger accounts.

A mint account describes a token: its supply, the number of decimals and the
authority allowed to create new units. A token account holds a balance of a
single mint on behalf of an owner. Both are owned by the token program and
use fixed binary layouts, see Mint and Account.

The associated token program derives one canonical token account per wallet
and mint, so that a counterparty can always find where to send tokens.
*/
package token
