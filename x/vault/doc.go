/*
Package vault implements a personal lamport safe.

Every wallet has one vault at an address derived from the wallet. Deposit
moves lamports from the wallet into an empty vault and Withdraw returns the
whole balance. The vault stays owned by the system program, the vault
program only signs for it.
*/
package vault
