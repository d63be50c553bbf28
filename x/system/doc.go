/*
Package system implements the program that owns every new account.

It creates accounts, hands their ownership over to other programs and moves
lamports between accounts that no other program claimed. Programs that need
storage call CreateAccount with a derived address as the new account.
*/
package system
