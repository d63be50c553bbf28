/*
Package p256vault implements a lamport safe controlled by a P-256 key.

The vault address is derived from a compressed secp256r1 public key, so the
key holder does not need a ledger account at all. Anyone can Deposit into an
empty vault. Withdraw moves the whole balance to a payer named in an
authorization the key holder signed, and only until the authorization
expires.

An authorization signs sha256(payer || expiry), expiry being little endian
unix seconds. Signatures are 64 bytes r || s and must use the low s form.
*/
package p256vault
