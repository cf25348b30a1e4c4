// Package accounts implements the user directory: account creation, credential
// checks, and the public projection that is safe to expose to clients.
//
// Accounts are stored in a [store.Repository] under the "users" collection with
// ids of the form "user_<n>". Secrets are never stored in the clear; the
// directory hashes them with argon2id and a per-account random salt.
//
// Every value that leaves this package describing an account is a [Public],
// never the stored [Account].
package accounts
