// Package store defines the user-record datastore used by the account
// and authentication flows, along with its sentinel errors and the
// password hashing helpers that belong next to the stored hash.
//
// Storage adapters (memory, postgres) implement the UserStore interface
// defined in this package.
package store
