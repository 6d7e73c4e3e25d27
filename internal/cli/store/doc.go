// Package store holds the client-side collections of server data: unions,
// players and characters.
//
// Every mutation is one round trip through the API client. The local
// collection changes only after the server confirms the operation; a
// failed call leaves it exactly as it was and returns the normalized
// *connection.Error.
package store
