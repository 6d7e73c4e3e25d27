// Package session holds the authentication state of the CLI.
//
// A Store is either Anonymous (no token) or Authenticated. The bearer token
// is written through to durable storage on every transition, so the token
// in memory and the one on disk never disagree after a call returns. The
// Store is the connection.TokenSource of the API client.
package session
