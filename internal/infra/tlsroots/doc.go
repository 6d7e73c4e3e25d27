// Package tlsroots builds the trusted root set for API connections: the
// system roots plus an optional PEM bundle, for servers behind a private CA.
package tlsroots
