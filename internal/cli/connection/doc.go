// Package connection is the HTTP client for the union management API.
//
// Every request goes through Client.Do, which resolves the path against the
// configured base URL, attaches the default headers and the bearer token
// when one is available, and turns every failure into an *Error of one of
// four kinds:
//
//   - KindNoResponse: the server could not be reached or did not answer
//   - KindServerError: the server answered with a non-2xx status
//   - KindRequestSetup: the request could not be built
//   - KindValidation: a caller rejected input after a server error
//
// Requests are never retried.
package connection
