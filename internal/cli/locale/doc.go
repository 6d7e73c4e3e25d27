// Package locale stores the display language of the CLI.
//
// The preference is read from durable storage at startup, falling back to
// the environment language and then to English, and every change is
// written through. Printer returns an x/text message printer whose catalog
// covers the CLI status lines.
package locale
