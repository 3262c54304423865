// Package normalize turns the loosely typed values stored by upstream
// tournament imports into display-ready values.
//
// Every function in this package is total: malformed input degrades to a
// documented fallback (the trimmed input, an absent value, an empty map)
// and never produces an error or a panic. All functions are safe for
// concurrent use.
package normalize
