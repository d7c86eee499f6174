// Package normalisers provides implementations of the Normaliser
// interface for various document formats. Each normaliser knows how to
// extract plain text from a specific set of media types.
//
// Normalisers are registered with the Registry at startup; the registry
// dispatches by media type and falls back to the lowest-priority
// normaliser for types nothing claims.
package normalisers
