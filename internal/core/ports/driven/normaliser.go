package driven

import "context"

// Normaliser extracts plain text from documents of specific media
// types. Each normaliser handles a fixed set of types (e.g. Markdown,
// DOCX).
type Normaliser interface {
	// SupportedMediaTypes returns the media types this normaliser handles.
	SupportedMediaTypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Type-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts plain text from the raw content.
	Normalise(ctx context.Context, content []byte) (string, error)
}

// NormaliserRegistry selects the appropriate normaliser for a media
// type and dispatches to it.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	// Falls back to the lowest-priority registered normaliser when no
	// normaliser claims the media type.
	Normalise(ctx context.Context, mediaType string, content []byte) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMediaTypes returns all media types that can be normalised.
	SupportedMediaTypes() []string
}
