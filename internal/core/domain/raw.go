package domain

// RawDocument represents the bytes of a source file before normalisation.
type RawDocument struct {
	// URI is the path of the source file.
	URI string

	// MIMEType is the content type (e.g., "text/x-terraform").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]any
}
