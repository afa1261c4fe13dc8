package domain

// ExportArtifact is the terminal output of an export: a complete file ready
// to be handed to a sink.
type ExportArtifact struct {
	Filename string
	MimeType string
	Content  []byte
}
