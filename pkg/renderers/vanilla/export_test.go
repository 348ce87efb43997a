package vanilla

import "io/fs"

// ReadEmbedded exposes the embedded templates to external tests.
func ReadEmbedded(name string) ([]byte, error) {
	return fs.ReadFile(embeddedTemplates, name)
}
