package xmlship

import (
	"os"
	"path/filepath"
)

// FileWriter persists an encoded document.
type FileWriter interface {
	// Write stores data at path, replacing any existing file.
	Write(path string, data []byte) error
}

// OSFileWriter writes documents to the local filesystem, creating parent
// directories as needed.
type OSFileWriter struct{}

var _ FileWriter = OSFileWriter{}

// Write implements FileWriter.
func (OSFileWriter) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
