package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes every document to its own file inside a directory.
type FilesystemOutput struct {
	dir string
}

// NewFilesystemOutput creates `dir` if needed, files from an earlier run with the same name
// are overwritten.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{dir: dir}, nil
}

func (o FilesystemOutput) Write(name string, contents string) {
	err := os.WriteFile(filepath.Join(o.dir, name), []byte(contents), 0644)
	if err != nil {
		slog.Warn("failed to dump document", "name", name, "err", err)
	}
}
