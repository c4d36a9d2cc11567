package files

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// binarySniffLen is the prefix length inspected when classifying file content.
const binarySniffLen = 8000

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// ValidatePath checks if the given path is a valid file path for reading.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a file", path)
	}
	if info.Mode()&os.ModeType != 0 {
		return fmt.Errorf("path %q is not a regular file", path)
	}
	return nil
}

// IsBinaryContent reports whether content looks like binary data. A NUL byte in
// the sniffed prefix is the deciding signal, matching git's own heuristic.
func IsBinaryContent(content []byte) bool {
	sniff := content
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) != -1
}

// WriteFilePreserveMode replaces the content of an existing file, keeping its
// permission bits.
func WriteFilePreserveMode(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	return os.WriteFile(path, content, info.Mode().Perm())
}

// CreateFolderIfNotExists creates the directory and parents when missing.
func CreateFolderIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModePerm)
	}
	return nil
}
