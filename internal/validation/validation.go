// Package validation checks command-line inputs before any work starts.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// IsReadableFile checks that path names an existing regular file.
func IsReadableFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("file path must not be empty")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'json', 'yaml'", format)
	}
}

// IsPrivateFile reports an error when a file holding conversation history
// or goal data is readable by others.
func IsPrivateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error checking file %s: %w", path, err)
	}
	if info.Mode().Perm()&0o007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600", info.Mode().Perm())
	}
	return nil
}
