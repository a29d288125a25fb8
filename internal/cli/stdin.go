package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const nullSeparator = "\x00"

// readStdinPaths reads root paths from reader. Paths are separated by NUL
// bytes when nullSeparated is set and by any whitespace otherwise; empty
// items are dropped.
func readStdinPaths(reader io.Reader, nullSeparated bool) ([]string, error) {
	if reader == nil {
		return nil, nil
	}
	data, readError := io.ReadAll(reader)
	if readError != nil {
		return nil, fmt.Errorf("read paths from standard input: %w", readError)
	}
	if !nullSeparated {
		return strings.Fields(string(data)), nil
	}
	var paths []string
	for _, item := range bytes.Split(data, []byte(nullSeparator)) {
		path := strings.TrimRight(string(item), "\r\n")
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// isTerminal reports whether file is attached to an interactive terminal.
func isTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
