// Package config loads ignore files and the fuse application configuration.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadIgnoreFileLines reads the raw lines of an ignore file. Lines are returned
// as written apart from line terminators, because leading and escaped trailing
// whitespace is significant to the pattern parser. A missing file yields no
// lines and no error.
//
// #nosec G304
func LoadIgnoreFileLines(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	info, statError := fileHandle.Stat()
	if statError != nil {
		return nil, fmt.Errorf("stat %s: %w", ignoreFilePath, statError)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", ignoreFilePath)
	}

	var lines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("scan %s: %w", ignoreFilePath, scanError)
	}
	return lines, nil
}
