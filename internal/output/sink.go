package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix     = ".lock"
	temporaryFileGlob  = ".fuse-*"
	outputPermissions  = 0o644
	documentTerminator = "\n"
)

// ErrSinkLocked reports an output file held by another fuse process.
var ErrSinkLocked = errors.New("output file is locked by another process")

// Sink receives the finished document: standard output or a file that is
// locked for the whole run and replaced atomically on Write.
type Sink struct {
	writer   io.Writer
	filePath string
	lock     *flock.Flock
}

// OpenSink returns a sink writing to filePath, or to stdout when filePath is
// empty. The file lock is taken immediately so an unusable destination fails
// before any traversal work.
func OpenSink(filePath string, stdout io.Writer) (*Sink, error) {
	if filePath == "" {
		return &Sink{writer: stdout}, nil
	}
	directory := filepath.Dir(filePath)
	if info, statError := os.Stat(directory); statError != nil {
		return nil, fmt.Errorf("create output file %s: %w", filePath, statError)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("create output file %s: %s is not a directory", filePath, directory)
	}
	if info, statError := os.Stat(filePath); statError == nil && info.IsDir() {
		return nil, fmt.Errorf("create output file %s: path is a directory", filePath)
	}
	lock := flock.New(filePath + lockFileSuffix)
	acquired, lockError := lock.TryLock()
	if lockError != nil {
		return nil, fmt.Errorf("create output file %s: %w", filePath, lockError)
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", filePath, ErrSinkLocked)
	}
	return &Sink{filePath: filePath, lock: lock}, nil
}

// Paths returns the output file and its lock file, or nil for stdout.
// Traversal skips them so a run never reads its own output.
func (sink *Sink) Paths() []string {
	if sink.filePath == "" {
		return nil
	}
	return []string{sink.filePath, sink.lock.Path()}
}

// Write emits document followed by a newline. An empty document writes
// nothing to stdout and leaves an empty output file.
func (sink *Sink) Write(document string) error {
	data := document
	if data != "" {
		data += documentTerminator
	}
	if sink.filePath == "" {
		if data == "" {
			return nil
		}
		_, writeError := io.WriteString(sink.writer, data)
		return writeError
	}
	return atomicWrite(sink.filePath, []byte(data))
}

// Close releases the file lock and removes the lock file.
func (sink *Sink) Close() error {
	if sink.lock == nil {
		return nil
	}
	unlockError := sink.lock.Unlock()
	removeError := os.Remove(sink.lock.Path())
	if removeError != nil && !os.IsNotExist(removeError) {
		return errors.Join(unlockError, removeError)
	}
	return unlockError
}

// atomicWrite writes into a temporary sibling and renames it over filePath so
// readers never observe a partial document.
func atomicWrite(filePath string, data []byte) error {
	directory := filepath.Dir(filePath)
	temporaryFile, createError := os.CreateTemp(directory, temporaryFileGlob)
	if createError != nil {
		return fmt.Errorf("create temporary output in %s: %w", directory, createError)
	}
	temporaryPath := temporaryFile.Name()
	committed := false
	defer func() {
		if !committed {
			temporaryFile.Close()
			os.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.Write(data); writeError != nil {
		return fmt.Errorf("write temporary output: %w", writeError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		return fmt.Errorf("sync temporary output: %w", syncError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf("close temporary output: %w", closeError)
	}
	if chmodError := os.Chmod(temporaryPath, outputPermissions); chmodError != nil {
		return fmt.Errorf("set output permissions: %w", chmodError)
	}
	if renameError := os.Rename(temporaryPath, filePath); renameError != nil {
		return fmt.Errorf("move output into %s: %w", filePath, renameError)
	}
	committed = true
	return nil
}
