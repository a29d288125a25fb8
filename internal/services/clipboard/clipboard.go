// Package clipboard copies rendered documents to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	systemclipboard "github.com/atotto/clipboard"
)

// ErrUnavailable reports a platform without a usable clipboard utility,
// for example a headless Linux host without xclip, xsel or wl-copy.
var ErrUnavailable = errors.New("system clipboard is unavailable")

// Copier copies a finished document.
type Copier interface {
	Copy(document string) error
}

// Service writes documents with github.com/atotto/clipboard.
type Service struct {
	unsupported func() bool
	write       func(string) error
}

// NewService returns a Service bound to the system clipboard.
func NewService() *Service {
	return &Service{
		unsupported: func() bool { return systemclipboard.Unsupported },
		write:       systemclipboard.WriteAll,
	}
}

// Copy replaces the clipboard contents with document.
func (service *Service) Copy(document string) error {
	if service.unsupported() {
		return ErrUnavailable
	}
	if writeError := service.write(document); writeError != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
