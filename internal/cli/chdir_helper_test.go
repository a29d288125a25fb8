package cli

import (
	"os"
	"testing"
)

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it
// changes the working directory and restores the previous one on cleanup.
func chdirForTest(testingHandle *testing.T, directory string) {
	testingHandle.Helper()
	previousDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		testingHandle.Fatalf("chdir: %v", getwdError)
	}
	if chdirError := os.Chdir(directory); chdirError != nil {
		testingHandle.Fatalf("chdir: %v", chdirError)
	}
	testingHandle.Cleanup(func() {
		if restoreError := os.Chdir(previousDirectory); restoreError != nil {
			testingHandle.Fatalf("chdir: %v", restoreError)
		}
	})
}
