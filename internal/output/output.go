// Package output resolves the destination of the assembled prompt document
// and writes it to disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/d2ptools/d2p/internal/types"
)

const (
	// outputFileNameSuffix is appended to the root directory's base name when
	// no output file name is provided.
	outputFileNameSuffix = "_prompt"

	// errorWriteDocumentFormat reports a failure to write the output document.
	errorWriteDocumentFormat = "writing prompt document to %s: %w"

	outputFileMode = 0o644
)

// DefaultOutputFileName derives the output file name from the root
// directory's base name, resolving "." through the absolute path so the
// working directory's own name is used.
func DefaultOutputFileName(rootDirectory string) string {
	absolutePath, absolutePathError := filepath.Abs(rootDirectory)
	if absolutePathError != nil {
		absolutePath = rootDirectory
	}
	return filepath.Base(filepath.Clean(absolutePath)) + outputFileNameSuffix
}

// SaveDocument writes the document under outputDirectory as
// outputFileName plus the output extension and returns the written path.
// A write failure is fatal to the invocation since the document is the
// tool's only product.
func SaveDocument(documentContent string, outputDirectory string, outputFileName string) (string, error) {
	outputFilePath := filepath.Join(outputDirectory, outputFileName+types.OutputFileExtension)
	if writeError := os.WriteFile(outputFilePath, []byte(documentContent), outputFileMode); writeError != nil {
		return "", fmt.Errorf(errorWriteDocumentFormat, outputFilePath, writeError)
	}
	return outputFilePath, nil
}
