package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d2ptools/d2p/internal/types"
	"github.com/d2ptools/d2p/internal/utils"
)

const (
	contextOpenTag        = "<context>\n"
	contextCloseTag       = "</context>"
	directoryTreeOpenTag  = "<directory_tree>\n"
	directoryTreeCloseTag = "</directory_tree>\n\n"
	filesOpenTag          = "<files>\n\n"
	filesCloseTag         = "</files>\n"
	fileOpenTag           = "<file>\n"
	fileCloseTag          = "</file>\n\n"
	pathTagFormat         = "<path>%s</path>\n"
	contentOpenTag        = "<content>\n"
	contentCloseTag       = "\n</content>\n"

	// warningUndecodableFileFormat is used when file content is not valid text.
	warningUndecodableFileFormat = "Warning: unable to decode file content: %s\n"
	// warningUnreadableFileFormat is used when a listed file cannot be read.
	warningUnreadableFileFormat = "Warning: failed to read file %s: %v\n"
)

// errUndecodableContent marks file bytes that are not decodable text.
var errUndecodableContent = errors.New("content is not valid text")

// BuildPrompt assembles the final prompt document for the configured root
// directory. It renders the directory tree once, then embeds the content of
// every collected file that passes the optional extension filters. Files that
// disappear or whose content cannot be decoded are omitted with a diagnostic
// on stderr; the document itself stays well formed.
func BuildPrompt(options types.PromptOptions) (string, error) {
	treeRendering, collectedFilePaths, treeError := BuildDirectoryTree(options.RootDirectory, options.Ignore)
	if treeError != nil {
		return "", treeError
	}

	var documentBuilder strings.Builder
	documentBuilder.WriteString(contextOpenTag)
	documentBuilder.WriteString(directoryTreeOpenTag)
	documentBuilder.WriteString(treeRendering)
	documentBuilder.WriteString(directoryTreeCloseTag)

	documentBuilder.WriteString(filesOpenTag)
	for _, relativeFilePath := range collectedFilePaths {
		if !matchesExtensionFilters(relativeFilePath, options.ExtensionFilters) {
			continue
		}

		fileContent, readError := readFileContent(options.RootDirectory, relativeFilePath)
		if readError != nil {
			if errors.Is(readError, errUndecodableContent) {
				fmt.Fprintf(os.Stderr, warningUndecodableFileFormat, relativeFilePath)
			} else {
				fmt.Fprintf(os.Stderr, warningUnreadableFileFormat, relativeFilePath, readError)
			}
			continue
		}
		if strings.TrimSpace(fileContent) == "" {
			fileContent = types.EmptyFileSentinel
		}

		documentBuilder.WriteString(fileOpenTag)
		fmt.Fprintf(&documentBuilder, pathTagFormat, relativeFilePath)
		documentBuilder.WriteString(contentOpenTag)
		documentBuilder.WriteString(fileContent)
		documentBuilder.WriteString(contentCloseTag)
		documentBuilder.WriteString(fileCloseTag)
	}
	documentBuilder.WriteString(filesCloseTag)
	documentBuilder.WriteString(contextCloseTag)

	return documentBuilder.String(), nil
}

// matchesExtensionFilters reports whether the path passes the allowed
// extension filters. An empty filter set admits every file; otherwise the
// path must end with one of the filters (suffix match, not glob).
func matchesExtensionFilters(relativeFilePath string, extensionFilters []string) bool {
	if len(extensionFilters) == 0 {
		return true
	}
	for _, extensionFilter := range extensionFilters {
		if strings.HasSuffix(relativeFilePath, extensionFilter) {
			return true
		}
	}
	return false
}

// readFileContent returns the textual content for one collected file,
// applying notebook cell extraction to notebook files and raw reads to
// everything else. The file handle is scoped to the read itself; bytes that
// are not decodable text yield errUndecodableContent.
func readFileContent(rootDirectory string, relativeFilePath string) (string, error) {
	fullFilePath := filepath.Join(rootDirectory, relativeFilePath)
	if strings.HasSuffix(relativeFilePath, types.NotebookFileExtension) {
		return ExtractNotebookContent(fullFilePath)
	}

	fileBytes, readError := os.ReadFile(fullFilePath)
	if readError != nil {
		return "", readError
	}
	if utils.IsBinary(fileBytes) {
		return "", errUndecodableContent
	}
	return string(fileBytes), nil
}
