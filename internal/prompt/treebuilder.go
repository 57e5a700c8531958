// Package prompt contains the core logic for directory traversal and prompt
// document assembly.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d2ptools/d2p/internal/types"
	"github.com/d2ptools/d2p/internal/utils"
)

const (
	// middleEntryConnector prefixes every entry except the last one at a level.
	middleEntryConnector = "├── "
	// lastEntryConnector prefixes the lexicographically last entry at a level.
	lastEntryConnector = "└── "
	// nestingPrefix is repeated once per ancestor level before the connector.
	nestingPrefix = "│   "
	// directorySuffix marks directory entries in the rendering.
	directorySuffix = "/"

	// warningSkipSubdirFormat is used when a subdirectory cannot be processed.
	warningSkipSubdirFormat = "Warning: skipping subdirectory %s due to error: %v\n"

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorReadDirectoryFormat is used when the root directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
)

// BuildDirectoryTree walks rootDirectoryPath and returns the rendered tree
// string together with the ordered list of file paths relative to the root.
//
// Directory-ignore patterns prune matching entries from the listing entirely,
// files and subdirectories alike, so a pruned directory is neither rendered
// nor descended into. File-ignore patterns exclude matching files from the
// returned path list only; the entries still appear in the rendering.
//
// Symbolic links are classified by following them, so a link cycle makes the
// walk descend until the operating system refuses the path; the failing
// subtree is then skipped with a diagnostic rather than aborting the walk.
func BuildDirectoryTree(rootDirectoryPath string, ignore types.IgnoreConfiguration) (string, []string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return "", nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)

	var treeBuilder strings.Builder
	treeBuilder.WriteString(filepath.Base(cleanedRootPath) + directorySuffix + "\n")

	subtreeRendering, collectedFilePaths, buildError := buildSubtree(cleanedRootPath, "", 0, ignore)
	if buildError != nil {
		return "", nil, fmt.Errorf(errorReadDirectoryFormat, rootDirectoryPath, buildError)
	}
	treeBuilder.WriteString(subtreeRendering)

	return treeBuilder.String(), collectedFilePaths, nil
}

// buildSubtree renders one directory level and returns the rendering together
// with the file paths collected beneath it. Each invocation accumulates into
// its own local slice; the caller concatenates child results, so no collection
// is shared across recursive calls.
func buildSubtree(currentDirectoryPath string, relativeDirectory string, nestingLevel int, ignore types.IgnoreConfiguration) (string, []string, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return "", nil, readDirectoryError
	}

	visibleEntries := make([]os.DirEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if utils.MatchesAnyPattern(directoryEntry.Name(), ignore.DirectoryPatterns) {
			continue
		}
		visibleEntries = append(visibleEntries, directoryEntry)
	}

	var treeBuilder strings.Builder
	var collectedFilePaths []string

	for entryIndex, directoryEntry := range visibleEntries {
		entryName := directoryEntry.Name()
		entryPath := filepath.Join(currentDirectoryPath, entryName)

		connector := middleEntryConnector
		if entryIndex == len(visibleEntries)-1 {
			connector = lastEntryConnector
		}
		if nestingLevel > 0 {
			treeBuilder.WriteString(strings.Repeat(nestingPrefix, nestingLevel))
		}

		if isDirectory(entryPath) {
			treeBuilder.WriteString(connector + entryName + directorySuffix + "\n")
			childRendering, childFilePaths, childError := buildSubtree(entryPath, filepath.Join(relativeDirectory, entryName), nestingLevel+1, ignore)
			if childError != nil {
				fmt.Fprintf(os.Stderr, warningSkipSubdirFormat, entryPath, childError)
				continue
			}
			treeBuilder.WriteString(childRendering)
			collectedFilePaths = append(collectedFilePaths, childFilePaths...)
			continue
		}

		treeBuilder.WriteString(connector + entryName + "\n")
		if !utils.MatchesAnyPattern(entryName, ignore.FilePatterns) {
			collectedFilePaths = append(collectedFilePaths, filepath.Join(relativeDirectory, entryName))
		}
	}

	return treeBuilder.String(), collectedFilePaths, nil
}

// isDirectory reports whether the path resolves to a directory, following
// symbolic links. A path that cannot be resolved is treated as a file so the
// failure surfaces at read time instead of aborting the traversal.
func isDirectory(path string) bool {
	fileInformation, statError := os.Stat(path)
	return statError == nil && fileInformation.IsDir()
}
