package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/d2ptools/d2p/internal/types"
)

const (
	// cellSeparatorBar frames the numbered cell header line.
	cellSeparatorBar = "----------"
	// cellHeaderFormat renders the numbered, type-labeled cell separator.
	cellHeaderFormat = "%s Cell %d (%s) %s\n"

	// errorNotebookParseFormat is used when the notebook is not valid JSON.
	errorNotebookParseFormat = "parsing notebook %s: %w"
	// errorNotebookMissingCellsFormat is used when the cell array is absent.
	errorNotebookMissingCellsFormat = "notebook %s has no cells array"
)

// ExtractNotebookContent reads a Jupyter notebook file and returns a single
// string in which every cell is preceded by a numbered, type-labeled separator
// line and followed by a blank line.
func ExtractNotebookContent(notebookFilePath string) (string, error) {
	notebookBytes, readError := os.ReadFile(notebookFilePath)
	if readError != nil {
		return "", readError
	}

	var notebookDocument types.NotebookDocument
	if unmarshalError := json.Unmarshal(notebookBytes, &notebookDocument); unmarshalError != nil {
		return "", fmt.Errorf(errorNotebookParseFormat, notebookFilePath, unmarshalError)
	}
	if notebookDocument.Cells == nil {
		return "", fmt.Errorf(errorNotebookMissingCellsFormat, notebookFilePath)
	}

	var notebookBuilder strings.Builder
	for cellIndex, notebookCell := range *notebookDocument.Cells {
		fmt.Fprintf(&notebookBuilder, cellHeaderFormat, cellSeparatorBar, cellIndex+1, notebookCell.CellType, cellSeparatorBar)
		notebookBuilder.WriteString(strings.Join(notebookCell.Source, ""))
		notebookBuilder.WriteString("\n\n")
	}
	return notebookBuilder.String(), nil
}
