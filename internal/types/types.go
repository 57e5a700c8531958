// Package types defines the cross‑package data structures used by the d2p CLI.
package types

const (
	// NotebookFileExtension identifies Jupyter notebook files that receive cell extraction.
	NotebookFileExtension = ".ipynb"

	// EmptyFileSentinel replaces blank file content in the assembled document.
	EmptyFileSentinel = "EMPTY FILE"

	// OutputFileExtension is appended to the output file name.
	OutputFileExtension = ".txt"
)

// IgnoreConfiguration holds the two disjoint glob-pattern sets consumed by the traversal.
// Directory patterns prune entries from the listing; file patterns exclude
// files from the collected path list only.
type IgnoreConfiguration struct {
	DirectoryPatterns []string
	FilePatterns      []string
}

// PromptOptions carries the already-validated parameters for one prompt assembly.
type PromptOptions struct {
	RootDirectory    string
	ExtensionFilters []string
	Ignore           IgnoreConfiguration
}

// NotebookCell is one typed cell of a Jupyter notebook document.
type NotebookCell struct {
	CellType string   `json:"cell_type"`
	Source   []string `json:"source"`
}

// NotebookDocument is the subset of the notebook format the extractor consumes.
// Cells is a pointer so a document lacking the cell array can be distinguished
// from one whose array is empty.
type NotebookDocument struct {
	Cells *[]NotebookCell `json:"cells"`
}
