package prompt_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/d2ptools/d2p/internal/prompt"
	"github.com/d2ptools/d2p/internal/types"
)

const (
	pythonFileName     = "a.py"
	pythonFileContent  = "print(1)"
	textDocumentName   = "b.txt"
	textDocumentBody   = "hello\nworld\n"
	smallNotebookName  = "c.ipynb"
	smallNotebookBody  = `{"cells": [{"cell_type": "code", "source": ["x = 1"]}]}`
	emptyFileName      = "blank.txt"
	binaryDataFileName = "data.raw"
)

// buildTestPrompt assembles a prompt for the directory, failing the test on error.
func buildTestPrompt(testingHandle *testing.T, options types.PromptOptions) string {
	testingHandle.Helper()
	promptDocument, buildError := prompt.BuildPrompt(options)
	if buildError != nil {
		testingHandle.Fatalf("BuildPrompt failed: %v", buildError)
	}
	return promptDocument
}

// TestBuildPromptDocumentLayout verifies the assembled document byte for byte
// for a directory containing one file and one ignored subdirectory.
func TestBuildPromptDocumentLayout(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	projectDirectory := filepath.Join(rootDirectory, "proj")
	ignoredDirectory := filepath.Join(projectDirectory, "sub")
	makeTestDirectory(testingHandle, ignoredDirectory)
	writeTestFile(testingHandle, filepath.Join(projectDirectory, "main.py"), "print(1)")
	writeTestFile(testingHandle, filepath.Join(ignoredDirectory, "x.py"), "x")

	promptDocument := buildTestPrompt(testingHandle, types.PromptOptions{
		RootDirectory: projectDirectory,
		Ignore:        types.IgnoreConfiguration{DirectoryPatterns: []string{"sub"}},
	})

	expectedDocument := "<context>\n" +
		"<directory_tree>\n" +
		"proj/\n" +
		"└── main.py\n" +
		"</directory_tree>\n" +
		"\n" +
		"<files>\n" +
		"\n" +
		"<file>\n" +
		"<path>main.py</path>\n" +
		"<content>\n" +
		"print(1)\n" +
		"</content>\n" +
		"</file>\n" +
		"\n" +
		"</files>\n" +
		"</context>"
	if promptDocument != expectedDocument {
		testingHandle.Fatalf("unexpected document:\ngot:\n%q\nwant:\n%q", promptDocument, expectedDocument)
	}
}

// TestBuildPromptRoundTripContent verifies that non-empty file content is
// embedded without escaping or mutation.
func TestBuildPromptRoundTripContent(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, textDocumentName), textDocumentBody)

	promptDocument := buildTestPrompt(testingHandle, types.PromptOptions{RootDirectory: rootDirectory})

	expectedBlock := "<content>\n" + textDocumentBody + "\n</content>\n"
	if !strings.Contains(promptDocument, expectedBlock) {
		testingHandle.Fatalf("content block not embedded verbatim:\n%q", promptDocument)
	}
}

// TestBuildPromptIdempotence verifies that assembling an unchanged tree twice
// produces byte-identical output.
func TestBuildPromptIdempotence(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, pythonFileName), pythonFileContent)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, textDocumentName), textDocumentBody)

	options := types.PromptOptions{RootDirectory: rootDirectory}
	firstDocument := buildTestPrompt(testingHandle, options)
	secondDocument := buildTestPrompt(testingHandle, options)
	if firstDocument != secondDocument {
		testingHandle.Fatalf("assembly is not idempotent")
	}
}

// TestBuildPromptEmptyFileSentinel verifies the sentinel substitution for
// blank and whitespace-only files.
func TestBuildPromptEmptyFileSentinel(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, emptyFileName), " \n\t\n")

	promptDocument := buildTestPrompt(testingHandle, types.PromptOptions{RootDirectory: rootDirectory})

	expectedBlock := "<content>\n" + types.EmptyFileSentinel + "\n</content>\n"
	if !strings.Contains(promptDocument, expectedBlock) {
		testingHandle.Fatalf("empty file sentinel missing:\n%q", promptDocument)
	}
}

// TestBuildPromptExtensionFilters verifies suffix filtering and the notebook
// pass-through when no filter set is supplied.
func TestBuildPromptExtensionFilters(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, pythonFileName), pythonFileContent)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, textDocumentName), textDocumentBody)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, smallNotebookName), smallNotebookBody)

	filteredDocument := buildTestPrompt(testingHandle, types.PromptOptions{
		RootDirectory:    rootDirectory,
		ExtensionFilters: []string{".py"},
	})
	if !strings.Contains(filteredDocument, "<path>"+pythonFileName+"</path>") {
		testingHandle.Fatalf("filtered document missing python file:\n%q", filteredDocument)
	}
	if strings.Contains(filteredDocument, "<path>"+textDocumentName+"</path>") ||
		strings.Contains(filteredDocument, "<path>"+smallNotebookName+"</path>") {
		testingHandle.Fatalf("filtered document contains excluded files:\n%q", filteredDocument)
	}

	unfilteredDocument := buildTestPrompt(testingHandle, types.PromptOptions{RootDirectory: rootDirectory})
	for _, includedFileName := range []string{pythonFileName, textDocumentName, smallNotebookName} {
		if !strings.Contains(unfilteredDocument, "<path>"+includedFileName+"</path>") {
			testingHandle.Fatalf("unfiltered document missing %s:\n%q", includedFileName, unfilteredDocument)
		}
	}
	if !strings.Contains(unfilteredDocument, "---------- Cell 1 (code) ----------\nx = 1\n\n") {
		testingHandle.Fatalf("notebook not embedded through cell extraction:\n%q", unfilteredDocument)
	}
}

// TestBuildPromptIgnoreBeatsFilter verifies that a file matching both an
// extension filter and a file-ignore pattern is excluded.
func TestBuildPromptIgnoreBeatsFilter(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, pythonFileName), pythonFileContent)

	promptDocument := buildTestPrompt(testingHandle, types.PromptOptions{
		RootDirectory:    rootDirectory,
		ExtensionFilters: []string{".py"},
		Ignore:           types.IgnoreConfiguration{FilePatterns: []string{"*.py"}},
	})

	if strings.Contains(promptDocument, "<file>") {
		testingHandle.Fatalf("ignored file leaked into document:\n%q", promptDocument)
	}
}

// TestBuildPromptOmitsUndecodableFile verifies that a file whose bytes are
// not valid text is omitted while the document stays well formed.
func TestBuildPromptOmitsUndecodableFile(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	binaryFilePath := filepath.Join(rootDirectory, binaryDataFileName)
	if writeError := os.WriteFile(binaryFilePath, []byte{0x00, 0xff, 0xfe}, 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write binary file: %v", writeError)
	}
	writeTestFile(testingHandle, filepath.Join(rootDirectory, pythonFileName), pythonFileContent)

	promptDocument := buildTestPrompt(testingHandle, types.PromptOptions{RootDirectory: rootDirectory})

	if strings.Contains(promptDocument, "<path>"+binaryDataFileName+"</path>") {
		testingHandle.Fatalf("undecodable file should be omitted:\n%q", promptDocument)
	}
	if !strings.Contains(promptDocument, binaryDataFileName+"\n") {
		testingHandle.Fatalf("undecodable file should still appear in the rendering:\n%q", promptDocument)
	}
	if !strings.HasSuffix(promptDocument, "</files>\n</context>") {
		testingHandle.Fatalf("document is not well formed:\n%q", promptDocument)
	}
}

// TestBuildPromptOmitsBrokenNotebook verifies that a notebook parse failure
// is non-fatal and omits only the notebook's section.
func TestBuildPromptOmitsBrokenNotebook(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, smallNotebookName), "{broken")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, pythonFileName), pythonFileContent)

	promptDocument := buildTestPrompt(testingHandle, types.PromptOptions{RootDirectory: rootDirectory})

	if strings.Contains(promptDocument, "<path>"+smallNotebookName+"</path>") {
		testingHandle.Fatalf("broken notebook should be omitted:\n%q", promptDocument)
	}
	if !strings.Contains(promptDocument, "<path>"+pythonFileName+"</path>") {
		testingHandle.Fatalf("remaining files should still be embedded:\n%q", promptDocument)
	}
}
