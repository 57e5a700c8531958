// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/d2ptools/d2p/internal/config"
	"github.com/d2ptools/d2p/internal/output"
	"github.com/d2ptools/d2p/internal/prompt"
	"github.com/d2ptools/d2p/internal/services/clipboard"
	"github.com/d2ptools/d2p/internal/tokenizer"
	"github.com/d2ptools/d2p/internal/types"
	"github.com/d2ptools/d2p/internal/utils"
)

const (
	directoryFlagName  = "dir"
	filtersFlagName    = "filters"
	outputPathFlagName = "outpath"
	outputFileFlagName = "outfile"
	ignoreDirFlagName  = "ignore-dir"
	ignoreFileFlagName = "ignore-file"
	configFlagName     = "config"
	copyFlagName       = "copy"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	versionFlagName    = "version"
	versionTemplate    = "d2p version: %s\n"

	defaultDirectory  = "."
	defaultOutputPath = "."

	rootUse              = "d2p"
	rootShortDescription = "generate a long-context prompt from a directory"
	rootLongDescription  = `d2p walks a directory tree and assembles a single prompt document combining
the rendered directory structure with the contents of the selected files.
Jupyter notebooks are embedded as numbered, type-labeled cells.`
	rootUsageExample = `  # Generate a prompt for the current directory
  d2p

  # Only include Python and notebook files from ./proj
  d2p --dir proj --filters .py --filters .ipynb

  # Exclude extra directories and copy the result to the clipboard
  d2p --ignore-dir vendor --ignore-dir tmp --copy`

	directoryFlagDescription  = "directory to generate the prompt for"
	filtersFlagDescription    = "file extensions to include (suffix match)"
	outputPathFlagDescription = "output path for the prompt file"
	outputFileFlagDescription = "output file name (default: <dir>_prompt)"
	ignoreDirFlagDescription  = "additional directory ignore patterns"
	ignoreFileFlagDescription = "additional file ignore patterns"
	configFlagDescription     = "path to the configuration file"
	copyFlagDescription       = "copy the assembled prompt to the clipboard"
	tokensFlagDescription     = "report the prompt's token count"
	modelFlagDescription      = "tokenizer model to use for token counting"
	versionFlagDescription    = "display application version"

	promptSavedMessageFormat = "Prompt saved to %s\n"
	tokenCountMessageFormat  = "Prompt contains %d tokens (%s)\n"

	// workingDirectoryErrorFormat reports failure to determine the working directory.
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorPathMissingFormat reports a missing root directory.
	errorPathMissingFormat = "directory '%s' does not exist"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNotDirectoryFormat reports a root path that is not a directory.
	errorNotDirectoryFormat = "path '%s' is not a directory"
	// errorClipboardFormat reports a clipboard copy failure.
	errorClipboardFormat = "copying prompt to clipboard: %w"
	// warningTokenCountFormat is used when token counting fails.
	warningTokenCountFormat = "Warning: failed to count tokens: %v\n"
)

// promptFlagValues stores the values bound to the root command's flags.
type promptFlagValues struct {
	directory        string
	extensionFilters []string
	outputPath       string
	outputFile       string
	extraIgnoreDirs  []string
	extraIgnoreFiles []string
	configPath       string
	copyToClipboard  bool
	countTokens      bool
	tokenizerModel   string
}

// Execute runs the d2p application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var flagValues promptFlagValues

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runPrompt(flagValues)
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.directory, directoryFlagName, defaultDirectory, directoryFlagDescription)
	rootCommand.Flags().StringArrayVar(&flagValues.extensionFilters, filtersFlagName, nil, filtersFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.outputPath, outputPathFlagName, defaultOutputPath, outputPathFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.outputFile, outputFileFlagName, "", outputFileFlagDescription)
	rootCommand.Flags().StringArrayVar(&flagValues.extraIgnoreDirs, ignoreDirFlagName, nil, ignoreDirFlagDescription)
	rootCommand.Flags().StringArrayVar(&flagValues.extraIgnoreFiles, ignoreFileFlagName, nil, ignoreFileFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.configPath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.copyToClipboard, copyFlagName, false, copyFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.countTokens, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.tokenizerModel, modelFlagName, "", modelFlagDescription)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// runPrompt loads the configuration, assembles the prompt document for the
// requested directory, and writes it to its destination.
func runPrompt(flagValues promptFlagValues) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	loadedSettings, settingsError := config.LoadSettings(workingDirectory, flagValues.configPath)
	if settingsError != nil {
		return settingsError
	}
	loadedSettings = loadedSettings.WithOverrides(flagValues.extraIgnoreDirs, flagValues.extraIgnoreFiles)

	rootDirectory, validationError := validateRootDirectory(flagValues.directory)
	if validationError != nil {
		return validationError
	}

	promptDocument, buildError := prompt.BuildPrompt(types.PromptOptions{
		RootDirectory:    rootDirectory,
		ExtensionFilters: flagValues.extensionFilters,
		Ignore:           loadedSettings.ToIgnoreConfiguration(),
	})
	if buildError != nil {
		return buildError
	}

	outputFileName := flagValues.outputFile
	if outputFileName == "" {
		outputFileName = output.DefaultOutputFileName(rootDirectory)
	}
	savedPath, saveError := output.SaveDocument(promptDocument, flagValues.outputPath, outputFileName)
	if saveError != nil {
		return saveError
	}

	if flagValues.copyToClipboard {
		if copyError := clipboard.NewService().Copy(promptDocument); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
	}

	if flagValues.countTokens {
		reportTokenCount(promptDocument, flagValues.tokenizerModel)
	}

	fmt.Printf(promptSavedMessageFormat, savedPath)
	return nil
}

// reportTokenCount prints the document's token count to stdout. Counting
// failures are diagnostics, not invocation failures.
func reportTokenCount(promptDocument string, tokenizerModel string) {
	tokenCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: tokenizerModel})
	if counterError != nil {
		fmt.Fprintf(os.Stderr, warningTokenCountFormat, counterError)
		return
	}
	tokenCount, countError := tokenCounter.CountString(promptDocument)
	if countError != nil {
		fmt.Fprintf(os.Stderr, warningTokenCountFormat, countError)
		return
	}
	fmt.Printf(tokenCountMessageFormat, tokenCount, resolvedModel)
}

// validateRootDirectory converts the input path to absolute form and verifies
// that it exists and is a directory.
func validateRootDirectory(inputPath string) (string, error) {
	absolutePath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)
	fileInformation, fileStatusError := os.Stat(cleanPath)
	if fileStatusError != nil {
		if os.IsNotExist(fileStatusError) {
			return "", fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return "", fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
	}
	if !fileInformation.IsDir() {
		return "", fmt.Errorf(errorNotDirectoryFormat, inputPath)
	}
	return cleanPath, nil
}
