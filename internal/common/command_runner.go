package common

import (
	"context"
	"fmt"

	"resumescore/internal/errors"
)

// CreateInputFunc defines how to create the operation input from the files
// named on the command line.
type CreateInputFunc[Input any] func(files []InputFile) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is the work a command performs on its input.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunCommand encapsulates the common logic for file-based CLI commands:
// read the files, build the input, run the operation and write the
// formatted result.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	fileProcessor *FileProcessor,
	outputHandler *OutputHandler,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	files, err := fileProcessor.ReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(files)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if logger != nil {
		logger.Debug("Operation completed", "output_format", cmdConfig.OutputFormat)
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
