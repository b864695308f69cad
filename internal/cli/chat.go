package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"resumescore/internal/common"
	"resumescore/internal/types"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [resume-file]",
	Short: "Ask questions about a resume",
	Long: `Ask the configured AI provider questions about a resume. With --question a
single answer is printed; otherwise an interactive session starts and runs
until "exit" is entered or the input is interrupted.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &chatConfig)
	},
	RunE: runChat,
}

var (
	chatConfig   common.CommandConfig
	chatQuestion string
)

func init() {
	outputFlags(chatCmd, &chatConfig)
	chatCmd.Flags().StringVarP(&chatQuestion, "question", "q", "", "Ask a single question and exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	createInput := func(files []common.InputFile) (types.ChatRequest, error) {
		if len(files) != 1 {
			return types.ChatRequest{}, fmt.Errorf("expected 1 file path, got %d", len(files))
		}
		text, err := a.extractText(cmd.Context(), files[0])
		if err != nil {
			return types.ChatRequest{}, err
		}
		return types.ChatRequest{Question: chatQuestion, ResumeContext: text}, nil
	}

	chatOperation := func(ctx context.Context, input types.ChatRequest) (types.ChatAnswer, error) {
		return a.analyzer.Chat(ctx, input)
	}

	outputHandler := common.NewOutputHandlerTo(cmd.OutOrStdout(), a.logger)

	if strings.TrimSpace(chatQuestion) != "" {
		err = common.RunCommand(
			cmd.Context(),
			a.logger,
			a.fileProcessor(),
			outputHandler,
			chatConfig,
			args,
			createInput,
			chatOperation,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to answer question: %w", err)
		}
		return nil
	}

	files, err := a.fileProcessor().ReadFiles(args...)
	if err != nil {
		return err
	}
	session, err := createInput(files)
	if err != nil {
		return err
	}

	a.logger.Info("Starting interactive chat", "resume_chars", len(session.ResumeContext))
	if !a.cfg.AIEnabled() {
		fmt.Fprintln(cmd.ErrOrStderr(), "No AI provider is configured; answers will be unavailable.")
	}

	prompt := promptui.Prompt{
		Label: "Question",
	}
	// Answers go to the terminal; an output file would be overwritten each turn
	turnConfig := common.CommandConfig{OutputFormat: chatConfig.OutputFormat}

	for {
		question, err := prompt.Run()
		if stderrors.Is(err, promptui.ErrInterrupt) || stderrors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read question: %w", err)
		}

		question = strings.TrimSpace(question)
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		session.Question = question
		answer, err := chatOperation(cmd.Context(), session)
		if err != nil {
			a.logger.LogError(err, "Failed to answer question")
			continue
		}
		if err := outputHandler.HandleOutput(answer, turnConfig); err != nil {
			return err
		}
	}
}
