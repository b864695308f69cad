package cli

import (
	"context"
	"fmt"

	"resumescore/internal/common"
	"resumescore/internal/types"

	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [section-file]",
	Short: "Rewrite a resume section with AI",
	Long: `Rewrite one resume section, such as a summary or an experience entry, with
stronger wording using the configured AI provider. Without a provider the
section is returned unchanged.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &rewriteConfig)
	},
	RunE: runRewrite,
}

var (
	rewriteConfig      common.CommandConfig
	rewriteSectionType string
)

func init() {
	outputFlags(rewriteCmd, &rewriteConfig)
	rewriteCmd.Flags().StringVarP(&rewriteSectionType, "type", "t", "general", "Section type, e.g. summary, experience, skills")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	createInput := func(files []common.InputFile) (types.RewriteRequest, error) {
		if len(files) != 1 {
			return types.RewriteRequest{}, fmt.Errorf("expected 1 file path, got %d", len(files))
		}
		text, err := a.extractText(cmd.Context(), files[0])
		if err != nil {
			return types.RewriteRequest{}, err
		}
		return types.RewriteRequest{SectionText: text, SectionType: rewriteSectionType}, nil
	}

	logDetails := func(input types.RewriteRequest, cfg common.CommandConfig) {
		a.logger.Info("Starting section rewrite",
			"section_type", input.SectionType,
			"section_chars", len(input.SectionText),
			"output_format", cfg.OutputFormat)
	}

	rewriteOperation := func(ctx context.Context, input types.RewriteRequest) (types.RewriteResult, error) {
		return a.analyzer.Rewrite(ctx, input)
	}

	err = common.RunCommand(
		cmd.Context(),
		a.logger,
		a.fileProcessor(),
		common.NewOutputHandlerTo(cmd.OutOrStdout(), a.logger),
		rewriteConfig,
		args,
		createInput,
		rewriteOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to rewrite section: %w", err)
	}
	a.logger.Info("Section rewrite completed successfully")
	return nil
}
