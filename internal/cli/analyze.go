package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"resumescore/internal/common"
	"resumescore/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume for ATS compatibility",
	Long: `Analyze a resume file (PDF, HTML, Markdown or plain text) and score it for
ATS compatibility. The analysis includes:
- Completeness, keyword, formatting and ATS friendliness subscores
- An overall weighted score
- Detected skills with in-demand markers
- Prioritized recommendations
- A strengths and weaknesses summary (AI generated with --augment)

The analysis is saved to the configured store and can be shown again with
the show command.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &analyzeConfig)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig  common.CommandConfig
	analyzeOptions types.AnalyzeRequest
)

func init() {
	outputFlags(analyzeCmd, &analyzeConfig)
	analyzeCmd.Flags().BoolVar(&analyzeOptions.Augment, "augment", false, "Generate the summary with the configured AI provider")
	analyzeCmd.Flags().StringVar(&analyzeOptions.TargetRole, "role", "", "Target role used to tailor the summary")
	analyzeCmd.Flags().StringVar(&analyzeOptions.Industry, "industry", "", "Industry of the target role")
	analyzeCmd.Flags().StringVar(&analyzeOptions.ResumeID, "resume-id", "", "Identifier grouping analyses of the same resume (default: generated)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	createInput := func(files []common.InputFile) (common.InputFile, error) {
		if len(files) != 1 {
			return common.InputFile{}, fmt.Errorf("expected 1 file path, got %d", len(files))
		}
		return files[0], nil
	}

	logDetails := func(input common.InputFile, cfg common.CommandConfig) {
		a.logger.Info("Starting resume analysis",
			"file", input.Name,
			"bytes", len(input.Data),
			"augment", analyzeOptions.Augment,
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, input common.InputFile) (*types.Analysis, error) {
		req := analyzeOptions
		req.FileName = filepath.Base(input.Name)
		analysis, err := a.analyzer.AnalyzeFile(ctx, input.Data, req)
		if err != nil {
			return nil, err
		}
		if _, err := a.store.Save(ctx, analysis); err != nil {
			return nil, err
		}
		a.logger.Info("Analysis saved",
			"analysis_id", analysis.ID,
			"resume_id", analysis.ResumeID,
			"overall", analysis.Overall,
			"augmented", analysis.Augmented)
		return analysis, nil
	}

	err = common.RunCommand(
		cmd.Context(),
		a.logger,
		a.fileProcessor(),
		common.NewOutputHandlerTo(cmd.OutOrStdout(), a.logger),
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	a.logger.Info("Resume analysis completed successfully")
	return nil
}
