package cli

import (
	"context"
	"fmt"

	"resumescore/internal/common"
	"resumescore/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume-file] [job-description-file]",
	Short: "Match a resume against a job description",
	Long: `Compare a resume with a job description using the configured AI provider.
The result contains a match score, the keywords both share, the keywords the
resume is missing and recommendations. Without a provider the match is
reported as unavailable.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &matchConfig)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	outputFlags(matchCmd, &matchConfig)
}

func runMatch(cmd *cobra.Command, args []string) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	createInput := func(files []common.InputFile) (types.JobMatchRequest, error) {
		if len(files) != 2 {
			return types.JobMatchRequest{}, fmt.Errorf("expected 2 file paths, got %d", len(files))
		}
		resume, err := a.extractText(cmd.Context(), files[0])
		if err != nil {
			return types.JobMatchRequest{}, err
		}
		job, err := a.extractText(cmd.Context(), files[1])
		if err != nil {
			return types.JobMatchRequest{}, err
		}
		return types.JobMatchRequest{ResumeText: resume, JobDescription: job}, nil
	}

	logDetails := func(input types.JobMatchRequest, cfg common.CommandConfig) {
		a.logger.Info("Starting job match",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, input types.JobMatchRequest) (types.JobMatch, error) {
		return a.analyzer.MatchJob(ctx, input)
	}

	err = common.RunCommand(
		cmd.Context(),
		a.logger,
		a.fileProcessor(),
		common.NewOutputHandlerTo(cmd.OutOrStdout(), a.logger),
		matchConfig,
		args,
		createInput,
		matchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match resume: %w", err)
	}
	a.logger.Info("Job match completed successfully")
	return nil
}
