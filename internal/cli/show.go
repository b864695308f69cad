package cli

import (
	"fmt"

	"resumescore/internal/common"
	"resumescore/internal/store"
	"resumescore/internal/types"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [analysis-id]",
	Short: "Show a saved analysis",
	Long: `Show a previously saved analysis by its ID, or the latest analysis of a
resume with --resume-id. Analyses outlive the process only with the
postgres store driver.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && showResumeID == "" {
			return fmt.Errorf("an analysis ID or --resume-id is required")
		}
		if len(args) == 1 && showResumeID != "" {
			return fmt.Errorf("an analysis ID and --resume-id cannot be combined")
		}
		return resolveFormat(cmd, &showConfig)
	},
	RunE: runShow,
}

var (
	showConfig   common.CommandConfig
	showResumeID string
)

func init() {
	outputFlags(showCmd, &showConfig)
	showCmd.Flags().StringVar(&showResumeID, "resume-id", "", "Show the latest analysis of this resume")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.store.Driver() == store.DriverMemory {
		a.logger.Warn("The memory store does not persist analyses between runs",
			"hint", "set store.driver to postgres")
	}

	var analysis *types.Analysis
	if showResumeID != "" {
		analysis, err = a.store.LatestForResume(cmd.Context(), showResumeID)
	} else {
		analysis, err = a.store.Get(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load analysis: %w", err)
	}

	return common.NewOutputHandlerTo(cmd.OutOrStdout(), a.logger).HandleOutput(analysis, showConfig)
}
