package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"advanced-prompt/internal/config"
	configapp "advanced-prompt/internal/features/config/application"
	"advanced-prompt/internal/features/cook/domain"
)

// NewSweepCmd creates the sweep command.
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "List every point a cook sweep would visit",
		Long: `Runs the cook odometer over the configured bounds without generating
anything and prints each point of one full cycle.`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
	cmd.Flags().Int("loras", 0, "Number of active LoRA slots")
	cmd.Flags().Bool("prompt-strength", false, "Whether prompt strength is shown on the form")
	cmd.Flags().Int("limit", 0, "Stop after this many points (0 for the whole cycle)")
	cmd.Flags().String("config", envOr("APP_CONFIG_PATH", "config/app_config.json"), "Path of the JSON app config")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	loras, _ := cmd.Flags().GetInt("loras")
	promptStrength, _ := cmd.Flags().GetBool("prompt-strength")
	limit, _ := cmd.Flags().GetInt("limit")
	configPath, _ := cmd.Flags().GetString("config")

	appConfig, err := configapp.NewConfigService(config.NewAppConfigService(configPath, logger)).Current()
	if err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}
	odometer, err := domain.NewOdometer(appConfig.Cook)
	if err != nil {
		return err
	}
	points := odometer.Plan(domain.Live{ActiveLoras: loras, PromptStrengthVisible: promptStrength}, limit)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(points)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tSAMPLER\tSTEPS\tGUIDANCE\tSTRENGTH\tLORAS")
	for i, p := range points {
		weights := make([]string, len(p.Loras))
		for j, l := range p.Loras {
			weights[j] = fmt.Sprintf("%.1f", l)
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\t%.1f\t%s\n",
			i+1, p.Sampler, p.InferenceSteps, p.GuidanceScale, p.PromptStrength, strings.Join(weights, " "))
	}
	return w.Flush()
}
