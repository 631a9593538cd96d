package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"healthbridge/internal/triage"
)

func (a *app) assessCmd() *cobra.Command {
	var (
		flags    []string
		severity string
		duration string
		text     string
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess symptoms and print the structured result",
		Example: `  healthbridge assess --flag fever --flag cough --flag runnyNose --severity moderate
  healthbridge assess --text "loose motion since yesterday"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}

			in := triage.SymptomInput{
				FreeText:       text,
				SeverityLevel:  triage.Severity(severity),
				DurationBucket: triage.Duration(duration),
			}
			if len(flags) > 0 {
				in.SelectedFlags = make(map[triage.Symptom]bool, len(flags))
				for _, f := range flags {
					in.SelectedFlags[triage.Symptom(strings.TrimSpace(f))] = true
				}
			}

			result, err := engine.Assess(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringSliceVarP(&flags, "flag", "f", nil, "selected symptom key (repeatable, see 'healthbridge symptoms')")
	cmd.Flags().StringVarP(&severity, "severity", "s", "", "declared severity: mild, moderate or severe")
	cmd.Flags().StringVarP(&duration, "duration", "d", "", "duration bucket: today, 2-3days, week, 2weeks, month+")
	cmd.Flags().StringVarP(&text, "text", "t", "", "free-text description")
	return cmd
}

func (a *app) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Print the chatbot reply for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			reply, err := engine.Reply(triage.SymptomInput{FreeText: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Message)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Urgency: %s\n", reply.Urgency)
			fmt.Fprintf(out, "Next steps: %s\n", strings.Join(reply.Suggestions, ", "))
			return nil
		},
	}
}

func (a *app) symptomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symptoms",
		Short: "List the symptom keys accepted by --flag",
		Run: func(cmd *cobra.Command, args []string) {
			for _, info := range triage.Vocabulary() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", info.Key, info.Label)
			}
		},
	}
}
