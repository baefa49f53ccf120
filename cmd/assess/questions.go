package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"student-compass/internal/assessment"
)

func newQuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List the question bank in authoring order",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			kind = strings.ToUpper(strings.TrimSpace(kind))
			if kind != "" && kind != string(assessment.KindOCEAN) && kind != string(assessment.KindRIASEC) {
				return fmt.Errorf("unknown kind %q (want OCEAN or RIASEC)", kind)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-5s  %-7s  %-17s  %-3s  %s\n", "ID", "Kind", "Trait", "Rev", "Text")
			fmt.Fprintln(out, strings.Repeat("─", 92))
			for _, q := range assessment.DefaultBank().AllQuestions() {
				if kind != "" && string(q.Kind) != kind {
					continue
				}
				rev := ""
				if q.Reverse {
					rev = "yes"
				}
				fmt.Fprintf(out, "%-5s  %-7s  %-17s  %-3s  %s\n", q.ID, q.Kind, traitLabel(q), rev, q.Text)
			}
			return nil
		},
	}
	cmd.Flags().String("kind", "", "Only list OCEAN or RIASEC questions")
	return cmd
}

func traitLabel(q assessment.Question) string {
	if q.Kind == assessment.KindRIASEC {
		return assessment.RiasecLabel(q.Trait)
	}
	return assessment.OceanLabel(q.Trait)
}
