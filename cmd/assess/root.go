package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assess",
		Short:         "OCEAN/RIASEC assessment tooling",
		Long:          "assess lists the question bank, scores answer files offline and seeds the user database with synthetic profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newQuestionsCmd())
	root.AddCommand(newScoreCmd())
	root.AddCommand(newSeedCmd())
	return root
}
