package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"student-compass/internal/assessment"
)

// answerFile acepta {answers: {O1: 4, ...}} o el mapping suelto. JSON es YAML valido.
type answerFile struct {
	Answers assessment.AnswerSet `yaml:"answers"`
}

func loadAnswers(path string) (assessment.AnswerSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}

	var wrapped answerFile
	if err := yaml.Unmarshal(raw, &wrapped); err == nil && wrapped.Answers != nil {
		return wrapped.Answers, nil
	}
	var flat assessment.AnswerSet
	if err := yaml.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	if flat == nil {
		flat = assessment.AnswerSet{}
	}
	return flat, nil
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answer file (YAML or JSON) without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			strict, _ := cmd.Flags().GetBool("strict")
			clamp, _ := cmd.Flags().GetBool("clamp")
			format, _ := cmd.Flags().GetString("output")

			answers, err := loadAnswers(path)
			if err != nil {
				return err
			}

			policy := assessment.ValueReject
			if clamp {
				policy = assessment.ValueClamp
			}
			scorer := assessment.NewScorer(nil, assessment.WithStrict(strict), assessment.WithValuePolicy(policy))
			result, err := scorer.Score(answers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(result); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
		},
	}
	cmd.Flags().StringP("file", "f", "", "Answer file, YAML or JSON")
	cmd.Flags().Bool("strict", false, "Fail when any bank question is unanswered")
	cmd.Flags().Bool("clamp", false, "Clamp out-of-range values into [1,5] instead of failing")
	cmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
