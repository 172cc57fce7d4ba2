package main

import (
	"fmt"

	"github.com/ashureev/assessment-relay/internal/scoring"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func classifyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify answers or a score and print the result",
		Example: `  resultctl classify --answers sim,nao,sim
  resultctl classify --score 30 --profile configs/profiles/extended.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			classifier, err := loadClassifier(v)
			if err != nil {
				return err
			}

			var in scoring.Input
			if cmd.Flags().Changed("answers") {
				in.Answers, _ = cmd.Flags().GetStringSlice("answers")
				if in.Answers == nil {
					in.Answers = []string{}
				}
			}
			if cmd.Flags().Changed("score") {
				score, _ := cmd.Flags().GetInt("score")
				in.Score = &score
			}
			if in.Answers == nil && in.Score == nil {
				return fmt.Errorf("one of --answers or --score is required")
			}

			c, err := classifier.Classify(in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().StringSlice("answers", nil, "Comma-separated answer tokens")
	cmd.Flags().Int("score", 0, "Precomputed score")

	return cmd
}
