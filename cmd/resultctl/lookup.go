package main

import (
	"fmt"
	"time"

	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type lookupOutput struct {
	Result    *domain.StoredResult `json:"result"`
	ExpiresAt time.Time            `json:"expires_at"`
}

func lookupCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup EMAIL",
		Short: "Print the live result stored for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := openStore(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer results.Close()

			r, err := results.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookup %s: %w", args[0], err)
			}
			if r == nil {
				return fmt.Errorf("no live result for %s", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), lookupOutput{Result: r, ExpiresAt: r.ExpiresAt(results.TTL())})
		},
	}
}
