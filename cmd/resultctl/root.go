package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/assessment-relay/internal/scoring"
	"github.com/ashureev/assessment-relay/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envBindings maps viper keys to the environment names the server reads.
var envBindings = map[string]string{
	"store":        "RESULT_STORE",
	"db-path":      "DB_PATH",
	"redis-url":    "REDIS_URL",
	"ttl":          "RESULT_TTL",
	"profile":      "SCORE_PROFILE_PATH",
	"low-max":      "SCORE_LOW_MAX",
	"moderate-max": "SCORE_MODERATE_MAX",
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "resultctl",
		Short:         "Inspect and maintain assessment results",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("store", store.BackendSQLite, "Result store backend (sqlite, redis)")
	flags.String("db-path", "./data/results.db", "SQLite database path")
	flags.String("redis-url", "", "Redis URL")
	flags.Duration("ttl", store.DefaultTTL, "Result time to live")
	flags.String("profile", "", "Score profile YAML file")
	flags.Int("low-max", 0, "Override the highest low-tier score")
	flags.Int("moderate-max", 0, "Override the highest moderate-tier score")

	for key, env := range envBindings {
		_ = v.BindPFlag(key, flags.Lookup(key))
		_ = v.BindEnv(key, env)
	}

	root.AddCommand(classifyCmd(v))
	root.AddCommand(lookupCmd(v))
	root.AddCommand(sweepCmd(v))

	return root
}

func loadClassifier(v *viper.Viper) (*scoring.Classifier, error) {
	profile := scoring.DefaultProfile()
	if path := v.GetString("profile"); path != "" {
		var err error
		if profile, err = scoring.LoadProfile(path); err != nil {
			return nil, err
		}
	}
	return scoring.NewClassifier(profile.WithThresholds(v.GetInt("low-max"), v.GetInt("moderate-max")))
}

func openStore(ctx context.Context, v *viper.Viper) (store.ResultStore, error) {
	backend := strings.ToLower(v.GetString("store"))
	if backend == "" || backend == store.BackendMemory {
		return nil, fmt.Errorf("store %q is process-local; use sqlite or redis", store.BackendMemory)
	}
	ttl := v.GetDuration("ttl")
	if ttl <= 0 {
		ttl = store.DefaultTTL
	}
	return store.Open(ctx, store.Config{
		Backend:  backend,
		DBPath:   v.GetString("db-path"),
		RedisURL: v.GetString("redis-url"),
		TTL:      ttl,
	})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
