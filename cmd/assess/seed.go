package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"student-compass/internal/assessment"
	"student-compass/internal/config"
	"student-compass/internal/db"
	"student-compass/internal/domain"
	"student-compass/internal/repository"
	"student-compass/internal/service"
)

var educationLevels = []string{domain.EducationSecondary, domain.EducationPostSecondary}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create synthetic users with scored random answer sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("users")
			password, _ := cmd.Flags().GetString("password")
			seed, _ := cmd.Flags().GetInt64("seed")
			dbPath, _ := cmd.Flags().GetString("db")
			if count <= 0 {
				return fmt.Errorf("--users must be positive")
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			users, profiles, closeFn, err := openSeedRepositories(ctx, dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeFn()

			logger := zap.NewNop()
			userSvc := service.NewUserService(logger, users, profiles, nil)
			assessmentSvc := service.NewAssessmentService(logger, nil, assessment.ValueReject, nil, users, profiles, nil)

			out := cmd.OutOrStdout()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < count; i++ {
				username := fmt.Sprintf("student%03d_%04d", i+1, rng.Intn(10000))
				view, err := userSvc.Register(ctx, service.RegisterInput{
					Username:       username,
					Password:       password,
					EducationLevel: educationLevels[rng.Intn(len(educationLevels))],
				})
				if err != nil {
					return fmt.Errorf("register %s: %w", username, err)
				}
				result, err := assessmentSvc.SubmitAnswers(ctx, view.UserID, randomAnswers(rng))
				if err != nil {
					return fmt.Errorf("score %s: %w", username, err)
				}
				fmt.Fprintf(out, "%-20s  %-14s  %s  %v\n", username, view.EducationLevel, result.RiasecCode, result.OceanScores)
			}
			fmt.Fprintf(out, "seeded %d users (seed %d)\n", count, seed)
			return nil
		},
	}
	cmd.Flags().Int("users", 15, "Number of synthetic users")
	cmd.Flags().String("password", "password123", "Password for every seeded user")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = time based)")
	cmd.Flags().String("db", "", "SQLite file to seed (overrides DB_DRIVER/SQLITE_PATH)")
	return cmd
}

func randomAnswers(rng *rand.Rand) assessment.AnswerSet {
	answers := assessment.AnswerSet{}
	for _, q := range assessment.DefaultBank().AllQuestions() {
		answers[q.ID] = assessment.MinValue + rng.Intn(assessment.MaxValue-assessment.MinValue+1)
	}
	return answers
}

func openSeedRepositories(ctx context.Context, dbPath string) (repository.UserRepository, repository.ProfileRepository, func(), error) {
	if dbPath == "" {
		_ = godotenv.Load()
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.DBDriver == config.DriverPostgres {
			pool, err := db.NewPool(ctx, cfg)
			if err != nil {
				return nil, nil, nil, err
			}
			if err := db.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, nil, err
			}
			return repository.NewPgUserRepository(pool), repository.NewPgProfileRepository(pool), pool.Close, nil
		}
		dbPath = cfg.SQLitePath
	}

	sqlDB, err := db.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() { _ = sqlDB.Close() }
	return repository.NewSqliteUserRepository(sqlDB), repository.NewSqliteProfileRepository(sqlDB), closeFn, nil
}
