package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todo/internal/seed"
	"todo/internal/storage/sqlite"
)

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load starter categories and tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := loadFixture(file)
			if err != nil {
				return err
			}

			store, err := sqlite.Open(a.cfg.DBPath, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			seeder := seed.New(sqlite.NewCategoryRepository(store), sqlite.NewTaskRepository(store), a.logger)
			res, err := seeder.Apply(cmd.Context(), fx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "categories created: %d, skipped: %d, tasks created: %d\n",
				res.CategoriesCreated, res.CategoriesSkipped, res.TasksCreated)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML fixture to load instead of the built-in one")
	return cmd
}

func loadFixture(path string) (seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.LoadFile(path)
}
