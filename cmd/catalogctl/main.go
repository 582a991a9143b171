package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"learn-persona/internal/adapter/spreadsheet"
	"learn-persona/internal/catalog"
	"learn-persona/internal/config"
	"learn-persona/internal/database"
	"learn-persona/internal/logger"
	"learn-persona/internal/repository"
	"learn-persona/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var db *sqlx.DB

	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Manage the course catalog and export dashboard data",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return err
			}
			if db, err = database.Connect(cfg); err != nil {
				return err
			}
			return database.RunMigrations(db, cfg.DB.Driver)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
			_ = logger.Sync()
		},
	}

	newSeeder := func() *catalog.Seeder {
		return catalog.NewSeeder(
			repository.NewSQLXCourseRepository(db),
			repository.NewSQLXStrategyRepository(db),
			repository.NewTransactionManagerAdapter(db),
		)
	}

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter courses and learning strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := catalog.LoadSeedFile(seedFile)
			if err != nil {
				return err
			}
			courses, strategies, err := newSeeder().Seed(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "courses: %d created, %d skipped\nstrategies: %d created, %d skipped\n",
				courses.Created, courses.Skipped, strategies.Created, strategies.Skipped)
			return nil
		},
	}
	seedCmd.Flags().StringVar(&seedFile, "file", catalog.DefaultSeedFile, "seed JSON file")

	var importFile string
	importCmd := &cobra.Command{
		Use:   "import-courses",
		Short: "Import courses from an .xlsx or .csv sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := spreadsheet.FormatFromPath(importFile)
			if err != nil {
				return err
			}
			f, err := os.Open(importFile)
			if err != nil {
				return err
			}
			defer f.Close()

			sheet, err := spreadsheet.ReadCourses(f, format)
			if err != nil {
				return err
			}
			for _, rowErr := range sheet.Errors {
				logger.Get().Warn("Skipping invalid row", zap.String("file", importFile), zap.Error(rowErr))
			}
			res, err := newSeeder().ImportCourses(cmd.Context(), sheet.Courses)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "courses: %d created, %d skipped, %d invalid rows\n",
				res.Created, res.Skipped, len(sheet.Errors))
			return nil
		},
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "course sheet (.xlsx or .csv)")
	_ = importCmd.MarkFlagRequired("file")

	var (
		outFile string
		days    int
		limit   int
	)
	exportCmd := &cobra.Command{
		Use:   "export-dashboard",
		Short: "Write the L&D dashboard to an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outFile == "" {
				outFile = fmt.Sprintf("persona-dashboard-%s.xlsx", time.Now().UTC().Format("20060102"))
			}
			dashboard := service.NewDashboardService(
				repository.NewSQLXUserRepository(db),
				repository.NewSQLXProgressRepository(db),
				repository.NewSQLXSnapshotRepository(db),
				nil, 0, nil,
			)

			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			if err := dashboard.ExportWorkbook(cmd.Context(), f, limit, days); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.Get().Info("Dashboard exported", zap.String("path", outFile))
			return nil
		},
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "output path (default persona-dashboard-YYYYMMDD.xlsx)")
	exportCmd.Flags().IntVar(&days, "days", service.DefaultTrendDays, "days of activity trends")
	exportCmd.Flags().IntVar(&limit, "limit", service.DefaultActivityLimit, "recent activity rows")

	root.AddCommand(seedCmd, importCmd, exportCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Printf("catalogctl failed: %v", err)
		os.Exit(1)
	}
}
