package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azdkit/hhiwi/internal/archive"
	"github.com/azdkit/hhiwi/internal/config"
	"github.com/azdkit/hhiwi/internal/document"
	"github.com/azdkit/hhiwi/internal/harvest"
	"github.com/azdkit/hhiwi/internal/model"
	"github.com/azdkit/hhiwi/internal/pipeline"
)

func newAzdCmd(opts Options) *cobra.Command {
	var (
		year        int
		archivePath string
		nonArchival bool
	)

	azd := &cobra.Command{
		Use:   "azd MONTH",
		Short: "Create the monthly Arbeitszeitdokumentation (SVG + PDF)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := strconv.Atoi(args[0])
			if err != nil || month < 1 || month > 12 {
				return fmt.Errorf("month must be a number between 1 and 12, got %q", args[0])
			}
			return runAzd(opts, month, year, archivePath, nonArchival)
		},
	}

	azd.Flags().IntVar(&year, "year", time.Now().Year(),
		"The year for which to render the monthly documentation")
	azd.Flags().StringVarP(&archivePath, "archive-path", "a", "./azd_archive",
		"Path to the folder containing the archive of past months")
	azd.Flags().BoolVarP(&nonArchival, "non-archival", "n", false,
		"Do not save the created report to the archive")
	return azd
}

func runAzd(opts Options, month, year int, archivePath string, nonArchival bool) error {
	log := opts.Log

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := harvest.NewClient(ctx, cfg.Harvest.APIURL, cfg.Harvest.AccountID, cfg.Harvest.AccountToken)
	entries, err := client.TimeEntries(ctx, cfg.Harvest.ProjectID)
	if err != nil {
		return fmt.Errorf("fetching time entries: %w", err)
	}
	log.Info("retrieved time entries from harvest", zap.Int("count", len(entries)))

	arch, err := archive.Load(archivePath)
	if err != nil {
		return err
	}
	log.Info("discovered archive", zap.Int("entries", len(arch)), zap.String("path", archivePath))

	result, err := pipeline.Run(entries, month, year, pipeline.Options{
		MergeDaily:             cfg.Function.MergeDaily,
		GrantMonthlyLeave:      cfg.Function.MonthlyLeave,
		MonthlyLeaveHours:      cfg.Personal.MonthlyLeave,
		ClipOvertime:           cfg.Function.ClipOvertime,
		ContractedMonthlyHours: cfg.Personal.WorkingHours,
	})
	if err != nil {
		return err
	}
	log.Info("calculated carry over",
		zap.Int64("seconds", result.CarryOverSeconds),
		zap.Float64("hours", float64(result.CarryOverSeconds)/3600))

	var carryOverIn int64
	if prev, ok := arch.FindPrevious(month, year); ok {
		carryOverIn = prev.CarryOver
	}

	report := model.Report{
		Spans:           result.Spans,
		Name:            cfg.Personal.Name,
		PersonnelNumber: cfg.Personal.PersonnelNumber,
		Institute:       cfg.Personal.Institute,
		WorkingHours:    cfg.Personal.WorkingHours,
		HourlyRate:      cfg.Personal.HourlyRate,
		Leave:           result.LeaveHours,
		CarryOverIn:     carryOverIn,
		CarryOver:       result.CarryOverSeconds,
		Month:           month,
		Year:            year,
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	svgPath, pdfPath, err := document.Write(report, workDir)
	if err != nil {
		return err
	}
	log.Info("wrote output documents", zap.String("svg", svgPath), zap.String("pdf", pdfPath))

	if !nonArchival {
		recordPath, err := archive.Store(archivePath, report)
		if err != nil {
			return err
		}
		log.Info("wrote archive record", zap.String("path", recordPath))
	}
	return nil
}
