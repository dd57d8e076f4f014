package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitelog/internal/importer"
	"sitelog/internal/model"
	"sitelog/internal/schedule"
	"sitelog/pkg/logger"
)

// 离线计算工具：不连数据库，直接读取导出的工程 / 日志 JSON
var args struct {
	verbose     bool
	projectFile string
	logsFile    string
	today       string
	steps       int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sitelogctl",
		Short:         "Offline progress tools for construction site logs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&args.verbose, "verbose", "v", false, "verbose logging")

	progress := &cobra.Command{
		Use:   "progress",
		Short: "Evaluate planned vs actual progress of a project",
		RunE:  runProgress,
	}
	scurve := &cobra.Command{
		Use:   "scurve",
		Short: "Build S-curve chart data for a project",
		RunE:  runSCurve,
	}
	for _, c := range []*cobra.Command{progress, scurve} {
		c.Flags().StringVarP(&args.projectFile, "project", "p", "", "project JSON file (required)")
		c.Flags().StringVarP(&args.logsFile, "logs", "l", "", "daily logs JSON array")
		c.Flags().StringVar(&args.today, "today", "", "evaluate as of this date (YYYY-MM-DD)")
		_ = c.MarkFlagRequired("project")
	}
	scurve.Flags().IntVar(&args.steps, "steps", schedule.DefaultSCurveSteps, "number of intervals")

	importCmd := &cobra.Command{
		Use:   "import-schedule <file.csv>",
		Short: "Parse a schedule CSV and print the normalized checkpoints",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportSchedule,
	}

	root.AddCommand(progress, scurve, importCmd)
	return root
}

func runProgress(cmd *cobra.Command, _ []string) error {
	log := logger.NewCLILogger(args.verbose)
	defer log.Sync()

	sp, entries, now, err := loadInputs(log)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), schedule.Evaluate(sp, entries, now))
}

func runSCurve(cmd *cobra.Command, _ []string) error {
	log := logger.NewCLILogger(args.verbose)
	defer log.Sync()

	if args.steps < 1 || args.steps > 366 {
		return fmt.Errorf("--steps must be between 1 and 366")
	}
	sp, entries, now, err := loadInputs(log)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), schedule.BuildSCurve(sp, entries, now, args.steps))
}

func runImportSchedule(cmd *cobra.Command, argv []string) error {
	log := logger.NewCLILogger(args.verbose)
	defer log.Sync()

	f, err := os.Open(argv[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := importer.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	log.Info("Schedule parsed", zap.Int("points", len(res.Points)), zap.Int("skipped", res.Skipped))
	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"schedule_data": res.Points,
		"skipped":       res.Skipped,
	})
}

func loadInputs(log *zap.Logger) (schedule.Project, []schedule.LogEntry, time.Time, error) {
	var p model.Project
	if err := readJSON(args.projectFile, &p); err != nil {
		return schedule.Project{}, nil, time.Time{}, err
	}
	var logs []model.DailyLog
	if args.logsFile != "" {
		if err := readJSON(args.logsFile, &logs); err != nil {
			return schedule.Project{}, nil, time.Time{}, err
		}
	}
	now, err := evaluationTime(args.today, time.Now())
	if err != nil {
		return schedule.Project{}, nil, time.Time{}, err
	}

	sp, dropped := p.ToSchedule()
	if dropped > 0 {
		log.Warn("Ignored schedule points with bad dates", zap.Int("dropped", dropped))
	}
	return sp, model.ToEntries(newestFirst(logs)), now, nil
}

// newestFirst 导出文件的顺序不可靠，按日期倒序重排，同日保持文件顺序
func newestFirst(logs []model.DailyLog) []model.DailyLog {
	out := append([]model.DailyLog(nil), logs...)
	sort.SliceStable(out, func(i, j int) bool {
		return schedule.ParseDate(out[i].Date).After(schedule.ParseDate(out[j].Date))
	})
	return out
}

// evaluationTime --today 取该日最后一秒，当天的日志和刻度都算已发生
func evaluationTime(today string, now time.Time) (time.Time, error) {
	if today == "" {
		return now, nil
	}
	d := schedule.ParseDate(today)
	if d.IsZero() {
		return time.Time{}, fmt.Errorf("invalid --today %q", today)
	}
	return d.Time().Add(24*time.Hour - time.Second), nil
}

func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
