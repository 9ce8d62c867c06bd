package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/fixstep/internal/registry"
	"github.com/vovakirdan/fixstep/internal/storage"
)

var (
	flagStatsLimit int
	flagStatsClear bool
)

var (
	statsTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	statsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFF00")).Padding(0, 1)
	statsCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	statsFailStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FF5555"))
)

var statsCmd = &cobra.Command{
	Use:   "stats [app]",
	Short: "Show recorded run statistics",
	Long: `Display totals and the most recent runs recorded by 'fixstep run' and
'fixstep serve'. Without an app, the latest runs of every app are listed.

Examples:
  fixstep stats
  fixstep stats bounce --limit 20
  fixstep stats bounce --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagStatsLimit, "limit", 10, "Number of recent runs to show")
	statsCmd.Flags().BoolVar(&flagStatsClear, "clear", false, "Delete all recorded runs of the app")
}

func runStats(cmd *cobra.Command, args []string) error {
	var appID string
	if len(args) == 1 {
		appID = args[0]
		if !registry.Exists(appID) {
			return fmt.Errorf("unknown app %q; run 'fixstep list' to see available apps", appID)
		}
	}
	if flagStatsClear && appID == "" {
		return errors.New("--clear needs an app")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.Disabled {
		return errors.New("run statistics are disabled")
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("error opening run database: %w", err)
	}
	defer store.Close()

	if flagStatsClear {
		if err := store.ClearRuns(appID); err != nil {
			return err
		}
		fmt.Printf("Cleared runs of %s.\n", appID)
		return nil
	}

	if appID != "" {
		totals, err := store.Totals(appID)
		if err != nil {
			return err
		}
		fmt.Println(statsTitleStyle.Render("Run statistics - " + appID))
		fmt.Println()
		if totals.Runs == 0 {
			fmt.Println("No runs recorded yet.")
			fmt.Println()
			fmt.Printf("Start one with 'fixstep run %s'.\n", appID)
			return nil
		}
		fmt.Printf("  runs:     %d (%d failed)\n", totals.Runs, totals.Failures)
		fmt.Printf("  updates:  %d\n", totals.Updates)
		fmt.Printf("  renders:  %d\n", totals.Renders)
		fmt.Printf("  playtime: %s\n", totals.Duration.Round(time.Second))
		fmt.Println()
	} else {
		fmt.Println(statsTitleStyle.Render("Recent runs"))
		fmt.Println()
	}

	runs, err := store.RecentRuns(appID, flagStatsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Println(runsTable(runs).Render())
	return nil
}

// runsTable lays out recorded runs, newest first.
func runsTable(runs []storage.RunRecord) *table.Table {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.AppID,
			r.User,
			r.Reason,
			r.Duration.Round(time.Millisecond).String(),
			strconv.FormatInt(r.Updates, 10),
			strconv.FormatInt(r.Renders, 10),
			strconv.FormatInt(r.ClampedTicks, 10),
			r.TargetStep.String(),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "App", "User", "Ended", "Duration", "Updates", "Renders", "Clamped", "Step").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return statsHeaderStyle
			case row >= 0 && row < len(runs) && runs[row].Reason == storage.ReasonFailed:
				return statsFailStyle
			default:
				return statsCellStyle
			}
		})
}
