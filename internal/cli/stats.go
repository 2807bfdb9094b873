package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-docx-md/internal/config"
	"github.com/nerdneilsfield/go-docx-md/internal/logger"
	"github.com/nerdneilsfield/go-docx-md/internal/stats"
)

var (
	statsRecent  int
	statsExport  string
	resetHistory bool
)

func newStatsCommand() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "変換履歴を表示する",
		Long: `これまでの変換の集計と直近の実行を表示します。

例:
  docxmd stats                # 概要と直近の変換
  docxmd stats --recent 20    # 直近 20 件
  docxmd stats --directions   # 方向別の集計
  docxmd stats --classes      # 段落分類の累計
  docxmd stats --export h.json
  docxmd stats --reset`,
		RunE: runStats,
	}

	statsCmd.Flags().IntVar(&statsRecent, "recent", 10, "表示する直近の変換数")
	statsCmd.Flags().StringVar(&statsExport, "export", "", "履歴を JSON に書き出す")
	statsCmd.Flags().BoolVar(&resetHistory, "reset", false, "履歴をすべて消去する (確認あり)")
	statsCmd.Flags().Bool("directions", false, "方向別の集計のみ表示する")
	statsCmd.Flags().Bool("classes", false, "段落分類の累計のみ表示する")

	return statsCmd
}

func runStats(cmd *cobra.Command, args []string) error {
	log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if resetHistory {
		return handleHistoryReset(cfg.HistoryFile)
	}

	db, err := stats.NewDatabase(cfg.HistoryFile, log)
	if err != nil {
		return fmt.Errorf("failed to open conversion history: %w", err)
	}

	if statsExport != "" {
		return handleHistoryExport(db, statsExport)
	}

	visualizer := stats.NewVisualizer(db)

	showDirections, _ := cmd.Flags().GetBool("directions")
	showClasses, _ := cmd.Flags().GetBool("classes")

	if showDirections {
		visualizer.ShowDirections()
		return nil
	}
	if showClasses {
		visualizer.ShowClasses()
		return nil
	}

	visualizer.ShowOverview()
	fmt.Println()
	visualizer.ShowRecent(statsRecent)
	return nil
}

func handleHistoryReset(path string) error {
	fmt.Print("変換履歴をすべて消去します。よろしいですか? (y/N): ")

	var confirmation string
	fmt.Scanln(&confirmation)
	if confirmation != "y" && confirmation != "Y" && confirmation != "yes" {
		fmt.Println("消去を取りやめました。")
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	fmt.Println("変換履歴を消去しました。")
	return nil
}

func handleHistoryExport(db *stats.Database, exportPath string) error {
	data, err := json.MarshalIndent(db.GetHistory(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	fmt.Printf("履歴を書き出しました: %s\n", exportPath)
	return nil
}
