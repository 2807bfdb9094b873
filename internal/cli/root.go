// Package cli wires the docxmd commands together.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-md/internal/config"
	"github.com/nerdneilsfield/go-docx-md/internal/logger"
	"github.com/nerdneilsfield/go-docx-md/internal/stats"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
	"github.com/nerdneilsfield/go-docx-md/pkg/transcode"
)

var (
	cfgFile     string
	profilePath string
	profileName string

	styleOverride    string
	paperOverride    string
	fontSizeOverride float64

	mediaDirFlag string
	debugMode    bool
	verboseMode  bool
)

// NewRootCommand builds the docxmd command tree. The root command is
// the converter itself; direction follows the input extension.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docxmd [flags] input... output",
		Short: "契約書・法令文書の docx と Markdown 方言を相互変換する",
		Long: `docxmd は日本語の契約書や法令文書を、ワープロの docx パッケージと
専用の Markdown 方言のあいだで相互変換するツールです。変換方向は
入力ファイルの拡張子で決まります（.docx → .md、.md → .docx）。

複数の入力ファイルを与えると最後の引数を出力ディレクトリとして
一括変換します。

例:
  docxmd 契約書.docx 契約書.md          # docx → Markdown
  docxmd 契約書.md 契約書.docx          # Markdown → docx
  docxmd --profile 社内.toml --style k 契約書.md out.docx
  docxmd a.md b.md c.docx out/          # 一括変換`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:    cobra.MinimumNArgs(2),
		RunE:    runConvert,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "設定ファイルのパス (既定: ~/.docxmd.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "デバッグログを出力する")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "詳細ログを出力する")

	rootCmd.Flags().StringVar(&profilePath, "profile-file", "", "文書プロファイル (TOML) のパス")
	rootCmd.Flags().StringVar(&profileName, "profile", "", "適用する文書プロファイル名")
	rootCmd.Flags().StringVar(&styleOverride, "style", "", "文書式 (n/k/j) の上書き")
	rootCmd.Flags().StringVar(&paperOverride, "paper", "", "用紙サイズ (A4/A4L/A3...) の上書き")
	rootCmd.Flags().Float64Var(&fontSizeOverride, "font-size", 0, "基本フォントサイズ (pt) の上書き")
	rootCmd.Flags().StringVar(&mediaDirFlag, "media-dir", "", "画像の保存ディレクトリ名")

	rootCmd.AddCommand(newLintCommand())
	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newStatsCommand())

	return rootCmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	overrides, err := buildOverrides(cfg)
	if err != nil {
		return err
	}

	mediaDir := cfg.MediaDir
	if mediaDirFlag != "" {
		mediaDir = mediaDirFlag
	}
	tr := transcode.New(transcode.Options{MediaDir: mediaDir, Overrides: overrides}, log)

	db, err := stats.NewDatabase(cfg.HistoryFile, log)
	if err != nil {
		log.Warn("failed to open conversion history", zap.Error(err))
		db = nil
	}

	inputs, outArg := args[:len(args)-1], args[len(args)-1]
	if len(inputs) == 1 && !isDir(outArg) {
		result, err := tr.Convert(cmd.Context(), inputs[0], outArg)
		recordRun(db, inputs[0], outArg, result, err)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	}

	// Batch mode: the last argument is the output directory.
	if err := os.MkdirAll(outArg, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bar, _ := pterm.DefaultProgressbar.
		WithTotal(len(inputs)).
		WithTitle("変換中").
		Start()

	var failed int
	for _, in := range inputs {
		out := filepath.Join(outArg, swapExt(filepath.Base(in)))
		bar.UpdateTitle(filepath.Base(in))

		result, err := tr.Convert(cmd.Context(), in, out)
		recordRun(db, in, out, result, err)
		if err != nil {
			failed++
			pterm.Error.Printf("%s: %v\n", in, err)
		} else {
			printResult(result)
		}
		bar.Increment()
	}
	if _, err := bar.Stop(); err != nil {
		log.Debug("failed to stop progress bar", zap.Error(err))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(inputs))
	}
	return nil
}

// buildOverrides layers the profile and the flag overrides onto the
// form after the input's own configuration has been read.
func buildOverrides(cfg *config.Config) (func(*document.Form), error) {
	path := cfg.ProfileFile
	if profilePath != "" {
		path = profilePath
	}
	name := cfg.Profile
	if profileName != "" {
		name = profileName
	}
	if name != "" && path == "" {
		return nil, fmt.Errorf("profile %q requested but no profile file is set", name)
	}
	// Fail on a broken profile up front, not per file.
	if name != "" {
		if err := config.ApplyProfile(path, name, document.NewForm()); err != nil {
			return nil, err
		}
	}

	return func(f *document.Form) {
		if name != "" {
			if err := config.ApplyProfile(path, name, f); err != nil {
				f.Warn(fmt.Sprintf("※ 警告: プロファイル「%s」を適用できません", name))
			}
		}
		if styleOverride != "" {
			f.DocumentStyle = styleOverride
		}
		if paperOverride != "" {
			f.PaperSize = paperOverride
		}
		if fontSizeOverride > 0 {
			f.FontSize = fontSizeOverride
		}
	}, nil
}

func recordRun(db *stats.Database, in, out string, result *transcode.Result, runErr error) {
	if db == nil {
		return
	}
	record := &stats.Record{
		InputFile:  in,
		OutputFile: out,
		Direction:  direction(in),
		Status:     "completed",
	}
	if result != nil {
		record.Classes = result.Classes
		record.Warnings = len(result.Warnings)
		record.Duration = result.Duration
		for _, n := range result.Classes {
			record.Paragraphs += n
		}
	}
	if runErr != nil {
		record.Status = "failed"
		record.ErrorMessage = runErr.Error()
	}
	if err := db.AddRecord(record); err != nil {
		color.New(color.FgYellow).Fprintf(os.Stderr, "※ 警告: 変換履歴を保存できません: %v\n", err)
	}
}

// printResult reports one finished conversion, warnings last so they
// stay visible.
func printResult(result *transcode.Result) {
	fmt.Printf("%s → %s (%s)\n", result.Input, result.Output, result.Duration.Round(time.Millisecond))
	printWarnings(result.Warnings)
}

func printWarnings(warnings []string) {
	yellow := color.New(color.FgYellow)
	for _, w := range warnings {
		yellow.Fprintln(os.Stderr, w)
	}
}

func direction(in string) string {
	if strings.EqualFold(filepath.Ext(in), ".docx") {
		return "docx-md"
	}
	return "md-docx"
}

func swapExt(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if strings.EqualFold(ext, ".docx") {
		return base + ".md"
	}
	return base + ".docx"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
