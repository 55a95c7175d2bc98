package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/inconshreveable/log15.v2"
)

// Config holds every CLI flag, mirroring the shape (if not the size) of the
// teacher's cmd/codegrep Config: a flat struct bound directly to cobra
// flags and layered with viper config-file/env-var values.
type Config struct {
	Pattern string
	Paths   []string

	IgnoreCase bool

	MinSize        string
	MaxSize        string
	ModifiedAfter  string
	ModifiedBefore string

	Hidden           bool
	SearchBinaries   bool
	MaxDepth         int
	RespectGitignore bool

	JSON    bool
	Color   bool
	Stats   bool
	Verbose bool

	ListStrings string // debug: dump ExtractedStrings for one file and exit

	Workers int
}

var config Config

var log = log15.New("module", "haybale")

var rootCmd = &cobra.Command{
	Use:   "haybale PATTERN [PATH...]",
	Short: "A recursive file-search engine with wildcard and regex patterns",
	Long: `haybale searches a directory tree for files by name pattern and/or
content pattern, streaming matches with surrounding context as it goes.

Patterns are either a ';'-separated wildcard alternation ("*.go;*.mod") or,
prefixed with "r:", a regular expression ("r:func\s+Test\w+").

EXAMPLES:
    haybale "hello" src/
    haybale -i "r:(?i)TODO" .
    haybale --name "*.html;*.htm" --max-depth 0 "" .`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("missing required argument: PATTERN")
		}
		config.Pattern = args[0]
		if len(args) > 1 {
			config.Paths = args[1:]
		}
		if len(config.Paths) == 0 {
			config.Paths = []string{"."}
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd, &config)
	},
}

var namePattern string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVar(&namePattern, "name", "", "Also filter by a name pattern (wildcard or r: regex) against the basename")
	rootCmd.Flags().BoolVarP(&config.IgnoreCase, "ignore-case", "i", false, "Case-insensitive content matching (wildcard only; regex uses inline flags)")

	rootCmd.Flags().StringVar(&config.MinSize, "min-size", "", "Minimum file size, e.g. 50KB")
	rootCmd.Flags().StringVar(&config.MaxSize, "max-size", "", "Maximum file size, e.g. 1MB")
	rootCmd.Flags().StringVar(&config.ModifiedAfter, "modified-after", "", "ISO-8601 date or relative Nd/Nw/Nm")
	rootCmd.Flags().StringVar(&config.ModifiedBefore, "modified-before", "", "ISO-8601 date or relative Nd/Nw/Nm")

	rootCmd.Flags().BoolVar(&config.Hidden, "hidden", false, "Include hidden files and directories")
	rootCmd.Flags().BoolVar(&config.SearchBinaries, "binary", false, "Also search binary files (extracted printable strings)")
	rootCmd.Flags().IntVar(&config.MaxDepth, "max-depth", -1, "Limit traversal depth (0 = root's immediate file children only)")
	rootCmd.Flags().BoolVar(&config.RespectGitignore, "respect-gitignore", false, "Skip paths excluded by .gitignore/.haybaleignore")

	rootCmd.Flags().BoolVar(&config.JSON, "json", false, "Emit one JSON object per result instead of the default text format")
	rootCmd.Flags().BoolVar(&config.Color, "color", false, "Highlight matched ranges in text output")
	rootCmd.Flags().BoolVar(&config.Stats, "stats", false, "Print a summary (files scanned, matches, elapsed) after the search")
	rootCmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "Log traversal progress to stderr")

	rootCmd.Flags().StringVar(&config.ListStrings, "list-strings", "", "Debug: print every extracted string from a single file and exit")

	rootCmd.Flags().IntVarP(&config.Workers, "workers", "j", 4, "Maximum concurrent root traversals when multiple paths are given")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	viper.SetConfigName(".haybale")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("HAYBALE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("loaded config file", "path", viper.ConfigFileUsed())
	}
}

// Execute runs the root command and returns the process exit code per §6:
// 0 if any Result was emitted, 1 if no results and no warnings, 2 if the
// root was unreadable or the query failed to parse.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}
	return lastExitCode
}
