// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	espplugin "github.com/cutleast/esp-codec"
	applog "github.com/cutleast/esp-codec/internal/log"
)

//go:embed string_records.json
var defaultStringRecordsFS embed.FS

var (
	extractLocalized  bool
	unfiltered        bool
	outPath           string
	stringsPath       string
	verbose           bool
	stringRecordsPath string
)

// loadStringRecords reads the STRING_RECORDS configuration from path if
// given, otherwise falls back to the default table embedded in the
// binary, so extract/dump recognize the common record/subrecord string
// fields out of the box.
func loadStringRecords() (espplugin.StringRecords, error) {
	if stringRecordsPath != "" {
		f, err := os.Open(stringRecordsPath)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", stringRecordsPath, err)
		}
		defer f.Close()
		return espplugin.LoadStringRecords(f)
	}
	return espplugin.LoadStringRecordsFS(defaultStringRecordsFS, "string_records.json")
}

func newLogger() *applog.Helper {
	min := applog.LevelInfo
	if verbose {
		min = applog.LevelDebug
	}
	return applog.NewHelper(applog.NewFilter(applog.NewStdLogger(os.Stderr), min))
}

func loadPlugin(path string) (*espplugin.Plugin, error) {
	sr, err := loadStringRecords()
	if err != nil {
		return nil, err
	}
	return espplugin.Load(path, sr, newLogger())
}

func newDumpCmd() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "dump <plugin>",
		Short: "Parse a plugin and print a summary of its structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin, err := loadPlugin(args[0])
			if err != nil {
				return err
			}
			if debug {
				fmt.Println(plugin.String())
				return nil
			}
			light, err := espplugin.IsLightFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("header: type=%s formid=%s flags=%#x\n", plugin.Header.TypeTag, plugin.Header.FormID, uint32(plugin.Header.Flags))
			fmt.Printf("light master: %v\n", light)
			fmt.Printf("top-level groups: %d\n", len(plugin.Groups))
			for _, g := range plugin.Groups {
				fmt.Printf("  GRUP label=%q type=%d children=%d\n", g.Label, g.Type, len(g.Children))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "print a full recursive structure dump instead of a summary")
	return cmd
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <plugin>",
		Short: "Extract translatable strings to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin, err := loadPlugin(args[0])
			if err != nil {
				return err
			}

			strs := plugin.ExtractStrings(extractLocalized, unfiltered)

			buf, err := json.MarshalIndent(strs, "", "\t")
			if err != nil {
				return fmt.Errorf("encoding strings: %w", err)
			}

			if outPath == "" {
				fmt.Println(string(buf))
				return nil
			}
			return os.WriteFile(outPath, buf, 0o644)
		},
	}
	cmd.Flags().BoolVar(&extractLocalized, "localized", false, "also extract localized string-table references")
	cmd.Flags().BoolVar(&unfiltered, "unfiltered", false, "skip the plausible-string filter")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write JSON to this path instead of stdout")
	return cmd
}

func newReplaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace <plugin>",
		Short: "Replace translated strings in a plugin and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stringsPath == "" {
				return fmt.Errorf("espdump: --strings is required")
			}
			if outPath == "" {
				return fmt.Errorf("espdump: --out is required")
			}

			plugin, err := loadPlugin(args[0])
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(stringsPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", stringsPath, err)
			}

			var strs []espplugin.PluginString
			if err := json.Unmarshal(raw, &strs); err != nil {
				return fmt.Errorf("decoding %s: %w", stringsPath, err)
			}

			plugin.ReplaceStrings(strs)
			return os.WriteFile(outPath, plugin.Dump(), 0o644)
		},
	}
	cmd.Flags().StringVar(&stringsPath, "strings", "", "path to a JSON array of translated strings")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output plugin path")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:   "espdump",
		Short: "Inspect and translate Creation Engine plugin files",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&stringRecordsPath, "string-records", "", "path to a string_records.json overriding the built-in defaults")
	root.AddCommand(newDumpCmd(), newExtractCmd(), newReplaceCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
