package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lesson_prep_assistant/exporter"
	"lesson_prep_assistant/generator"
)

var (
	genTopic  string
	genOutDir string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one search for a topic and write the Word document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, agent, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()

		sess := generator.NewSession("cli", agent)
		logger.Info("generating", zap.String("topic", genTopic))
		snap, err := sess.Submit(ctx, genTopic)
		if err != nil {
			return err
		}
		if snap.State == generator.StateError {
			return errors.New(snap.Error)
		}

		article, diagram, ok := sess.Result()
		if !ok {
			return exporter.ErrNoArticle
		}
		doc, err := exporter.Export(article, diagram)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(genOutDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(genOutDir, doc.Filename)
		if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
			return err
		}
		logger.Info("document written",
			zap.String("path", path),
			zap.Int("citations", len(article.Citations)),
			zap.Bool("diagram", diagram != nil))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genTopic, "topic", "", "knowledge module, e.g. 平抛运动")
	generateCmd.Flags().StringVar(&genOutDir, "out", ".", "directory for the exported .doc")
	_ = generateCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(generateCmd)
}
