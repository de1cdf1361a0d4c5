package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finaipro/colombiagpt/internal/extract"
	"github.com/finaipro/colombiagpt/internal/rag"
	"github.com/finaipro/colombiagpt/internal/segment"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Descarga el artículo y construye el índice de búsqueda",
	Long: `Descarga el artículo de Wikipedia configurado, lo divide en
fragmentos por sección y los indexa para búsqueda semántica. Los
fragmentos de una ingesta anterior del mismo artículo se reemplazan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest()
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	extractor, err := extract.New(a.cfg.ArticleURL, a.logger)
	if err != nil {
		return err
	}

	splitter := segment.NewSplitter(a.cfg.ChunkSize, a.cfg.ChunkOverlap)
	ingestor, err := rag.NewIngestor(extractor, splitter, a.store, a.logger)
	if err != nil {
		return err
	}

	count, err := ingestor.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", a.cfg.ArticleURL, err)
	}

	fmt.Printf("Indexed %d chunks from %s\n", count, a.cfg.ArticleURL)
	return nil
}
