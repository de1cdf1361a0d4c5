// Package cmd implements the colombiagpt command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "colombiagpt",
	Short: "Asistente conversacional sobre Colombia",
	Long: `colombiagpt responde preguntas sobre Colombia usando información
extraída de Wikipedia en español.

Comandos principales:
  ingest    descarga el artículo y construye el índice de búsqueda
  serve     inicia el servidor HTTP
  ask       hace una pregunta desde la terminal`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}
