package main

import (
	"os"

	"github.com/julz808/educoach-prep-portal-sub001/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "educoach",
	Short: "Test-prep attempt session engine",
	Long:  "Serves timed diagnostic, practice and drill sessions with autosave, resume, writing assessment and review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(sessionCmd)
}

func main() {
	logger.Init()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
