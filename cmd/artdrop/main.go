package main

import (
	"os"

	"github.com/blues/artdrop/internal/config"
	"github.com/blues/artdrop/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "artdrop",
	Short: "ArtDrop crowdfunding node and indexer",
	Long: `artdrop runs the ArtdropV2 crowdfunding contracts on an in-process ledger,
serves them over HTTP and indexes their events into PostgreSQL.

A remote EVM chain running the same contracts can be indexed alongside
the local ledger by enabling the chain section of the config.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		cfg = config.Load(cfgFile)
		return logger.Init(cfg.Log)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("ARTDROP_CONFIG"), "config file (default: ./config.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, simulateCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
