package cli

import (
	clicfg "github.com/ariel-frischer/relnotes/internal/cli/config"
)

func init() {
	clicfg.ConfigCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(clicfg.ConfigCmd)
}
