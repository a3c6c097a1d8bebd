package main

import (
	"fmt"

	"github.com/iwvelando/corporate-valuation/internal/analysis"
	"github.com/iwvelando/corporate-valuation/internal/config"
	"github.com/spf13/cobra"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Value every active scenario and run its sensitivity grids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd, flags, analysis.Options{Sensitivity: true})
		},
	}
}

func newDCFCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dcf",
		Short: "Value the active DCF and extended scenarios without grids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd, flags, analysis.Options{
				Kinds: []string{config.KindDCF, config.KindExtended},
			})
		},
	}
}

func newLBOCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lbo",
		Short: "Compute returns for the active buyout scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd, flags, analysis.Options{
				Kinds: []string{config.KindLBO},
			})
		},
	}
}

func newGridCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Value the active extended scenarios and their sensitivity grids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd, flags, analysis.Options{
				Kinds:       []string{config.KindExtended},
				Sensitivity: true,
			})
		},
	}
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print the normalized configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.LoadConfiguration(flags.configPath)
			if err != nil {
				return err
			}
			out, err := conf.ExportYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "valuation %s\n", version)
			return err
		},
	}
}
