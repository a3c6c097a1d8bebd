package main

import (
	"github.com/iwvelando/corporate-valuation/internal/analysis"
	"github.com/iwvelando/corporate-valuation/internal/config"
	"github.com/iwvelando/corporate-valuation/pkg/constants"
	"github.com/iwvelando/corporate-valuation/pkg/output"
	"github.com/iwvelando/corporate-valuation/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	configPath   string
	outputFormat string
	logLevel     string
	workers      int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "valuation",
		Short:         "Corporate valuation CLI",
		Long:          "Project free cash flows, value companies by DCF, compute buyout returns and explore sensitivity grids.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd, flags, analysis.Options{Sensitivity: true})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	pf.StringVarP(&flags.outputFormat, "output-format", "o", "", "type of output override: pretty, csv, json")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.IntVarP(&flags.workers, "workers", "w", 0, "sensitivity grid workers (0 uses every CPU)")

	root.AddCommand(
		newRunCmd(flags),
		newDCFCmd(flags),
		newLBOCmd(flags),
		newGridCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return root
}

// session is the loaded configuration and logger shared by a command.
type session struct {
	conf         *config.Configuration
	logger       *zap.Logger
	outputFormat string
}

func openSession(flags *rootFlags) (*session, error) {
	conf, err := config.LoadConfiguration(flags.configPath)
	if err != nil {
		return nil, err
	}

	logger, err := initializeLogger(conf.Logging, flags.logLevel)
	if err != nil {
		return nil, err
	}

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if flags.outputFormat != "" {
		outputFormat = flags.outputFormat
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &session{conf: conf, logger: logger, outputFormat: outputFormat}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func runAnalysis(cmd *cobra.Command, flags *rootFlags, opts analysis.Options) error {
	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.conf.Validate(); err != nil {
		s.logger.Error("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}
	for _, warning := range s.conf.ValidateConfiguration() {
		s.logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	if !s.conf.HasActiveScenarios() {
		s.logger.Warn("no active scenarios in configuration",
			zap.String("op", "main"),
			zap.String("config", flags.configPath),
		)
	}

	opts.Workers = flags.workers
	reports, err := analysis.Run(cmd.Context(), s.logger, *s.conf, opts)
	if err != nil {
		s.logger.Error("failed to compute valuation",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}

	return output.Write(cmd.OutOrStdout(), s.outputFormat, reports)
}
