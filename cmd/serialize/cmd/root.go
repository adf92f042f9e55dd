/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/LeDuy-Vu/serialize-this/pkg/api"
	"github.com/LeDuy-Vu/serialize-this/pkg/codec"
	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/LeDuy-Vu/serialize-this/pkg/di"
	"github.com/LeDuy-Vu/serialize-this/pkg/logging"
	"github.com/LeDuy-Vu/serialize-this/pkg/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// app is the state shared by all commands of one invocation
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	log        *zap.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "serialize",
		Short: "Bit-field packet serializer",
		Long: `serialize packs named bit fields into byte-aligned packets and unpacks
them again, using formats declared in a YAML catalogue.

Packets can be archived locally (pebble or bolt) and the whole catalogue can
be served over a REST API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file (default: ~/.config/serialize/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCmd(a),
		newFormatsCmd(a),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newArchiveCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) resolveConfigPath() {
	if a.configPath == "" {
		a.configPath = config.GetDefaultConfigPath()
	}
}

// load reads the config file, falling back to defaults when there is none,
// and builds the logger.
func (a *app) load() error {
	a.resolveConfigPath()

	if config.ConfigExists(a.configPath) {
		cfg, err := config.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	} else {
		a.cfg = config.DefaultConfig()
	}

	return a.initLogger()
}

func (a *app) initLogger() error {
	logCfg := config.DefaultConfig().Logging
	if a.cfg != nil {
		logCfg = a.cfg.Logging
	}
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}

	log, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	a.log = log
	codec.SetLogger(log)
	return nil
}

func (a *app) storageFactory() storage.Factory {
	if container != nil {
		return container.GetStorageFactory()
	}
	return storage.NewFactory()
}

func (a *app) serverStarter() api.ServerStarter {
	if container != nil {
		return container.GetServerFactory().CreateServerStarter()
	}
	return api.NewServerFactory().CreateServerStarter()
}

func (a *app) openArchive() (storage.Storage, error) {
	archive, err := a.storageFactory().Open(a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return archive, nil
}

// newSerializer builds a serializer for a catalogue format
func (a *app) newSerializer(name string, opts ...codec.Option) (*codec.Serializer, error) {
	format, err := a.cfg.Format(name)
	if err != nil {
		return nil, err
	}
	return codec.New(format, append([]codec.Option{codec.WithLogger(a.log)}, opts...)...)
}
