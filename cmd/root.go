// Package cmd implements the inspection CLI for the resolution layer.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-apfs-resolve/internal/logger"
)

var (
	cfgFile      string
	devicePath   string
	verbose      bool
	outputFormat string

	log *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "apfs-resolve",
	Short: "Inspect APFS container address-resolution structures",
	Long: `apfs-resolve is a read-only command-line tool for inspecting the
address-resolution structures of an Apple File System container: the
container superblock, the checkpoint physical map, and the object map's
B-tree. It works directly on raw disks or disk images without mounting.

Commands:
  info      Show container superblock fields
  pmap      Dump the entries of a physical-map block
  resolve   Resolve an object identifier to a physical block address`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.apfs-resolve.yaml)")
	rootCmd.PersistentFlags().StringVarP(&devicePath, "device", "d", "", "path to the raw device or disk image")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "human", "log output format (human, json)")

	viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

// initConfig loads the optional config file and the environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".apfs-resolve")
		}
	}

	viper.SetEnvPrefix("APFS_RESOLVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// initLogging builds the shared logger from the resolved configuration.
func initLogging() error {
	l, err := logger.New(logger.Config{
		Debug:  viper.GetBool("verbose"),
		Format: viper.GetString("output"),
	})
	if err != nil {
		return err
	}
	log = l
	return nil
}

// requireDevice returns the configured device path or an error usable as a
// cobra RunE result.
func requireDevice() (string, error) {
	path := viper.GetString("device")
	if path == "" {
		return "", fmt.Errorf("no device specified: use --device or the APFS_RESOLVE_DEVICE environment variable")
	}
	return path, nil
}
