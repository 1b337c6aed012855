package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-places/internal/config"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "photo-places",
	Short: "Group photos by place and by event",
	Long: `Photo Places scans a directory of photos, fills in missing locations
from a location history export, and groups the photos into places
(density clusters of nearby shots, named by reverse geocoding) and
events (bursts of photos taken close together in time).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)

	level := logLevel
	if level == "" {
		level = config.Load().LogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
