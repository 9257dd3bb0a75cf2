package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/featwatch/featwatch/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	  __           _               _       _
	 / _| ___  ___| |___      ____ _| |_ ___| |__
	| |_ / _ \/ _ \ __\ \ /\ / / _` + "`" + ` | __/ __| '_ \
	|  _|  __/ (_| | |_ \ V  V / (_| | || (__| | | |
	|_|  \___|\__,_|\__| \_/\_/ \__,_|\__\___|_| |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "featwatch",
	Short: "A browser-feature compatibility aggregator and change notifier.",
	Long: LOGO + `featwatch merges browser-feature compatibility data from several
independently-structured catalogs into one normalized feature index, estimates
real-world support percentages, and notifies subscribed users when a tracked
feature crosses a condition they configured.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.featwatch.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("datadir", "data", "Directory holding source snapshots and the previous index")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".featwatch")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.featwatch.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("store.path", "")
	viper.SetDefault("notify.endpoint", "")
	viper.SetDefault("notify.token", "")
	viper.SetDefault("app.url", "https://featwatch.dev")
	viper.SetDefault("sources.primary", "")
	viper.SetDefault("sources.secondary", "")
	viper.SetDefault("sources.tertiary", "")
	viper.SetDefault("sources.usage", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
