package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fibertrace/internal/app/client"
	"fibertrace/internal/app/client/config"
	"fibertrace/internal/utils/logger"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	app        *client.App
	serverAddr string
	technician string
)

var rootCmd = &cobra.Command{
	Use:   "fibertrace",
	Short: "FiberTrace - offline-first field data for fiber technicians",
	Long: `FiberTrace keeps installation jobs, network nodes, cable routes,
splice closures, splice maps and material stock on the device, fully
usable without connectivity. Changes are pushed to the crew server
whenever a link is available and pulled changes from other devices
are merged in.`,
	PersistentPreRunE: setupApp,
	PersistentPostRun: teardownApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if serverAddr != "" {
		cfg.ServerAddress = serverAddr
	}
	if technician != "" {
		cfg.Technician = technician
	}

	log = logger.New(cfg.Env)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to init application: %w", err)
	}

	cmd.SetContext(client.WithApp(cmd.Context(), app))
	return nil
}

func teardownApp(_ *cobra.Command, _ []string) {
	if app != nil {
		app.Shutdown()
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".fibertrace"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return config.MustLoad(), nil
}

func init() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "crew server address")
	rootCmd.PersistentFlags().StringVar(&technician, "technician", "", "technician name recorded on changes")
}
