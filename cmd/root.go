package cmd

import (
	"fmt"
	"os"

	"github.com/Spartificial/project-services/internal/api"
	"github.com/Spartificial/project-services/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfg *config.AppConfig

var rootCmd = &cobra.Command{
	Use:   "attendance-kiosk",
	Short: "Webcam kiosk client for the face-recognition attendance service",
	Long: `Attendance Kiosk turns a webcam into a face-recognition attendance
station: it freezes still frames from the live feed and drives the remote
login, logout, registration, and log-archive operations from them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// newClient builds the attendance service client from the loaded config.
func newClient() (*api.Client, error) {
	return api.New(cfg.APIConfig.BaseURL, cfg.APIConfig.RegisterKeys)
}
