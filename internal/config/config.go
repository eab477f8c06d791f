package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CameraConfig holds configuration for the webcam feed
type CameraConfig struct {
	DeviceID      string `json:"device_id"`
	CaptureWidth  int    `json:"capture_width"`
	CaptureHeight int    `json:"capture_height"`
	SettleMs      int    `json:"settle_ms"`
}

// RegisterKeys maps the five registration fields to the query-parameter
// names the attendance service expects. The names have drifted between
// service revisions, so they are configuration rather than constants.
type RegisterKeys struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Class   string `json:"class"`
	Section string `json:"section"`
}

type APIConfig struct {
	BaseURL      string       `json:"base_url"`
	RegisterKeys RegisterKeys `json:"register_keys"`
}

type AppConfig struct {
	PreviewPort  string       `json:"preview_port"`
	APIConfig    APIConfig    `json:"api"`
	CameraConfig CameraConfig `json:"camera"`
}

// Default config
func defaultConfig() *AppConfig {
	return &AppConfig{
		CameraConfig: CameraConfig{
			DeviceID:      "0",
			CaptureWidth:  400,
			CaptureHeight: 300,
			SettleMs:      33,
		},
		APIConfig: APIConfig{
			BaseURL: "http://localhost:8000",
			RegisterKeys: RegisterKeys{
				Name:    "name",
				Email:   "email",
				Phone:   "phone_number",
				Class:   "class_",
				Section: "division",
			},
		},
		PreviewPort: "8080",
	}
}

// getConfigPath ensures the config directory and file follow the Linux XDG convention
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "attendance-kiosk")

	// Ensure the directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the config file from the ~/.config/attendance-kiosk directory and
// returns a config object. Values missing from the file keep their defaults,
// and a handful of environment variables override the file (see applyEnv).
func Load() (*AppConfig, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("error getting config path: %v", err)
	}

	// Check if the config file exists and return the default config if not
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return applyEnv(defaultConfig()), nil
	}

	configFile, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("error opening config file: %v", err)
	}
	defer configFile.Close()

	data, err := io.ReadAll(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	// Load the default config to fill in missing fields
	config := defaultConfig()

	// Unmarshal into the default config
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file: %v", err)
	}

	return applyEnv(config), nil
}

// applyEnv overrides config values from the environment. The .env file (if
// any) has already been loaded by the command layer at this point.
func applyEnv(config *AppConfig) *AppConfig {
	if v := os.Getenv("ATTENDANCE_API_URL"); v != "" {
		config.APIConfig.BaseURL = v
	}
	if v := os.Getenv("ATTENDANCE_CAMERA_DEVICE"); v != "" {
		config.CameraConfig.DeviceID = v
	}
	if v := os.Getenv("ATTENDANCE_PREVIEW_PORT"); v != "" {
		config.PreviewPort = v
	}
	return config
}

// Save writes the config to the ~/.config/attendance-kiosk directory
func Save(config *AppConfig) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("error getting config path: %v", err)
	}

	configBytes, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling config: %v", err)
	}

	if err := os.WriteFile(configPath, configBytes, 0644); err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}

	return nil
}
