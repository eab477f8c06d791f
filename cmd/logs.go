package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var logsOutput string

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Download the attendance log archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		body, length, err := client.AttendanceLogs()
		if err != nil {
			return fmt.Errorf("failed to fetch attendance logs: %w", err)
		}
		defer body.Close()

		return saveArchive(body, length, logsOutput, "Downloading logs")
	},
}

// saveArchive streams a download to disk behind a progress bar.
func saveArchive(body io.Reader, length int64, path, description string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	bar := progressbar.NewOptions64(length,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)

	if _, err := io.Copy(io.MultiWriter(file, bar), body); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("Saved %s\n", path)
	return nil
}

func init() {
	logsCmd.Flags().StringVarP(&logsOutput, "output", "o", "logs.zip", "Output file for the archive")
	rootCmd.AddCommand(logsCmd)
}
