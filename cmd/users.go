package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usersOutput string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Download the registered-user listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		body, length, err := client.RegisteredUsers()
		if err != nil {
			return fmt.Errorf("failed to fetch registered users: %w", err)
		}
		defer body.Close()

		return saveArchive(body, length, usersOutput, "Downloading users")
	},
}

func init() {
	usersCmd.Flags().StringVarP(&usersOutput, "output", "o", "user_details.csv", "Output file for the listing")
	rootCmd.AddCommand(usersCmd)
}
