package cmd

import (
	"fmt"

	"github.com/Spartificial/project-services/internal/kiosk"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run the interactive attendance kiosk",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := kiosk.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start kiosk: %w", err)
		}

		p := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running kiosk: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kioskCmd)
}
