package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"plugmerge/internal/health"
	"plugmerge/internal/ui"
)

// runMonitorUI shows the hook-time monitor until the operator quits or
// ctx ends.
func runMonitorUI(ctx context.Context, title string, readings <-chan health.Reading) error {
	model := ui.NewHookTimeModel(title, readings)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stdout))
	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
