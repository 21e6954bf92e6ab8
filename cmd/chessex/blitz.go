package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/chessex/internal/blitzui"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/msgcat"
)

const (
	defaultSkill   = "2"
	defaultMinutes = 3
)

var (
	blitzSkill   string
	blitzColor   string
	blitzMinutes int
)

func newBlitzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blitz",
		Short: "Play a timed game against the statistics opponent",
		Args:  cobra.NoArgs,
		RunE:  runBlitzCmd,
	}
	cmd.Flags().StringVar(&blitzSkill, "skill", defaultSkill, "opponent rating bucket")
	cmd.Flags().StringVar(&blitzColor, "color", defaultColor, "your color (white, black)")
	cmd.Flags().IntVar(&blitzMinutes, "minutes", defaultMinutes, "minutes per side")
	return cmd
}

func runBlitzCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "skill", &blitzSkill, fileCfg.Blitz.Skill)
	applyStringConfig(cmd, "color", &blitzColor, fileCfg.Blitz.Color)
	applyIntConfig(cmd, "minutes", &blitzMinutes, fileCfg.Blitz.Minutes)

	color, err := model.ParseColor(blitzColor)
	if err != nil {
		return fmt.Errorf("--color must be white or black")
	}
	cfg := model.BlitzConfig{
		Skill:       blitzSkill,
		Color:       color,
		TimeControl: time.Duration(blitzMinutes) * time.Minute,
	}
	if err := validateBlitzConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	msgs, err := msgcat.New(messagesDir)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	m := blitzui.NewModel(cfg, blitzui.Options{
		Source:   newClient(logger),
		Messages: msgs,
		Logger:   logger,
		Timeout:  apiTimeout(),
		Levels:   model.RatingLevels,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func validateBlitzConfig(cfg model.BlitzConfig) error {
	if err := validateRating("skill", cfg.Skill); err != nil {
		return err
	}
	if cfg.TimeControl < time.Minute || cfg.TimeControl > 60*time.Minute {
		return fmt.Errorf("--minutes must be between 1 and 60")
	}
	return nil
}
