package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "Scrapes every configured team's player profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolveSettings(cmd.Context())
			if err != nil {
				return err
			}
			return runPlayers(cmd, s)
		},
	}
}

func runPlayers(cmd *cobra.Command, s *runSettings) error {
	report, err := s.app.Trigger().RunPlayers(cmd.Context())
	if err != nil {
		return fmt.Errorf("run players: %w", err)
	}
	s.app.Logger().Info("player run complete",
		zap.String("flow_id", report.FlowID),
		zap.Int("players", report.Players),
		zap.Int("failed_players", report.FailedPlayers),
	)
	return nil
}
