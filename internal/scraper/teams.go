package scraper

import (
	"strings"

	"github.com/npblake/sponavi-crawler/internal/config"
)

// TeamRegistry resolves the club names printed on score tables to warehouse
// team ids.
type TeamRegistry struct {
	byName map[string]string
	teams  []config.Team
}

// NewTeamRegistry indexes the clubs of one league.
func NewTeamRegistry(teams []config.Team) *TeamRegistry {
	r := &TeamRegistry{byName: make(map[string]string, len(teams)), teams: teams}
	for _, t := range teams {
		r.byName[strings.TrimSpace(t.TeamName)] = t.TeamID
	}
	return r
}

// IDForName returns the team id for a printed name, or nil when the name is
// not registered.
func (r *TeamRegistry) IDForName(name *string) *string {
	if r == nil || name == nil {
		return nil
	}
	id, ok := r.byName[strings.TrimSpace(*name)]
	if !ok {
		return nil
	}
	return &id
}

// Teams returns the registered clubs in configuration order.
func (r *TeamRegistry) Teams() []config.Team {
	if r == nil {
		return nil
	}
	return r.teams
}
