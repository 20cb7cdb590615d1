package rostersync

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rating"
)

// Summary counts the work a sync run did.
type Summary struct {
	TeamsProcessed int `json:"teams_processed"`
	TeamsSkipped   int `json:"teams_skipped"`
	PlayersCreated int `json:"players_created"`
	PlayersUpdated int `json:"players_updated"`
	UsersLinked    int `json:"users_linked"`
	TeamsFailed    int `json:"teams_failed"`
}

func (s *Summary) add(t teamStats) {
	if t.skipped {
		s.TeamsSkipped++
		return
	}
	s.TeamsProcessed++
	s.PlayersCreated += t.created
	s.PlayersUpdated += t.updated
	s.UsersLinked += t.linked
}

// Result is what a sync run reports. Summary is filled even when the run
// aborted, so callers always see how much work happened.
type Result struct {
	Success  bool     `json:"success"`
	Summary  Summary  `json:"summary"`
	Error    string   `json:"error,omitempty"`
	Failures []string `json:"failures,omitempty"`
}

type syncedEvent struct {
	Summary  Summary       `json:"summary"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration_ns"`
}

// pass is what one run reads once and shares across its teams.
type pass struct {
	games Games
	calc  rating.Calculator
}

// candidate is one person named on a team roster.
type candidate struct {
	ign    string
	role   models.TeamRole
	userID *uuid.UUID
}

type teamStats struct {
	// skipped is set for teams without a game focus and teams deleted
	// during the run.
	skipped bool
	created int
	updated int
	linked  int
}
