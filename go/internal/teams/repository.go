package teams

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/sqlutil"
	"github.com/mcdev12/arena/go/internal/store"
	"github.com/mcdev12/arena/go/internal/teams/db"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateTeam(ctx context.Context, arg db.CreateTeamParams) (db.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (db.Team, error)
	ListAllTeams(ctx context.Context) ([]db.Team, error)
	UpdateTeam(ctx context.Context, arg db.UpdateTeamParams) (db.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) (int64, error)
}

// Repository implements team data access operations
type Repository struct {
	queries Querier
}

var _ store.TeamRepository = (*Repository)(nil)

// NewRepository creates a new teams repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// CreateTeam inserts team and refreshes it with the stored row
func (r *Repository) CreateTeam(ctx context.Context, team *models.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}

	members, lineup, subs, err := encodeRoster(team)
	if err != nil {
		return err
	}

	row, err := r.queries.CreateTeam(ctx, db.CreateTeamParams{
		ID:          team.ID,
		Name:        team.Name,
		Slug:        team.Slug,
		CaptainID:   sqlutil.ToNullUUID(team.CaptainID),
		Members:     members,
		Lineup:      lineup,
		Substitutes: subs,
		GameFocus:   team.GameFocus,
		Status:      string(team.Status),
		IsBanned:    team.IsBanned,
	})
	if err != nil {
		return fmt.Errorf("failed to create team: %w", sqlutil.Classify(err))
	}

	return r.dbTeamInto(row, team)
}

// GetTeam retrieves a team by ID
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row, err := r.queries.GetTeam(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("team", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", sqlutil.Classify(err))
	}

	var team models.Team
	if err := r.dbTeamInto(row, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListAllTeams retrieves all teams in creation order
func (r *Repository) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.queries.ListAllTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list all teams: %w", sqlutil.Classify(err))
	}

	teams := make([]models.Team, len(rows))
	for i, row := range rows {
		if err := r.dbTeamInto(row, &teams[i]); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// UpdateTeam writes team if its version is still current
func (r *Repository) UpdateTeam(ctx context.Context, team *models.Team) error {
	members, lineup, subs, err := encodeRoster(team)
	if err != nil {
		return err
	}

	row, err := r.queries.UpdateTeam(ctx, db.UpdateTeamParams{
		ID:          team.ID,
		Version:     int32(team.Version),
		Name:        team.Name,
		Slug:        team.Slug,
		CaptainID:   sqlutil.ToNullUUID(team.CaptainID),
		Members:     members,
		Lineup:      lineup,
		Substitutes: subs,
		GameFocus:   team.GameFocus,
		Status:      string(team.Status),
		IsBanned:    team.IsBanned,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update team %s: %w", team.ID, apperrors.ErrStaleWrite)
	}
	if err != nil {
		return fmt.Errorf("failed to update team: %w", sqlutil.Classify(err))
	}

	return r.dbTeamInto(row, team)
}

// DeleteTeam deletes a team by ID
func (r *Repository) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	n, err := r.queries.DeleteTeam(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", sqlutil.Classify(err))
	}
	if n == 0 {
		return apperrors.NotFound("team", id)
	}
	return nil
}

func encodeRoster(team *models.Team) (json.RawMessage, pqtype.NullRawMessage, pqtype.NullRawMessage, error) {
	members := team.Members
	if members == nil {
		members = []uuid.UUID{}
	}
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return nil, pqtype.NullRawMessage{}, pqtype.NullRawMessage{}, fmt.Errorf("failed to encode members: %w", err)
	}
	lineup, err := sqlutil.ToNullRawMessage(team.Lineup)
	if err != nil {
		return nil, pqtype.NullRawMessage{}, pqtype.NullRawMessage{}, fmt.Errorf("failed to encode lineup: %w", err)
	}
	subs, err := sqlutil.ToNullRawMessage(team.Substitutes)
	if err != nil {
		return nil, pqtype.NullRawMessage{}, pqtype.NullRawMessage{}, fmt.Errorf("failed to encode substitutes: %w", err)
	}
	return membersJSON, lineup, subs, nil
}

// dbTeamInto converts a database row into the domain model
func (r *Repository) dbTeamInto(row db.Team, team *models.Team) error {
	*team = models.Team{
		ID:        row.ID,
		Name:      row.Name,
		Slug:      row.Slug,
		CaptainID: sqlutil.FromNullUUID(row.CaptainID),
		GameFocus: row.GameFocus,
		Status:    models.TeamStatus(row.Status),
		IsBanned:  row.IsBanned,
		Version:   int(row.Version),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if err := json.Unmarshal(row.Members, &team.Members); err != nil {
		return fmt.Errorf("failed to decode members of team %s: %w", row.ID, err)
	}
	if err := sqlutil.FromNullRawMessage(row.Lineup, &team.Lineup); err != nil {
		return fmt.Errorf("failed to decode lineup of team %s: %w", row.ID, err)
	}
	if err := sqlutil.FromNullRawMessage(row.Substitutes, &team.Substitutes); err != nil {
		return fmt.Errorf("failed to decode substitutes of team %s: %w", row.ID, err)
	}
	return nil
}
