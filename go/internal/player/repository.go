package player

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/player/db"
	"github.com/mcdev12/arena/go/internal/sqlutil"
	"github.com/mcdev12/arena/go/internal/store"
)

// Repository handles all player-related database operations
type Repository struct {
	queries db.Querier
}

var _ store.PlayerRepository = (*Repository)(nil)

// NewRepository creates a new player repository
func NewRepository(queries db.Querier) *Repository {
	return &Repository{
		queries: queries,
	}
}

// CreatePlayer inserts player and refreshes it with the stored row
func (r *Repository) CreatePlayer(ctx context.Context, player *models.Player) error {
	if player.ID == uuid.Nil {
		player.ID = uuid.New()
	}

	games, err := encodeGames(player.Games)
	if err != nil {
		return err
	}

	row, err := r.queries.CreatePlayer(ctx, db.CreatePlayerParams{
		ID:       player.ID,
		Ign:      player.IGN,
		RealName: sqlutil.ToSqlString(player.RealName),
		Slug:     player.Slug,
		UserID:   sqlutil.ToNullUUID(player.UserID),
		Country:  sqlutil.ToSqlString(player.Country),
		Games:    games,
	})
	if err != nil {
		return fmt.Errorf("failed to create player: %w", sqlutil.Classify(err))
	}

	return dbPlayerInto(row, player)
}

// GetPlayer retrieves a player by ID
func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row, err := r.queries.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("player", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", sqlutil.Classify(err))
	}
	return toModel(row)
}

// FindPlayerByUserID returns the player linked to userID, or nil
func (r *Repository) FindPlayerByUserID(ctx context.Context, userID uuid.UUID) (*models.Player, error) {
	row, err := r.queries.GetPlayerByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find player by user: %w", sqlutil.Classify(err))
	}
	return toModel(row)
}

// FindPlayerByIGN returns the oldest player whose IGN equals ign ignoring case, or nil
func (r *Repository) FindPlayerByIGN(ctx context.Context, ign string) (*models.Player, error) {
	row, err := r.queries.GetPlayerByIgn(ctx, ign)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find player by ign: %w", sqlutil.Classify(err))
	}
	return toModel(row)
}

// ListPlayers retrieves all players
func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.queries.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", sqlutil.Classify(err))
	}
	return toModels(rows)
}

// ListPlayersByTeam retrieves players holding a game profile for teamID
func (r *Repository) ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error) {
	rows, err := r.queries.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by team: %w", sqlutil.Classify(err))
	}
	return toModels(rows)
}

// SlugExists reports whether a player already uses slug
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	exists, err := r.queries.PlayerSlugExists(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("failed to check player slug: %w", sqlutil.Classify(err))
	}
	return exists, nil
}

// UpdatePlayer writes player if its version is still current
func (r *Repository) UpdatePlayer(ctx context.Context, player *models.Player) error {
	games, err := encodeGames(player.Games)
	if err != nil {
		return err
	}

	row, err := r.queries.UpdatePlayer(ctx, db.UpdatePlayerParams{
		ID:       player.ID,
		Version:  int32(player.Version),
		Ign:      player.IGN,
		RealName: sqlutil.ToSqlString(player.RealName),
		Slug:     player.Slug,
		UserID:   sqlutil.ToNullUUID(player.UserID),
		Country:  sqlutil.ToSqlString(player.Country),
		Games:    games,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update player %s: %w", player.ID, apperrors.ErrStaleWrite)
	}
	if err != nil {
		return fmt.Errorf("failed to update player: %w", sqlutil.Classify(err))
	}

	return dbPlayerInto(row, player)
}

func encodeGames(games []models.GameProfile) (json.RawMessage, error) {
	if games == nil {
		games = []models.GameProfile{}
	}
	data, err := json.Marshal(games)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game profiles: %w", err)
	}
	return data, nil
}

func toModel(row db.Player) (*models.Player, error) {
	var p models.Player
	if err := dbPlayerInto(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func toModels(rows []db.Player) ([]models.Player, error) {
	players := make([]models.Player, len(rows))
	for i, row := range rows {
		if err := dbPlayerInto(row, &players[i]); err != nil {
			return nil, err
		}
	}
	return players, nil
}

// dbPlayerInto converts a database row into the domain model
func dbPlayerInto(row db.Player, p *models.Player) error {
	*p = models.Player{
		ID:        row.ID,
		IGN:       row.Ign,
		RealName:  sqlutil.FromSqlString(row.RealName, ""),
		Slug:      row.Slug,
		UserID:    sqlutil.FromNullUUID(row.UserID),
		Country:   sqlutil.FromSqlString(row.Country, ""),
		Version:   int(row.Version),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Games, &p.Games); err != nil {
		return fmt.Errorf("failed to decode game profiles of player %s: %w", row.ID, err)
	}
	return nil
}
