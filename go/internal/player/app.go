package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/gamename"
	"github.com/mcdev12/arena/go/internal/metrics"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rating"
	"github.com/mcdev12/arena/go/internal/slug"
	"github.com/mcdev12/arena/go/internal/store"
)

const maxStaleRetries = 3

// GameSource yields the lookup table for the registry's current games
type GameSource interface {
	Current(ctx context.Context) (*gamename.Normalizer, error)
}

// BonusSource provides the effective role bonus table
type BonusSource interface {
	RoleBonuses(ctx context.Context) (catalog.RoleBonuses, error)
}

// App handles player profile administration
type App struct {
	store   store.Store
	games   GameSource
	bonuses BonusSource
}

// NewApp creates a new player App
func NewApp(st store.Store, games GameSource, bonuses BonusSource) *App {
	return &App{
		store:   st,
		games:   games,
		bonuses: bonuses,
	}
}

// CreatePlayer creates a player without game profiles
func (a *App) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	ign := strings.TrimSpace(req.IGN)
	if ign == "" {
		return nil, apperrors.Validation("ign is required")
	}

	p := &models.Player{
		ID:       uuid.New(),
		IGN:      ign,
		RealName: strings.TrimSpace(req.RealName),
		Country:  strings.TrimSpace(req.Country),
		UserID:   req.UserID,
	}
	err := a.store.WithinTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Players().FindPlayerByIGN(ctx, ign)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.Validation("player with ign %q already exists", ign)
		}
		if p.Slug, err = UniqueSlug(ctx, tx.Players(), ign, p.ID); err != nil {
			return err
		}
		return tx.Players().CreatePlayer(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	log.Info().Str("player_id", p.ID.String()).Str("ign", p.IGN).Msg("Created player")
	return p, nil
}

// GetPlayer retrieves a player by ID
func (a *App) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	p, err := a.store.Players().GetPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// ListPlayers retrieves all players
func (a *App) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := a.store.Players().ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// UpdateGameProfile sets stats, role or the active flag on the player's
// profile for a game and recomputes its OVR.
func (a *App) UpdateGameProfile(ctx context.Context, playerID uuid.UUID, req UpdateGameProfileRequest) (*models.Player, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	games, err := a.games.Current(ctx)
	if err != nil {
		return nil, err
	}
	game := games.Normalize(req.Game)
	if game == "" {
		return nil, apperrors.Validation("game is required")
	}
	genre := games.CategoryOf(game)
	if err := validateProfileUpdate(req, genre); err != nil {
		return nil, err
	}

	bonuses, err := a.bonuses.RoleBonuses(ctx)
	if err != nil {
		return nil, err
	}
	calc := rating.NewCalculator(bonuses)

	var out *models.Player
	err = a.store.WithinTx(ctx, func(tx store.Tx) error {
		p, err := tx.Players().GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		i := -1
		for j := range p.Games {
			if games.SameGame(p.Games[j].Game, game) {
				i = j
				break
			}
		}
		if i < 0 {
			return fmt.Errorf("%w: player %s has no %s profile", apperrors.ErrNotFound, playerID, game)
		}

		profile := &p.Games[i]
		profile.Game = game
		if req.Stats != nil {
			profile.Stats = *req.Stats
		}
		if req.Role != nil {
			profile.Role = strings.TrimSpace(*req.Role)
		}
		if req.IsActive != nil {
			profile.IsActive = *req.IsActive
		}
		profile.Overall = calc.Overall(*profile, genre)

		if err := tx.Players().UpdatePlayer(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update game profile: %w", err)
	}

	log.Info().
		Str("player_id", playerID.String()).
		Str("game", game).
		Msg("Updated game profile")
	return out, nil
}

// RecalculateAllRatings recomputes the OVR of every profile of every player
// with the current bonus table.
func (a *App) RecalculateAllRatings(ctx context.Context) (*RecalculateResult, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	bonuses, err := a.bonuses.RoleBonuses(ctx)
	if err != nil {
		return nil, err
	}
	calc := rating.NewCalculator(bonuses)
	games, err := a.games.Current(ctx)
	if err != nil {
		return nil, err
	}

	players, err := a.store.Players().ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	result := &RecalculateResult{PlayersScanned: len(players)}
	for _, listed := range players {
		if recompute(&listed, games, calc) == 0 {
			continue
		}
		changed, err := a.recalculatePlayer(ctx, listed.ID, games, calc)
		if err != nil {
			return result, fmt.Errorf("failed to recalculate player %s: %w", listed.ID, err)
		}
		if changed > 0 {
			result.PlayersUpdated++
			metrics.RatingRecalculationsTotal.Add(float64(changed))
		}
	}

	log.Info().
		Int("players_scanned", result.PlayersScanned).
		Int("players_updated", result.PlayersUpdated).
		Msg("Recalculated ratings")
	return result, nil
}

func (a *App) recalculatePlayer(ctx context.Context, id uuid.UUID, games *gamename.Normalizer, calc rating.Calculator) (int, error) {
	var changed int
	var err error
	for attempt := 0; attempt < maxStaleRetries; attempt++ {
		err = a.store.WithinTx(ctx, func(tx store.Tx) error {
			p, err := tx.Players().GetPlayer(ctx, id)
			if err != nil {
				return err
			}
			changed = recompute(p, games, calc)
			if changed == 0 {
				return nil
			}
			return tx.Players().UpdatePlayer(ctx, p)
		})
		if !errors.Is(err, apperrors.ErrStaleWrite) {
			break
		}
	}
	return changed, err
}

// recompute refreshes every profile's OVR and returns how many changed.
func recompute(p *models.Player, games *gamename.Normalizer, calc rating.Calculator) int {
	changed := 0
	for i := range p.Games {
		ovr := calc.Overall(p.Games[i], games.GenreOf(p.Games[i].Game))
		if ovr != p.Games[i].Overall {
			p.Games[i].Overall = ovr
			changed++
		}
	}
	return changed
}

func validateProfileUpdate(req UpdateGameProfileRequest, genre catalog.Genre) error {
	if req.Stats != nil {
		for _, key := range models.StatKeys {
			v := req.Stats.Values()[key]
			if v < 0 || v > 100 {
				return apperrors.Validation("stat %s must be within [0, 100], got %v", key, v)
			}
		}
	}
	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if role == "" {
			return apperrors.Validation("role cannot be empty")
		}
		if !catalog.IsRole(genre, role) && !isTeamRole(role) {
			return apperrors.Validation("role %q is not valid for %s", role, genre)
		}
	}
	return nil
}

func isTeamRole(role string) bool {
	switch models.TeamRole(strings.ToUpper(role)) {
	case models.TeamRoleCaptain, models.TeamRoleMember, models.TeamRolePlayer, models.TeamRoleSubstitute:
		return true
	}
	return false
}

// UniqueSlug derives a player slug from ign. On collision the first eight
// characters of the player id are appended.
func UniqueSlug(ctx context.Context, players store.PlayerRepository, ign string, id uuid.UUID) (string, error) {
	base := slug.Make(ign)
	if base == "" {
		base = "player"
	}
	exists, err := players.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	return base + "-" + id.String()[:8], nil
}
