package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/events"
	"github.com/mcdev12/arena/go/internal/gamename"
	"github.com/mcdev12/arena/go/internal/keylock"
	"github.com/mcdev12/arena/go/internal/metrics"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/roles"
	"github.com/mcdev12/arena/go/internal/slug"
	"github.com/mcdev12/arena/go/internal/store"
)

// GameSource yields the lookup table for the registry's current games
type GameSource interface {
	Current(ctx context.Context) (*gamename.Normalizer, error)
}

// App handles team mutations and their cascade into user role state.
// Every mutation locks the team key first, then the user keys it touches,
// and runs its check-and-write inside one store transaction.
type App struct {
	store  store.Store
	locks  *keylock.Locker
	games  GameSource
	events events.Publisher
	clock  clockwork.Clock
}

// NewApp creates a new teams App
func NewApp(st store.Store, locks *keylock.Locker, games GameSource, pub events.Publisher, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &App{
		store:  st,
		locks:  locks,
		games:  games,
		events: pub,
		clock:  clock,
	}
}

func teamKey(id uuid.UUID) string { return keylock.Key("team", id) }
func userKey(id uuid.UUID) string { return keylock.Key("user", id) }

func (a *App) gameOf(ctx context.Context, team *models.Team) (string, error) {
	if a.games == nil {
		return strings.TrimSpace(team.GameFocus), nil
	}
	games, err := a.games.Current(ctx)
	if err != nil {
		return "", err
	}
	return games.Normalize(team.GameFocus), nil
}

// CreateTeam creates a team. A captain given here is checked for captaincy
// elsewhere and gains a CAPTAIN entry; listed members gain MEMBER entries.
func (a *App) CreateTeam(ctx context.Context, req CreateTeamRequest) (team *models.Team, err error) {
	defer func() { metrics.RecordTeamMutation("create", err) }()

	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateCreateTeamRequest(req); err != nil {
		return nil, err
	}

	team = &models.Team{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug.Make(req.Slug),
		CaptainID:   req.CaptainID,
		Lineup:      req.Lineup,
		Substitutes: req.Substitutes,
		GameFocus:   strings.TrimSpace(req.GameFocus),
		Status:      models.TeamStatusPending,
		IsBanned:    req.IsBanned,
	}
	if team.Slug == "" {
		team.Slug = slug.Make(team.Name)
	}
	if team.Slug == "" {
		return nil, apperrors.Validation("team slug cannot be derived from name %q", team.Name)
	}
	if req.Status != nil {
		team.Status = *req.Status
	}
	for _, m := range req.Members {
		team.AddMember(m)
	}
	if team.CaptainID != nil {
		team.AddMember(*team.CaptainID)
	}

	keys := []string{teamKey(team.ID)}
	for _, m := range team.Members {
		keys = append(keys, userKey(m))
	}
	unlock, err := a.locks.Lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	game, err := a.gameOf(ctx, team)
	if err != nil {
		return nil, err
	}
	err = a.store.WithinTx(ctx, func(tx store.Tx) error {
		if team.CaptainID != nil {
			if err := assignCaptain(ctx, tx, *team.CaptainID, team.ID, game); err != nil {
				return err
			}
		}
		for _, m := range team.Members {
			if team.IsCaptain(m) {
				continue
			}
			if err := addMembership(ctx, tx, m, team.ID, game); err != nil {
				return err
			}
		}
		return tx.Teams().CreateTeam(ctx, team)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	events.Emit(ctx, a.events, events.TeamCreated, team.ID, teamEvent{TeamID: team.ID, Name: team.Name, Status: team.Status}, a.clock.Now())
	log.Info().
		Str("team_id", team.ID.String()).
		Str("slug", team.Slug).
		Int("members", len(team.Members)).
		Msg("Created team")
	return team, nil
}

// GetTeam retrieves a team by ID
func (a *App) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := a.store.Teams().GetTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListTeams retrieves all teams
func (a *App) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := a.store.Teams().ListAllTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// UpdateTeam applies a partial update. A captain change re-checks captaincy
// of the new captain before anything is written, downgrades the old captain
// to MEMBER and promotes the new one.
func (a *App) UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (team *models.Team, err error) {
	defer func() { metrics.RecordTeamMutation("update", err) }()

	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateUpdateTeamRequest(req); err != nil {
		return nil, err
	}

	unlockTeam, err := a.locks.Lock(ctx, teamKey(id))
	if err != nil {
		return nil, err
	}
	defer unlockTeam()

	current, err := a.store.Teams().GetTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	oldCaptain := current.CaptainID

	var newCaptain *uuid.UUID
	captainChanged := false
	switch {
	case req.ClearCaptain:
		captainChanged = oldCaptain != nil
	case req.CaptainID != nil && !current.IsCaptain(*req.CaptainID):
		newCaptain = req.CaptainID
		captainChanged = true
	}

	var userKeys []string
	if captainChanged {
		if oldCaptain != nil {
			userKeys = append(userKeys, userKey(*oldCaptain))
		}
		if newCaptain != nil {
			userKeys = append(userKeys, userKey(*newCaptain))
		}
	}
	unlockUsers, err := a.locks.Lock(ctx, userKeys...)
	if err != nil {
		return nil, err
	}
	defer unlockUsers()

	var statusChanged bool
	err = a.store.WithinTx(ctx, func(tx store.Tx) error {
		t, err := tx.Teams().GetTeam(ctx, id)
		if err != nil {
			return err
		}
		statusChanged = req.Status != nil && *req.Status != t.Status
		applyUpdate(t, req)

		if captainChanged {
			game, err := a.gameOf(ctx, t)
			if err != nil {
				return err
			}
			// The conflict check runs before any user is touched.
			if newCaptain != nil {
				if err := checkCaptaincy(ctx, tx, *newCaptain, t.ID); err != nil {
					return err
				}
			}
			if oldCaptain != nil {
				if err := downgradeCaptain(ctx, tx, *oldCaptain, t.ID, game); err != nil {
					return err
				}
			}
			t.CaptainID = nil
			if newCaptain != nil {
				if err := assignCaptain(ctx, tx, *newCaptain, t.ID, game); err != nil {
					return err
				}
				captain := *newCaptain
				t.CaptainID = &captain
				t.AddMember(captain)
			}
		}

		if err := tx.Teams().UpdateTeam(ctx, t); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	now := a.clock.Now()
	events.Emit(ctx, a.events, events.TeamUpdated, team.ID, teamEvent{TeamID: team.ID, Name: team.Name, Status: team.Status}, now)
	if captainChanged {
		events.Emit(ctx, a.events, events.TeamCaptainChanged, team.ID, captainChangedEvent{TeamID: team.ID, OldCaptain: oldCaptain, NewCaptain: team.CaptainID}, now)
	}
	if statusChanged {
		events.Emit(ctx, a.events, events.TeamStatusChanged, team.ID, teamEvent{TeamID: team.ID, Name: team.Name, Status: team.Status}, now)
	}
	log.Info().
		Str("team_id", team.ID.String()).
		Bool("captain_changed", captainChanged).
		Msg("Updated team")
	return team, nil
}

// UpdateTeamStatus reassigns the status. Users are not touched.
func (a *App) UpdateTeamStatus(ctx context.Context, id uuid.UUID, status models.TeamStatus) (team *models.Team, err error) {
	defer func() { metrics.RecordTeamMutation("update_status", err) }()

	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}

	unlock, err := a.locks.Lock(ctx, teamKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = a.store.WithinTx(ctx, func(tx store.Tx) error {
		t, err := tx.Teams().GetTeam(ctx, id)
		if err != nil {
			return err
		}
		t.Status = status
		if err := tx.Teams().UpdateTeam(ctx, t); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update team status: %w", err)
	}

	events.Emit(ctx, a.events, events.TeamStatusChanged, team.ID, teamEvent{TeamID: team.ID, Name: team.Name, Status: team.Status}, a.clock.Now())
	log.Info().
		Str("team_id", team.ID.String()).
		Str("status", string(team.Status)).
		Msg("Updated team status")
	return team, nil
}

// DeleteTeam removes the team's entry from every user it names and clears
// player game profiles pointing at it, each in its own transaction. If any of
// those fail the team is kept and a *apperrors.PartialFailure is returned so
// the delete can be retried.
func (a *App) DeleteTeam(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { metrics.RecordTeamMutation("delete", err) }()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	unlockTeam, err := a.locks.Lock(ctx, teamKey(id))
	if err != nil {
		return err
	}
	defer unlockTeam()

	team, err := a.store.Teams().GetTeam(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get team: %w", err)
	}

	users := affectedUsers(team)
	keys := make([]string, 0, len(users))
	for _, u := range users {
		keys = append(keys, userKey(u))
	}
	unlockUsers, err := a.locks.Lock(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlockUsers()

	failed := make(map[uuid.UUID]error)
	for _, userID := range users {
		err := a.store.WithinTx(ctx, func(tx store.Tx) error {
			return removeMembership(ctx, tx, userID, id)
		})
		if err != nil {
			log.Error().Err(err).
				Str("team_id", id.String()).
				Str("user_id", userID.String()).
				Msg("failed to remove team membership")
			failed[userID] = err
		}
	}

	players, err := a.store.Players().ListPlayersByTeam(ctx, id)
	if err != nil {
		failed[id] = err
	}
	for _, p := range players {
		playerID := p.ID
		err := a.store.WithinTx(ctx, func(tx store.Tx) error {
			return clearPlayerTeam(ctx, tx, playerID, id)
		})
		if err != nil {
			log.Error().Err(err).
				Str("team_id", id.String()).
				Str("player_id", playerID.String()).
				Msg("failed to clear player team reference")
			failed[playerID] = err
		}
	}

	if len(failed) > 0 {
		return &apperrors.PartialFailure{Op: "delete team", Failed: failed}
	}

	if err := a.store.WithinTx(ctx, func(tx store.Tx) error {
		return tx.Teams().DeleteTeam(ctx, id)
	}); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	events.Emit(ctx, a.events, events.TeamDeleted, id, teamEvent{TeamID: id, Name: team.Name, Status: team.Status}, a.clock.Now())
	log.Info().
		Str("team_id", id.String()).
		Int("users", len(users)).
		Int("players", len(players)).
		Msg("Deleted team")
	return nil
}

// AddMember adds a user to the team's members with a MEMBER entry.
// An existing entry for the team keeps its role.
func (a *App) AddMember(ctx context.Context, teamID, userID uuid.UUID) (team *models.Team, err error) {
	defer func() { metrics.RecordTeamMutation("add_member", err) }()

	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	unlock, err := a.locks.Lock(ctx, teamKey(teamID), userKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = a.store.WithinTx(ctx, func(tx store.Tx) error {
		t, err := tx.Teams().GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		game, err := a.gameOf(ctx, t)
		if err != nil {
			return err
		}
		if err := addMembership(ctx, tx, userID, t.ID, game); err != nil {
			return err
		}
		t.AddMember(userID)
		if err := tx.Teams().UpdateTeam(ctx, t); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	events.Emit(ctx, a.events, events.TeamMemberAdded, teamID, memberEvent{TeamID: teamID, UserID: userID}, a.clock.Now())
	log.Info().
		Str("team_id", teamID.String()).
		Str("user_id", userID.String()).
		Msg("Added team member")
	return team, nil
}

// RemoveMember drops a user from the team. Removing the captain clears the
// team's captain.
func (a *App) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) (team *models.Team, err error) {
	defer func() { metrics.RecordTeamMutation("remove_member", err) }()

	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	unlock, err := a.locks.Lock(ctx, teamKey(teamID), userKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var wasCaptain bool
	err = a.store.WithinTx(ctx, func(tx store.Tx) error {
		t, err := tx.Teams().GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		wasCaptain = t.IsCaptain(userID)
		if !t.HasMember(userID) && !wasCaptain {
			return apperrors.Validation("user %s is not a member of team %s", userID, teamID)
		}
		t.RemoveMember(userID)
		if wasCaptain {
			t.CaptainID = nil
		}
		if err := removeMembership(ctx, tx, userID, t.ID); err != nil {
			return err
		}
		if err := tx.Teams().UpdateTeam(ctx, t); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	now := a.clock.Now()
	events.Emit(ctx, a.events, events.TeamMemberRemoved, teamID, memberEvent{TeamID: teamID, UserID: userID}, now)
	if wasCaptain {
		old := userID
		events.Emit(ctx, a.events, events.TeamCaptainChanged, teamID, captainChangedEvent{TeamID: teamID, OldCaptain: &old}, now)
	}
	log.Info().
		Str("team_id", teamID.String()).
		Str("user_id", userID.String()).
		Bool("was_captain", wasCaptain).
		Msg("Removed team member")
	return team, nil
}

func validateCreateTeamRequest(req CreateTeamRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.Validation("team name is required")
	}
	if err := validateSlots(req.Lineup, req.Substitutes); err != nil {
		return err
	}
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, *req.Status)
	}
	return nil
}

func validateUpdateTeamRequest(req UpdateTeamRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return apperrors.Validation("team name cannot be empty")
	}
	if req.Slug != nil && slug.Make(*req.Slug) == "" {
		return apperrors.Validation("team slug cannot be empty")
	}
	if req.ClearCaptain && req.CaptainID != nil {
		return apperrors.Validation("captain_id and clear_captain are mutually exclusive")
	}
	var lineup, subs []models.RosterSlot
	if req.Lineup != nil {
		lineup = *req.Lineup
	}
	if req.Substitutes != nil {
		subs = *req.Substitutes
	}
	if err := validateSlots(lineup, subs); err != nil {
		return err
	}
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, *req.Status)
	}
	return nil
}

func validateSlots(lineup, substitutes []models.RosterSlot) error {
	if len(lineup) > models.MaxLineupSlots {
		return apperrors.Validation("lineup has %d slots, at most %d allowed", len(lineup), models.MaxLineupSlots)
	}
	if len(substitutes) > models.MaxSubstituteSlots {
		return apperrors.Validation("substitutes has %d slots, at most %d allowed", len(substitutes), models.MaxSubstituteSlots)
	}
	return nil
}

func applyUpdate(t *models.Team, req UpdateTeamRequest) {
	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		t.Slug = slug.Make(*req.Slug)
	}
	if req.Lineup != nil {
		t.Lineup = *req.Lineup
	}
	if req.Substitutes != nil {
		t.Substitutes = *req.Substitutes
	}
	if req.GameFocus != nil {
		t.GameFocus = strings.TrimSpace(*req.GameFocus)
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.IsBanned != nil {
		t.IsBanned = *req.IsBanned
	}
}

// affectedUsers lists members, the captain and linked slot users once each.
func affectedUsers(t *models.Team) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if id != uuid.Nil && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if t.CaptainID != nil {
		add(*t.CaptainID)
	}
	for _, m := range t.Members {
		add(m)
	}
	for _, slots := range [][]models.RosterSlot{t.Lineup, t.Substitutes} {
		for _, s := range slots {
			if s.UserID != nil {
				add(*s.UserID)
			}
		}
	}
	return out
}

func checkCaptaincy(ctx context.Context, tx store.Tx, userID, teamID uuid.UUID) error {
	u, err := tx.Users().GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if elsewhere, m := roles.CaptainsOtherTeam(u, teamID); elsewhere {
		return apperrors.CaptainConflict(userID, m.TeamID)
	}
	return nil
}

// assignCaptain gives userID a CAPTAIN entry for teamID after re-checking
// that they captain no other team.
func assignCaptain(ctx context.Context, tx store.Tx, userID, teamID uuid.UUID, game string) error {
	u, err := tx.Users().GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if elsewhere, m := roles.CaptainsOtherTeam(u, teamID); elsewhere {
		return apperrors.CaptainConflict(userID, m.TeamID)
	}
	upsertMembership(u, teamID, game, models.TeamRoleCaptain)
	roles.Reconcile(u)
	return tx.Users().UpdateUser(ctx, u)
}

// downgradeCaptain turns the user's entry for teamID into a MEMBER entry.
// A captain whose account no longer exists is skipped.
func downgradeCaptain(ctx context.Context, tx store.Tx, userID, teamID uuid.UUID, game string) error {
	u, err := tx.Users().GetUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		log.Warn().
			Str("team_id", teamID.String()).
			Str("user_id", userID.String()).
			Msg("previous captain not found, skipping downgrade")
		return nil
	}
	if err != nil {
		return err
	}
	upsertMembership(u, teamID, game, models.TeamRoleMember)
	roles.Reconcile(u)
	return tx.Users().UpdateUser(ctx, u)
}

// addMembership gives userID a MEMBER entry for teamID unless one exists.
func addMembership(ctx context.Context, tx store.Tx, userID, teamID uuid.UUID, game string) error {
	u, err := tx.Users().GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.MembershipFor(teamID) < 0 {
		u.Teams = append(u.Teams, models.TeamMembership{TeamID: teamID, Game: game, Role: models.TeamRoleMember})
	}
	roles.Reconcile(u)
	return tx.Users().UpdateUser(ctx, u)
}

// removeMembership drops every entry for teamID. Missing users are skipped.
func removeMembership(ctx context.Context, tx store.Tx, userID, teamID uuid.UUID) error {
	u, err := tx.Users().GetUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	kept := u.Teams[:0]
	for _, m := range u.Teams {
		if m.TeamID != teamID {
			kept = append(kept, m)
		}
	}
	u.Teams = kept
	roles.Reconcile(u)
	return tx.Users().UpdateUser(ctx, u)
}

func clearPlayerTeam(ctx context.Context, tx store.Tx, playerID, teamID uuid.UUID) error {
	p, err := tx.Players().GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	changed := false
	for i := range p.Games {
		if p.Games[i].TeamID != nil && *p.Games[i].TeamID == teamID {
			p.Games[i].TeamID = nil
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return tx.Players().UpdatePlayer(ctx, p)
}

func upsertMembership(u *models.User, teamID uuid.UUID, game string, role models.TeamRole) {
	if i := u.MembershipFor(teamID); i >= 0 {
		u.Teams[i].Role = role
		u.Teams[i].Game = game
		return
	}
	u.Teams = append(u.Teams, models.TeamMembership{TeamID: teamID, Game: game, Role: role})
}
