// Package rostersync reconciles the free-text rosters on teams against
// player profiles and user memberships.
package rostersync

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/events"
	"github.com/mcdev12/arena/go/internal/gamename"
	"github.com/mcdev12/arena/go/internal/joblock"
	"github.com/mcdev12/arena/go/internal/keylock"
	"github.com/mcdev12/arena/go/internal/metrics"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/player"
	"github.com/mcdev12/arena/go/internal/rating"
	"github.com/mcdev12/arena/go/internal/roles"
	"github.com/mcdev12/arena/go/internal/store"
)

const (
	jobKey = "roster-sync"
	// maxAttempts bounds how often a team unit is retried after losing a
	// version check.
	maxAttempts = 3
)

// Games canonicalizes game names and maps them to a genre.
type Games interface {
	Normalize(freeText string) string
	CategoryOf(canonical string) catalog.Genre
}

// GameSource rebuilds the lookup table from the registry's current games.
type GameSource interface {
	Refresh(ctx context.Context) (*gamename.Normalizer, error)
}

// BonusSource provides the effective role bonus table.
type BonusSource interface {
	RoleBonuses(ctx context.Context) (catalog.RoleBonuses, error)
}

// Config controls a sync run.
type Config struct {
	Workers int
	LockTTL time.Duration
}

// App runs the roster sync job.
type App struct {
	store   store.Store
	locks   *keylock.Locker
	jobs    joblock.Locker
	games   GameSource
	bonuses BonusSource
	events  events.Publisher
	clock   clockwork.Clock
	cfg     Config
	group   singleflight.Group
}

// NewApp creates a new roster sync App
func NewApp(st store.Store, locks *keylock.Locker, jobs joblock.Locker, games GameSource, bonuses BonusSource, pub events.Publisher, clock clockwork.Clock, cfg Config) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &App{
		store:   st,
		locks:   locks,
		jobs:    jobs,
		games:   games,
		bonuses: bonuses,
		events:  pub,
		clock:   clock,
		cfg:     cfg,
	}
}

// Trigger runs one sync. Concurrent triggers in this process share a run;
// a run held by another instance fails with apperrors.ErrSyncInProgress.
// When the store becomes unavailable mid-run the partial result is returned
// together with the error. The run itself ignores cancellation of ctx;
// ctx only bounds how long this caller waits for it.
func (a *App) Trigger(ctx context.Context) (*Result, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	runCtx := context.WithoutCancel(ctx)
	ch := a.group.DoChan(jobKey, func() (any, error) {
		return a.run(runCtx)
	})

	select {
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("stopped waiting for roster sync")
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("joined in-flight roster sync")
		}
		result, _ := res.Val.(*Result)
		return result, res.Err
	}
}

func (a *App) run(ctx context.Context) (*Result, error) {
	release, err := a.jobs.TryAcquire(ctx, jobKey, a.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Msg("failed to release roster sync lock")
		}
	}()

	start := a.clock.Now()
	log.Info().Int("workers", a.cfg.Workers).Msg("Starting roster sync")

	result, runErr := a.syncAll(ctx)

	duration := a.clock.Since(start)
	status := "success"
	switch {
	case runErr != nil:
		status = "failed"
	case !result.Success:
		status = "partial"
	}
	s := result.Summary
	metrics.RecordSync(status, duration.Seconds(), s.TeamsProcessed, s.TeamsSkipped, s.PlayersCreated, s.PlayersUpdated, s.UsersLinked)
	events.Emit(ctx, a.events, events.RosterSynced, uuid.Nil, syncedEvent{Summary: s, Success: result.Success, Duration: duration}, a.clock.Now())

	log.Info().
		Str("status", status).
		Int("teams_processed", s.TeamsProcessed).
		Int("teams_skipped", s.TeamsSkipped).
		Int("players_created", s.PlayersCreated).
		Int("players_updated", s.PlayersUpdated).
		Int("users_linked", s.UsersLinked).
		Int("teams_failed", s.TeamsFailed).
		Dur("duration", duration).
		Msg("Roster sync finished")

	return result, runErr
}

func (a *App) syncAll(ctx context.Context) (*Result, error) {
	result := &Result{}
	fail := func(err error) (*Result, error) {
		result.Error = err.Error()
		return result, fmt.Errorf("roster sync aborted: %w", err)
	}

	games, err := a.games.Refresh(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to load game registry: %w", err))
	}
	bonuses, err := a.bonuses.RoleBonuses(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to load role bonuses: %w", err))
	}
	env := pass{games: games, calc: rating.NewCalculator(bonuses)}

	teams, err := a.store.Teams().ListAllTeams(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to list teams: %w", err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		abortErr error
	)

	pool, err := ants.NewPool(a.cfg.Workers)
	if err != nil {
		return fail(fmt.Errorf("create worker pool: %w", err))
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, team := range teams {
		teamID := team.ID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if runCtx.Err() != nil {
				return
			}

			stats, err := a.syncTeamWithRetry(runCtx, teamID, env)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Summary.add(stats)
			case errors.Is(err, apperrors.ErrStoreUnavailable):
				if abortErr == nil {
					abortErr = err
					cancel()
				}
			case runCtx.Err() != nil:
				// cancelled after an abort; not a failure of this team
			default:
				result.Summary.TeamsFailed++
				result.Failures = append(result.Failures, fmt.Sprintf("team %s: %v", teamID, err))
				log.Error().Err(err).Str("team_id", teamID.String()).Msg("failed to sync team")
			}
		}); err != nil {
			workers.Done()
			return fail(fmt.Errorf("submit task to worker pool: %w", err))
		}
	}
	workers.Wait()

	if abortErr != nil {
		return fail(abortErr)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	result.Success = result.Summary.TeamsFailed == 0
	if !result.Success {
		result.Error = fmt.Sprintf("%d teams failed to sync", result.Summary.TeamsFailed)
	}
	return result, nil
}

func (a *App) syncTeamWithRetry(ctx context.Context, teamID uuid.UUID, env pass) (teamStats, error) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var stats teamStats
		stats, err = a.syncTeam(ctx, teamID, env)
		if !errors.Is(err, apperrors.ErrStaleWrite) {
			return stats, err
		}
		log.Warn().
			Str("team_id", teamID.String()).
			Int("attempt", attempt).
			Msg("team changed during sync, retrying")
	}
	return teamStats{}, err
}

// syncTeam reconciles one team. Candidates are first collected outside the
// transaction to learn which keys to lock; inside it they are collected again
// and the unit is retried if they need a key that is not held.
func (a *App) syncTeam(ctx context.Context, teamID uuid.UUID, env pass) (teamStats, error) {
	skipped := teamStats{skipped: true}
	team, err := a.store.Teams().GetTeam(ctx, teamID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return skipped, nil
	}
	if err != nil {
		return teamStats{}, err
	}
	if strings.TrimSpace(team.GameFocus) == "" {
		log.Warn().Str("team_id", teamID.String()).Msg("team has no game focus, skipping")
		return skipped, nil
	}

	planned, err := a.candidates(ctx, a.store, team)
	if err != nil {
		return teamStats{}, err
	}
	keys := lockKeys(team.ID, planned)
	unlock, err := a.locks.Lock(ctx, keys...)
	if err != nil {
		return teamStats{}, err
	}
	defer unlock()

	held := make(map[string]bool, len(keys))
	for _, k := range keys {
		held[k] = true
	}

	var stats teamStats
	gone := false
	err = a.store.WithinTx(ctx, func(tx store.Tx) error {
		stats = teamStats{}
		current, err := tx.Teams().GetTeam(ctx, teamID)
		if errors.Is(err, apperrors.ErrNotFound) {
			gone = true
			return nil
		}
		if err != nil {
			return err
		}
		if current.Version != team.Version {
			return apperrors.ErrStaleWrite
		}

		cands, err := a.candidates(ctx, tx, current)
		if err != nil {
			return err
		}
		for _, k := range lockKeys(current.ID, cands) {
			if !held[k] {
				return apperrors.ErrStaleWrite
			}
		}

		game := env.games.Normalize(current.GameFocus)
		for _, c := range cands {
			created, updated, linked, err := a.syncCandidate(ctx, tx, current.ID, game, c, env)
			if err != nil {
				return fmt.Errorf("candidate %q: %w", c.ign, err)
			}
			if created {
				stats.created++
			}
			if updated {
				stats.updated++
			}
			if linked {
				stats.linked++
			}
		}
		return nil
	})
	if err != nil {
		return teamStats{}, err
	}
	if gone {
		return skipped, nil
	}
	return stats, nil
}

func lockKeys(teamID uuid.UUID, cands []candidate) []string {
	keys := []string{keylock.Key("team", teamID)}
	for _, c := range cands {
		keys = append(keys, "ign:"+strings.ToLower(c.ign))
		if c.userID != nil {
			keys = append(keys, keylock.Key("user", *c.userID))
		}
	}
	return keys
}

// candidates lists the people named on a team. Earlier sources win on a key
// collision: captain, lineup, substitutes, then plain members. The key is the
// user id when known, else the lowercased IGN.
func (a *App) candidates(ctx context.Context, repos store.Tx, team *models.Team) ([]candidate, error) {
	var out []candidate
	seen := make(map[string]bool)
	add := func(c candidate) {
		k := "ign:" + strings.ToLower(c.ign)
		if c.userID != nil {
			k = c.userID.String()
		}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, c)
	}

	if team.CaptainID != nil {
		u, err := a.lookupUser(ctx, repos, team.ID, *team.CaptainID)
		if err != nil {
			return nil, err
		}
		if u != nil {
			id := u.ID
			add(candidate{ign: u.Name(), role: models.TeamRoleCaptain, userID: &id})
		}
	}

	for _, slots := range []struct {
		role  models.TeamRole
		slots []models.RosterSlot
	}{
		{models.TeamRolePlayer, team.Lineup},
		{models.TeamRoleSubstitute, team.Substitutes},
	} {
		for _, s := range slots.slots {
			ign := strings.TrimSpace(s.IGN)
			if ign == "" {
				continue
			}
			c := candidate{ign: ign, role: slots.role}
			if s.UserID != nil {
				u, err := a.lookupUser(ctx, repos, team.ID, *s.UserID)
				if err != nil {
					return nil, err
				}
				if u != nil {
					id := u.ID
					c.userID = &id
				}
			}
			add(c)
		}
	}

	for _, m := range team.Members {
		if seen[m.String()] {
			continue
		}
		u, err := a.lookupUser(ctx, repos, team.ID, m)
		if err != nil {
			return nil, err
		}
		if u != nil {
			id := u.ID
			add(candidate{ign: u.Name(), role: models.TeamRoleMember, userID: &id})
		}
	}
	return out, nil
}

// lookupUser returns nil for a user that no longer exists.
func (a *App) lookupUser(ctx context.Context, repos store.Tx, teamID, userID uuid.UUID) (*models.User, error) {
	u, err := repos.Users().GetUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		log.Warn().
			Str("team_id", teamID.String()).
			Str("user_id", userID.String()).
			Msg("roster references missing user, skipping")
		return nil, nil
	}
	return u, err
}

func (a *App) syncCandidate(ctx context.Context, tx store.Tx, teamID uuid.UUID, game string, c candidate, env pass) (created, updated, linked bool, err error) {
	p, created, updated, err := a.syncPlayer(ctx, tx, teamID, game, c, env)
	if err != nil {
		return false, false, false, err
	}
	if c.userID == nil {
		return created, updated, false, nil
	}
	if p.UserID != nil && *p.UserID != *c.userID {
		log.Warn().
			Str("player_id", p.ID.String()).
			Str("user_id", c.userID.String()).
			Msg("player is linked to another user, not linking")
		return created, updated, false, nil
	}
	linked, err = a.syncUser(ctx, tx, teamID, game, c, p.ID, env.games)
	return created, updated, linked, err
}

// syncPlayer finds the candidate's player by user id, then by IGN, and
// creates one with a baseline profile when neither matches.
func (a *App) syncPlayer(ctx context.Context, tx store.Tx, teamID uuid.UUID, game string, c candidate, env pass) (*models.Player, bool, bool, error) {
	players := tx.Players()

	var p *models.Player
	var err error
	if c.userID != nil {
		if p, err = players.FindPlayerByUserID(ctx, *c.userID); err != nil {
			return nil, false, false, err
		}
	}
	if p == nil {
		if p, err = players.FindPlayerByIGN(ctx, c.ign); err != nil {
			return nil, false, false, err
		}
	}

	if p == nil {
		p = &models.Player{
			ID:     uuid.New(),
			IGN:    c.ign,
			UserID: c.userID,
			Games:  []models.GameProfile{newProfile(game, teamID, c.role, env.games, env.calc)},
		}
		if p.Slug, err = player.UniqueSlug(ctx, players, c.ign, p.ID); err != nil {
			return nil, false, false, err
		}
		if err := players.CreatePlayer(ctx, p); err != nil {
			return nil, false, false, err
		}
		log.Info().
			Str("player_id", p.ID.String()).
			Str("ign", p.IGN).
			Str("game", game).
			Msg("Created player from roster")
		return p, true, false, nil
	}

	before := p.Clone()

	p.Games = normalizeProfiles(p.Games, teamID, env.games)
	if i := findProfile(p.Games, game); i >= 0 {
		team := teamID
		p.Games[i].TeamID = &team
		if p.Games[i].Role == "" {
			p.Games[i].Role = string(c.role)
		}
	} else if len(p.Games) < models.MaxGameProfiles {
		p.Games = append(p.Games, newProfile(game, teamID, c.role, env.games, env.calc))
	} else {
		log.Warn().
			Str("player_id", p.ID.String()).
			Str("game", game).
			Msg("player has no free game profile slot")
	}
	if p.UserID == nil && c.userID != nil {
		id := *c.userID
		p.UserID = &id
	}
	recomputeOverall(p.Games, env.games, env.calc)

	if reflect.DeepEqual(before, *p) {
		return p, false, false, nil
	}
	if err := players.UpdatePlayer(ctx, p); err != nil {
		return nil, false, false, err
	}
	return p, false, true, nil
}

// syncUser links the player and upserts the user's membership for this team.
// Other entries for the same game are dropped: a user holds one membership
// per game.
func (a *App) syncUser(ctx context.Context, tx store.Tx, teamID uuid.UUID, game string, c candidate, playerID uuid.UUID, games Games) (bool, error) {
	u, err := a.lookupUser(ctx, tx, teamID, *c.userID)
	if err != nil || u == nil {
		return false, err
	}
	before := u.Clone()

	linked := false
	if u.PlayerID == nil {
		id := playerID
		u.PlayerID = &id
		roles.Grant(u, models.RolePlayer)
		linked = true
	}

	sameGame := func(m models.TeamMembership) bool {
		return strings.EqualFold(games.Normalize(m.Game), game)
	}

	role := c.role
	if role == models.TeamRoleCaptain {
		for _, m := range u.Teams {
			if m.Role == models.TeamRoleCaptain && m.TeamID != teamID && !sameGame(m) {
				log.Warn().
					Str("team_id", teamID.String()).
					Str("user_id", u.ID.String()).
					Str("captain_of", m.TeamID.String()).
					Msg("user captains another team, syncing as member")
				role = models.TeamRoleMember
				break
			}
		}
	}

	entry := models.TeamMembership{TeamID: teamID, Game: game, Role: role}
	idx := u.MembershipFor(teamID)
	if idx < 0 {
		for i, m := range u.Teams {
			if sameGame(m) {
				idx = i
				break
			}
		}
	}
	if idx >= 0 {
		u.Teams[idx] = entry
	} else {
		u.Teams = append(u.Teams, entry)
	}

	kept := u.Teams[:0]
	for _, m := range u.Teams {
		if m.TeamID != teamID && sameGame(m) {
			continue
		}
		kept = append(kept, m)
	}
	u.Teams = dedupMemberships(kept)
	roles.Reconcile(u)

	if reflect.DeepEqual(before, *u) {
		return linked, nil
	}
	if err := tx.Users().UpdateUser(ctx, u); err != nil {
		return false, err
	}
	return linked, nil
}

// dedupMemberships keeps the first entry per team.
func dedupMemberships(in []models.TeamMembership) []models.TeamMembership {
	seen := make(map[uuid.UUID]bool, len(in))
	out := in[:0]
	for _, m := range in {
		if seen[m.TeamID] {
			continue
		}
		seen[m.TeamID] = true
		out = append(out, m)
	}
	return out
}
