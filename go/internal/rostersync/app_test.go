package rostersync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/events"
	"github.com/mcdev12/arena/go/internal/gamename"
	"github.com/mcdev12/arena/go/internal/joblock"
	"github.com/mcdev12/arena/go/internal/keylock"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rating"
	"github.com/mcdev12/arena/go/internal/settings"
	"github.com/mcdev12/arena/go/internal/store/memory"
)

type fixture struct {
	app      *App
	store    *memory.Store
	jobs     *joblock.Memory
	events   *events.Recorder
	registry *growingRegistry
}

type growingRegistry struct {
	mu    sync.Mutex
	games []models.Game
}

func (r *growingRegistry) ListGames(ctx context.Context) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Game(nil), r.games...), nil
}

func (r *growingRegistry) add(g models.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = append(r.games, g)
}

func newFixture(t *testing.T, workers int) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	st := memory.New(clock)
	jobs := joblock.NewMemory(clock)
	rec := &events.Recorder{}
	registry := &growingRegistry{games: catalog.DefaultGames()}
	app := NewApp(
		st,
		keylock.New(),
		jobs,
		gamename.NewLive(registry, time.Hour, clock),
		settings.NewApp(&settings.MemoryRepository{}, nil),
		rec,
		clock,
		Config{Workers: workers, LockTTL: time.Minute},
	)
	return &fixture{app: app, store: st, jobs: jobs, events: rec, registry: registry}
}

func adminCtx() context.Context {
	return authz.WithPrincipal(context.Background(), authz.System())
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Roles: []models.Role{models.RoleUser}, Role: models.RoleUser}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), u))
	return u
}

func (f *fixture) team(t *testing.T, team models.Team) *models.Team {
	t.Helper()
	if team.Slug == "" {
		team.Slug = strings.ToLower(strings.ReplaceAll(team.Name, " ", "-"))
	}
	if team.Status == "" {
		team.Status = models.TeamStatusApproved
	}
	require.NoError(t, f.store.Teams().CreateTeam(context.Background(), &team))
	return &team
}

func (f *fixture) players(t *testing.T) []models.Player {
	t.Helper()
	players, err := f.store.Players().ListPlayers(context.Background())
	require.NoError(t, err)
	return players
}

func (f *fixture) reloadUser(t *testing.T, id uuid.UUID) *models.User {
	t.Helper()
	u, err := f.store.Users().GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) trigger(t *testing.T) *Result {
	t.Helper()
	result, err := f.app.Trigger(adminCtx())
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestSyncCreatesPlayerFromLineupEntry(t *testing.T) {
	f := newFixture(t, 1)
	team := f.team(t, models.Team{
		Name:      "Sentinels",
		GameFocus: "valorant",
		Lineup:    []models.RosterSlot{{IGN: "Ace", DiscordHandle: "x"}},
	})

	result := f.trigger(t)

	assert.True(t, result.Success)
	assert.Equal(t, Summary{TeamsProcessed: 1, PlayersCreated: 1}, result.Summary)

	players := f.players(t)
	require.Len(t, players, 1)
	p := players[0]
	assert.Equal(t, "Ace", p.IGN)
	assert.Equal(t, "ace", p.Slug)
	assert.Nil(t, p.UserID)
	require.Len(t, p.Games, 1)
	profile := p.Games[0]
	assert.Equal(t, "Valorant", profile.Game)
	require.NotNil(t, profile.TeamID)
	assert.Equal(t, team.ID, *profile.TeamID)
	assert.Equal(t, rating.BaselineStats(), profile.Stats)
	assert.Equal(t, rating.CalculateOVR(rating.BaselineStats(), "PLAYER", catalog.DefaultRoleBonuses(), catalog.GenreFPS), profile.Overall)
	assert.True(t, profile.IsActive)

	assert.Equal(t, []string{events.RosterSynced}, f.events.Types())
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t, 1)
	captain := f.user(t, "alice")
	captain.DisplayName = "AliceOnFire"
	require.NoError(t, f.store.Users().UpdateUser(context.Background(), captain))
	linked := f.user(t, "bob")
	member := f.user(t, "carol")

	team := f.team(t, models.Team{
		Name:      "Cloud9",
		GameFocus: "Valorant",
		CaptainID: &captain.ID,
		Members:   []uuid.UUID{captain.ID, member.ID},
		Lineup: []models.RosterSlot{
			{IGN: "Ace"},
			{IGN: "Bee", UserID: &linked.ID},
			{IGN: "  "},
		},
		Substitutes: []models.RosterSlot{{IGN: "Cee"}},
	})

	first := f.trigger(t)
	assert.Equal(t, Summary{TeamsProcessed: 1, PlayersCreated: 5, UsersLinked: 3}, first.Summary)

	playersAfterFirst := f.players(t)
	usersAfterFirst, err := f.store.Users().ListUsers(context.Background())
	require.NoError(t, err)

	second := f.trigger(t)
	assert.True(t, second.Success)
	assert.Equal(t, Summary{TeamsProcessed: 1}, second.Summary)

	usersAfterSecond, err := f.store.Users().ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, playersAfterFirst, f.players(t))
	assert.Equal(t, usersAfterFirst, usersAfterSecond)

	alice := f.reloadUser(t, captain.ID)
	require.NotNil(t, alice.PlayerID)
	assert.Equal(t, []models.TeamMembership{{TeamID: team.ID, Game: "Valorant", Role: models.TeamRoleCaptain}}, alice.Teams)
	assert.Contains(t, alice.Roles, models.RolePlayer)
	assert.Equal(t, models.RoleTeamCaptain, alice.Role)

	bob := f.reloadUser(t, linked.ID)
	assert.Equal(t, []models.TeamMembership{{TeamID: team.ID, Game: "Valorant", Role: models.TeamRolePlayer}}, bob.Teams)
	assert.Equal(t, models.RoleTeamMember, bob.Role)

	carol := f.reloadUser(t, member.ID)
	assert.Equal(t, models.TeamRoleMember, carol.Teams[0].Role)

	p, err := f.store.Players().FindPlayerByIGN(context.Background(), "aliceonfire")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, captain.ID, *p.UserID)
	assert.Equal(t, "CAPTAIN", p.Games[0].Role)
}

func TestSyncCollapsesDuplicateProfiles(t *testing.T) {
	f := newFixture(t, 1)
	other := f.team(t, models.Team{Name: "Old Team", GameFocus: ""})
	f.team(t, models.Team{Name: "New Team", GameFocus: "valo", Lineup: []models.RosterSlot{{IGN: "Zed"}}})

	p := &models.Player{
		IGN:  "zed",
		Slug: "zed",
		Games: []models.GameProfile{
			{Game: "cs2", Role: "AWPER", Stats: models.StatLine{Dmg: 90}},
			{Game: "Counter-Strike 2", Role: "ENTRY", TeamID: ptr(other.ID)},
		},
	}
	require.NoError(t, f.store.Players().CreatePlayer(context.Background(), p))

	result := f.trigger(t)
	assert.Equal(t, Summary{TeamsProcessed: 1, TeamsSkipped: 1, PlayersUpdated: 1}, result.Summary)

	stored, err := f.store.Players().GetPlayer(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Games, 2)

	cs := stored.Games[0]
	assert.Equal(t, "Counter-Strike 2", cs.Game)
	require.NotNil(t, cs.TeamID, "team reference of the later duplicate must survive")
	assert.Equal(t, other.ID, *cs.TeamID)

	assert.Equal(t, "Valorant", stored.Games[1].Game)
}

func TestNormalizeProfilesPrefersCurrentTeamOnConflict(t *testing.T) {
	games := gamename.New(catalog.DefaultGames())
	current, stale := uuid.New(), uuid.New()

	out := normalizeProfiles([]models.GameProfile{
		{Game: "dota", TeamID: ptr(stale)},
		{Game: "Dota 2", TeamID: ptr(current)},
		{Game: "DOTA2"},
	}, current, games)

	require.Len(t, out, 1)
	assert.Equal(t, "Dota 2", out[0].Game)
	assert.Equal(t, current, *out[0].TeamID)

	out = normalizeProfiles([]models.GameProfile{
		{Game: "dota", TeamID: ptr(stale)},
		{Game: "Dota 2", TeamID: ptr(uuid.New())},
	}, current, games)
	require.Len(t, out, 1)
	assert.Equal(t, stale, *out[0].TeamID, "first wins when neither points at the current team")
}

func TestSyncRecomputesEveryProfile(t *testing.T) {
	f := newFixture(t, 1)
	f.team(t, models.Team{Name: "Liquid", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "Miro"}}})

	stats := models.StatLine{Dmg: 80, Scr: 80, Fks: 80, Hs: 80, Ast: 80, Clu: 80}
	p := &models.Player{
		IGN:   "Miro",
		Slug:  "miro",
		Games: []models.GameProfile{{Game: "dota2", Role: "CARRY", Stats: stats, Overall: 0}},
	}
	require.NoError(t, f.store.Players().CreatePlayer(context.Background(), p))

	f.trigger(t)

	stored, err := f.store.Players().GetPlayer(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Games, 2)
	assert.Equal(t, "Dota 2", stored.Games[0].Game)
	assert.Equal(t, rating.CalculateOVR(stats, "CARRY", catalog.DefaultRoleBonuses(), catalog.GenreMOBA), stored.Games[0].Overall)
}

func TestSyncMovesMembershipForSameGame(t *testing.T) {
	f := newFixture(t, 1)
	u := f.user(t, "bob")
	old := f.team(t, models.Team{Name: "Old", GameFocus: ""})
	keep := f.team(t, models.Team{Name: "Dota Side", GameFocus: ""})
	u.Teams = []models.TeamMembership{
		{TeamID: old.ID, Game: "valorant", Role: models.TeamRoleMember},
		{TeamID: keep.ID, Game: "Dota 2", Role: models.TeamRoleMember},
	}
	require.NoError(t, f.store.Users().UpdateUser(context.Background(), u))

	team := f.team(t, models.Team{Name: "New", GameFocus: "VALORANT", Lineup: []models.RosterSlot{{IGN: "bob", UserID: &u.ID}}})

	f.trigger(t)

	bob := f.reloadUser(t, u.ID)
	assert.Equal(t, []models.TeamMembership{
		{TeamID: team.ID, Game: "Valorant", Role: models.TeamRolePlayer},
		{TeamID: keep.ID, Game: "Dota 2", Role: models.TeamRoleMember},
	}, bob.Teams)
}

func TestSyncDoesNotGrantSecondCaptaincy(t *testing.T) {
	f := newFixture(t, 1)
	u := f.user(t, "alice")
	dota := f.team(t, models.Team{Name: "Dota", GameFocus: ""})
	u.Teams = []models.TeamMembership{{TeamID: dota.ID, Game: "Dota 2", Role: models.TeamRoleCaptain}}
	require.NoError(t, f.store.Users().UpdateUser(context.Background(), u))

	team := f.team(t, models.Team{Name: "Val", GameFocus: "Valorant", CaptainID: &u.ID, Members: []uuid.UUID{u.ID}})

	f.trigger(t)

	alice := f.reloadUser(t, u.ID)
	require.Len(t, alice.Teams, 2)
	assert.Equal(t, models.TeamRoleCaptain, alice.Teams[alice.MembershipFor(dota.ID)].Role)
	assert.Equal(t, models.TeamRoleMember, alice.Teams[alice.MembershipFor(team.ID)].Role)
}

func TestSyncSkipsMissingUsersAndTeamsWithoutGame(t *testing.T) {
	f := newFixture(t, 1)
	f.team(t, models.Team{Name: "No Game", Lineup: []models.RosterSlot{{IGN: "Ghost"}}})
	f.team(t, models.Team{
		Name:      "Dangling",
		GameFocus: "Valorant",
		CaptainID: ptr(uuid.New()),
		Members:   []uuid.UUID{uuid.New()},
		Lineup:    []models.RosterSlot{{IGN: "Real"}},
	})

	result := f.trigger(t)

	assert.True(t, result.Success)
	assert.Equal(t, Summary{TeamsProcessed: 1, TeamsSkipped: 1, PlayersCreated: 1}, result.Summary)
	players := f.players(t)
	require.Len(t, players, 1)
	assert.Equal(t, "Real", players[0].IGN)
}

func TestSyncSlugCollision(t *testing.T) {
	f := newFixture(t, 1)
	existing := &models.Player{IGN: "Ace!", Slug: "ace"}
	require.NoError(t, f.store.Players().CreatePlayer(context.Background(), existing))
	f.team(t, models.Team{Name: "Team", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "Ace"}}})

	f.trigger(t)

	p, err := f.store.Players().FindPlayerByIGN(context.Background(), "ace")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ace-"+p.ID.String()[:8], p.Slug)
}

func TestTriggerRequiresAdmin(t *testing.T) {
	f := newFixture(t, 1)
	f.team(t, models.Team{Name: "Team", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "Ace"}}})

	result, err := f.app.Trigger(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Nil(t, result)
	assert.Empty(t, f.players(t))
	assert.Empty(t, f.events.Types())
}

func TestTriggerWhileLockHeldElsewhere(t *testing.T) {
	f := newFixture(t, 1)
	release, err := f.jobs.TryAcquire(context.Background(), "roster-sync", time.Minute)
	require.NoError(t, err)

	_, err = f.app.Trigger(adminCtx())
	assert.ErrorIs(t, err, apperrors.ErrSyncInProgress)

	require.NoError(t, release(context.Background()))
	f.trigger(t)
}

func TestSyncAbortsWhenStoreUnavailable(t *testing.T) {
	f := newFixture(t, 1)
	f.team(t, models.Team{Name: "First", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "One"}}})
	second := f.team(t, models.Team{Name: "Second", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "Two"}}})
	f.team(t, models.Team{Name: "Third", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "Three"}}})

	f.store.SetFault(func(op string, id uuid.UUID) error {
		if op == "GetTeam" && id == second.ID {
			return apperrors.ErrStoreUnavailable
		}
		return nil
	})

	result, err := f.app.Trigger(adminCtx())
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, Summary{TeamsProcessed: 1, PlayersCreated: 1}, result.Summary)
}

func TestSyncReportsFailedTeams(t *testing.T) {
	f := newFixture(t, 1)
	f.team(t, models.Team{Name: "Broken", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "Ace"}}})
	f.store.SetFault(func(op string, id uuid.UUID) error {
		if op == "CreatePlayer" {
			return errors.New("constraint violated")
		}
		return nil
	})

	result, err := f.app.Trigger(adminCtx())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Summary.TeamsFailed)
	assert.Len(t, result.Failures, 1)
	assert.Empty(t, f.players(t))
}

func TestSyncSerializesSharedEntities(t *testing.T) {
	f := newFixture(t, 4)
	u := f.user(t, "flex")
	for i := 0; i < 8; i++ {
		f.team(t, models.Team{
			Name:      fmt.Sprintf("Team %d", i),
			GameFocus: "Valorant",
			Lineup:    []models.RosterSlot{{IGN: "Flex", UserID: &u.ID}, {IGN: "Anon"}},
		})
	}

	result := f.trigger(t)

	assert.True(t, result.Success)
	assert.Equal(t, 8, result.Summary.TeamsProcessed)
	assert.Equal(t, 2, result.Summary.PlayersCreated)
	assert.Equal(t, 1, result.Summary.UsersLinked)
	assert.Len(t, f.players(t), 2)

	flex := f.reloadUser(t, u.ID)
	assert.Len(t, flex.Teams, 1, "one membership per game")
}

func TestSyncDropsLineupLinkToMissingUser(t *testing.T) {
	f := newFixture(t, 1)
	f.team(t, models.Team{
		Name:      "Ghosts",
		GameFocus: "Valorant",
		Lineup:    []models.RosterSlot{{IGN: "Phantom", UserID: ptr(uuid.New())}},
	})

	result := f.trigger(t)

	assert.Equal(t, Summary{TeamsProcessed: 1, PlayersCreated: 1}, result.Summary)
	players := f.players(t)
	require.Len(t, players, 1)
	assert.Equal(t, "Phantom", players[0].IGN)
	assert.Nil(t, players[0].UserID)
}

func TestSyncUsesGamesRegisteredAfterStart(t *testing.T) {
	f := newFixture(t, 1)
	u := f.user(t, "dana")
	team := f.team(t, models.Team{
		Name:      "Deadlockers",
		GameFocus: "dl",
		Lineup:    []models.RosterSlot{{IGN: "Dana", UserID: &u.ID}},
	})

	f.trigger(t)
	p, err := f.store.Players().FindPlayerByIGN(context.Background(), "dana")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "dl", p.Games[0].Game)

	f.registry.add(models.Game{Title: "Deadlock", Slug: "deadlock", Aliases: []string{"dl"}, Category: "MOBA"})

	result := f.trigger(t)
	assert.Equal(t, Summary{TeamsProcessed: 1, PlayersUpdated: 1}, result.Summary)

	stored, err := f.store.Players().GetPlayer(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Games, 1)
	profile := stored.Games[0]
	assert.Equal(t, "Deadlock", profile.Game)
	assert.Equal(t, rating.CalculateOVR(profile.Stats, profile.Role, catalog.DefaultRoleBonuses(), catalog.GenreMOBA), profile.Overall)

	dana := f.reloadUser(t, u.ID)
	assert.Equal(t, []models.TeamMembership{{TeamID: team.ID, Game: "Deadlock", Role: models.TeamRolePlayer}}, dana.Teams)
}

func TestTriggerRunOutlivesCancelledCaller(t *testing.T) {
	f := newFixture(t, 1)
	f.team(t, models.Team{Name: "Team", GameFocus: "Valorant", Lineup: []models.RosterSlot{{IGN: "Ace"}}})

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.store.SetFault(func(op string, id uuid.UUID) error {
		if op == "GetTeam" {
			once.Do(func() {
				close(started)
				<-release
			})
		}
		return nil
	})

	ctx, cancel := context.WithCancel(adminCtx())
	first := make(chan error, 1)
	go func() {
		_, err := f.app.Trigger(ctx)
		first <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		return len(f.events.Types()) == 1
	}, time.Second, 5*time.Millisecond, "the run finishes after its caller left")
	players := f.players(t)
	require.Len(t, players, 1)
	assert.Equal(t, "Ace", players[0].IGN)
}
