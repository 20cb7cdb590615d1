// Package memory is an in-process store.Store used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/store"
)

// FaultFunc lets tests fail a specific operation. op is the repository
// method name, id the entity it targets (uuid.Nil for list calls).
type FaultFunc func(op string, id uuid.UUID) error

type state struct {
	teams   map[uuid.UUID]models.Team
	players map[uuid.UUID]models.Player
	users   map[uuid.UUID]models.User
	// insertion order, used to list in creation order under a fake clock
	seq  map[uuid.UUID]int
	next int
}

func (s *state) track(id uuid.UUID) {
	s.next++
	s.seq[id] = s.next
}

func (s *state) clone() *state {
	out := &state{
		teams:   make(map[uuid.UUID]models.Team, len(s.teams)),
		players: make(map[uuid.UUID]models.Player, len(s.players)),
		users:   make(map[uuid.UUID]models.User, len(s.users)),
		seq:     make(map[uuid.UUID]int, len(s.seq)),
		next:    s.next,
	}
	for id, n := range s.seq {
		out.seq[id] = n
	}
	for id, t := range s.teams {
		out.teams[id] = t.Clone()
	}
	for id, p := range s.players {
		out.players[id] = p.Clone()
	}
	for id, u := range s.users {
		out.users[id] = u.Clone()
	}
	return out
}

// Store keeps entities in maps guarded by a single mutex. Transactions hold
// the mutex for their whole duration and restore a snapshot on error.
type Store struct {
	mu    sync.Mutex
	data  *state
	clock clockwork.Clock
	fault FaultFunc
}

// New creates an empty store.
func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		data: &state{
			teams:   make(map[uuid.UUID]models.Team),
			players: make(map[uuid.UUID]models.Player),
			users:   make(map[uuid.UUID]models.User),
			seq:     make(map[uuid.UUID]int),
		},
		clock: clock,
	}
}

// SetFault installs (or with nil, clears) a fault hook.
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

var _ store.Store = (*Store)(nil)

func (s *Store) Teams() store.TeamRepository     { return teamRepo{view{s: s}} }
func (s *Store) Players() store.PlayerRepository { return playerRepo{view{s: s}} }
func (s *Store) Users() store.UserRepository     { return userRepo{view{s: s}} }

// WithinTx runs fn with exclusive access; on error the previous state is restored.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &txView{view{s: s, inTx: true}}
	if err := fn(tx); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

type txView struct {
	v view
}

func (t *txView) Teams() store.TeamRepository     { return teamRepo{t.v} }
func (t *txView) Players() store.PlayerRepository { return playerRepo{t.v} }
func (t *txView) Users() store.UserRepository     { return userRepo{t.v} }

// view runs repository calls either under the store mutex or, inside a
// transaction, directly since the mutex is already held.
type view struct {
	s    *Store
	inTx bool
}

func (v view) run(ctx context.Context, op string, id uuid.UUID, fn func(d *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	if v.s.fault != nil {
		if err := v.s.fault(op, id); err != nil {
			return err
		}
	}
	return fn(v.s.data)
}

type teamRepo struct{ v view }

func (r teamRepo) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var out *models.Team
	err := r.v.run(ctx, "GetTeam", id, func(d *state) error {
		t, ok := d.teams[id]
		if !ok {
			return apperrors.NotFound("team", id)
		}
		c := t.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (r teamRepo) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	var out []models.Team
	err := r.v.run(ctx, "ListAllTeams", uuid.Nil, func(d *state) error {
		out = make([]models.Team, 0, len(d.teams))
		for _, t := range d.teams {
			out = append(out, t.Clone())
		}
		sort.Slice(out, func(i, j int) bool { return d.seq[out[i].ID] < d.seq[out[j].ID] })
		return nil
	})
	return out, err
}

func (r teamRepo) CreateTeam(ctx context.Context, team *models.Team) error {
	return r.v.run(ctx, "CreateTeam", team.ID, func(d *state) error {
		if team.ID == uuid.Nil {
			team.ID = uuid.New()
		}
		if _, ok := d.teams[team.ID]; ok {
			return apperrors.Validation("team %s already exists", team.ID)
		}
		for _, t := range d.teams {
			if strings.EqualFold(t.Slug, team.Slug) {
				return apperrors.Validation("team slug %q already taken", team.Slug)
			}
		}
		now := r.v.s.clock.Now()
		team.Version = 1
		team.CreatedAt = now
		team.UpdatedAt = now
		d.teams[team.ID] = team.Clone()
		d.track(team.ID)
		return nil
	})
}

func (r teamRepo) UpdateTeam(ctx context.Context, team *models.Team) error {
	return r.v.run(ctx, "UpdateTeam", team.ID, func(d *state) error {
		current, ok := d.teams[team.ID]
		if !ok {
			return apperrors.NotFound("team", team.ID)
		}
		if current.Version != team.Version {
			return apperrors.ErrStaleWrite
		}
		for id, t := range d.teams {
			if id != team.ID && strings.EqualFold(t.Slug, team.Slug) {
				return apperrors.Validation("team slug %q already taken", team.Slug)
			}
		}
		team.Version++
		team.UpdatedAt = r.v.s.clock.Now()
		d.teams[team.ID] = team.Clone()
		return nil
	})
}

func (r teamRepo) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	return r.v.run(ctx, "DeleteTeam", id, func(d *state) error {
		if _, ok := d.teams[id]; !ok {
			return apperrors.NotFound("team", id)
		}
		delete(d.teams, id)
		delete(d.seq, id)
		return nil
	})
}

type playerRepo struct{ v view }

func sortedPlayers(d *state, keep func(p models.Player) bool) []models.Player {
	out := make([]models.Player, 0)
	for _, p := range d.players {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return d.seq[out[i].ID] < d.seq[out[j].ID] })
	return out
}

func (r playerRepo) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var out *models.Player
	err := r.v.run(ctx, "GetPlayer", id, func(d *state) error {
		p, ok := d.players[id]
		if !ok {
			return apperrors.NotFound("player", id)
		}
		c := p.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (r playerRepo) FindPlayerByUserID(ctx context.Context, userID uuid.UUID) (*models.Player, error) {
	var out *models.Player
	err := r.v.run(ctx, "FindPlayerByUserID", userID, func(d *state) error {
		matches := sortedPlayers(d, func(p models.Player) bool {
			return p.UserID != nil && *p.UserID == userID
		})
		if len(matches) > 0 {
			out = &matches[0]
		}
		return nil
	})
	return out, err
}

func (r playerRepo) FindPlayerByIGN(ctx context.Context, ign string) (*models.Player, error) {
	var out *models.Player
	err := r.v.run(ctx, "FindPlayerByIGN", uuid.Nil, func(d *state) error {
		matches := sortedPlayers(d, func(p models.Player) bool {
			return strings.EqualFold(p.IGN, ign)
		})
		if len(matches) > 0 {
			out = &matches[0]
		}
		return nil
	})
	return out, err
}

func (r playerRepo) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var out []models.Player
	err := r.v.run(ctx, "ListPlayers", uuid.Nil, func(d *state) error {
		out = sortedPlayers(d, func(models.Player) bool { return true })
		return nil
	})
	return out, err
}

func (r playerRepo) ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error) {
	var out []models.Player
	err := r.v.run(ctx, "ListPlayersByTeam", teamID, func(d *state) error {
		out = sortedPlayers(d, func(p models.Player) bool {
			for _, g := range p.Games {
				if g.TeamID != nil && *g.TeamID == teamID {
					return true
				}
			}
			return false
		})
		return nil
	})
	return out, err
}

func (r playerRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	exists := false
	err := r.v.run(ctx, "SlugExists", uuid.Nil, func(d *state) error {
		for _, p := range d.players {
			if strings.EqualFold(p.Slug, slug) {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r playerRepo) CreatePlayer(ctx context.Context, player *models.Player) error {
	return r.v.run(ctx, "CreatePlayer", player.ID, func(d *state) error {
		if player.ID == uuid.Nil {
			player.ID = uuid.New()
		}
		if _, ok := d.players[player.ID]; ok {
			return apperrors.Validation("player %s already exists", player.ID)
		}
		for _, p := range d.players {
			if strings.EqualFold(p.Slug, player.Slug) {
				return apperrors.Validation("player slug %q already taken", player.Slug)
			}
		}
		now := r.v.s.clock.Now()
		player.Version = 1
		player.CreatedAt = now
		player.UpdatedAt = now
		d.players[player.ID] = player.Clone()
		d.track(player.ID)
		return nil
	})
}

func (r playerRepo) UpdatePlayer(ctx context.Context, player *models.Player) error {
	return r.v.run(ctx, "UpdatePlayer", player.ID, func(d *state) error {
		current, ok := d.players[player.ID]
		if !ok {
			return apperrors.NotFound("player", player.ID)
		}
		if current.Version != player.Version {
			return apperrors.ErrStaleWrite
		}
		player.Version++
		player.UpdatedAt = r.v.s.clock.Now()
		d.players[player.ID] = player.Clone()
		return nil
	})
}

type userRepo struct{ v view }

func (r userRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var out *models.User
	err := r.v.run(ctx, "GetUser", id, func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return apperrors.NotFound("user", id)
		}
		c := u.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (r userRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var out *models.User
	err := r.v.run(ctx, "FindUserByUsername", uuid.Nil, func(d *state) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Username, username) {
				c := u.Clone()
				out = &c
				break
			}
		}
		return nil
	})
	return out, err
}

func (r userRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.v.run(ctx, "ListUsers", uuid.Nil, func(d *state) error {
		out = make([]models.User, 0, len(d.users))
		for _, u := range d.users {
			out = append(out, u.Clone())
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
		return nil
	})
	return out, err
}

func (r userRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.v.run(ctx, "CreateUser", user.ID, func(d *state) error {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		if _, ok := d.users[user.ID]; ok {
			return apperrors.Validation("user %s already exists", user.ID)
		}
		for _, u := range d.users {
			if strings.EqualFold(u.Username, user.Username) {
				return apperrors.Validation("username %q already taken", user.Username)
			}
		}
		now := r.v.s.clock.Now()
		user.Version = 1
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = user.Clone()
		d.track(user.ID)
		return nil
	})
}

func (r userRepo) UpdateUser(ctx context.Context, user *models.User) error {
	return r.v.run(ctx, "UpdateUser", user.ID, func(d *state) error {
		current, ok := d.users[user.ID]
		if !ok {
			return apperrors.NotFound("user", user.ID)
		}
		if current.Version != user.Version {
			return apperrors.ErrStaleWrite
		}
		user.Version++
		user.UpdatedAt = r.v.s.clock.Now()
		d.users[user.ID] = user.Clone()
		return nil
	})
}
