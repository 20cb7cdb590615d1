package models

import "github.com/google/uuid"

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneSlots(slots []RosterSlot) []RosterSlot {
	if slots == nil {
		return nil
	}
	out := make([]RosterSlot, len(slots))
	for i, s := range slots {
		s.UserID = cloneID(s.UserID)
		out[i] = s
	}
	return out
}

// Clone returns a deep copy of the team.
func (t Team) Clone() Team {
	t.CaptainID = cloneID(t.CaptainID)
	t.Members = append([]uuid.UUID(nil), t.Members...)
	t.Lineup = cloneSlots(t.Lineup)
	t.Substitutes = cloneSlots(t.Substitutes)
	return t
}

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	p.UserID = cloneID(p.UserID)
	if p.Games != nil {
		games := make([]GameProfile, len(p.Games))
		for i, g := range p.Games {
			g.TeamID = cloneID(g.TeamID)
			games[i] = g
		}
		p.Games = games
	}
	return p
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	u.Roles = append([]Role(nil), u.Roles...)
	u.Teams = append([]TeamMembership(nil), u.Teams...)
	u.PlayerID = cloneID(u.PlayerID)
	return u
}
