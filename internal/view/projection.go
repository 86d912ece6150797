package view

import (
	"sort"
	"time"
)

// MutationKind names the local action a pending marker tracks.
type MutationKind int

const (
	MutationJoin MutationKind = iota
	MutationLeave
	MutationReady
)

// PendingKey identifies a pending optimistic mutation. Join and Leave key
// on the user (the membership id is unknown before the insert confirms),
// Ready keys on the membership.
type PendingKey struct {
	EntityID uint
	Kind     MutationKind
}

// pendingMutation is a prediction applied to the projection before the
// authoritative event arrives. It lives in exactly one of four outcomes:
// confirmed (event matches), corrected (event disagrees, authoritative
// value adopted), timed out (window elapsed, forces a resync), or rolled
// back (the write itself failed). In every outcome the marker is cleared.
type pendingMutation struct {
	key      PendingKey
	seq      uint64
	deadline time.Time

	predictedReady bool    // MutationReady
	priorReady     bool    // MutationReady rollback value
	member         *Member // MutationJoin: predicted row; MutationLeave: removed row
}

// Projection is the rendered lobby state: the authoritative last-known-good
// snapshot overlaid with unresolved pending mutations.
type Projection struct {
	Lobby   LobbyInfo `json:"lobby"`
	Members []Member  `json:"members"`
}

func (p *Projection) memberIndex(membershipID uint) int {
	for i := range p.Members {
		if p.Members[i].MembershipID == membershipID {
			return i
		}
	}
	return -1
}

func (p *Projection) memberByUser(userID uint) *Member {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			return &p.Members[i]
		}
	}
	return nil
}

// upsertMember applies a full post-mutation row by identity. Duplicate
// delivery is a no-op and out-of-order delivery self-heals because the row
// carries values, not deltas.
func (p *Projection) upsertMember(member Member) {
	if i := p.memberIndex(member.MembershipID); i >= 0 {
		p.Members[i] = member
	} else {
		p.Members = append(p.Members, member)
	}
	sort.SliceStable(p.Members, func(i, j int) bool {
		a, b := p.Members[i], p.Members[j]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.MembershipID < b.MembershipID
	})
}

func (p *Projection) removeMember(membershipID uint) {
	if i := p.memberIndex(membershipID); i >= 0 {
		p.Members = append(p.Members[:i], p.Members[i+1:]...)
	}
}

func (p *Projection) clone() Projection {
	members := make([]Member, len(p.Members))
	copy(members, p.Members)
	return Projection{Lobby: p.Lobby, Members: members}
}

// Snapshot is what subscribers of a view receive. Terminal marks the
// lobby's closed transition; no snapshot follows a terminal one.
type Snapshot struct {
	Version  int        `json:"version"`
	Terminal bool       `json:"terminal"`
	Lobby    LobbyInfo  `json:"lobby"`
	Members  []Member   `json:"members"`
	Pending  int        `json:"pending"`
}
