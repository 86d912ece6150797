package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

// Memory is an in-memory Store. It backs tests and embedded runs. WithinTx
// gives mutual exclusion, not rollback: callers must do all precondition
// checks before the first write, which the lifecycle manager does.
type Memory struct {
	mu   sync.Mutex
	inTx bool
	pub  Publisher
	d    *memData
}

type memData struct {
	nextID      uint
	lobbies     map[uint]models.Lobby
	memberships map[uint]models.Membership
	bans        map[[2]uint]models.Ban
	users       map[uint]models.User
	relations   map[[2]uint]models.UserRelation
	invites     map[uint]models.Invite
	messages    []models.Message
	encounters  []models.RecentEncounter
	notifs      []models.Notification
}

// NewMemory returns an empty in-memory store. pub may be nil.
func NewMemory(pub Publisher) *Memory {
	return &Memory{
		pub: pub,
		d: &memData{
			nextID:      1,
			lobbies:     make(map[uint]models.Lobby),
			memberships: make(map[uint]models.Membership),
			bans:        make(map[[2]uint]models.Ban),
			users:       make(map[uint]models.User),
			relations:   make(map[[2]uint]models.UserRelation),
			invites:     make(map[uint]models.Invite),
		},
	}
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) publish(lobbyID uint, ev feed.Event) {
	if m.pub != nil {
		m.pub.Publish(lobbyID, ev)
	}
}

func (m *Memory) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&Memory{inTx: true, pub: m.pub, d: m.d})
}

func (m *Memory) GetLobby(ctx context.Context, id uint) (*models.Lobby, error) {
	defer m.lock()()
	lobby, ok := m.d.lobbies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &lobby, nil
}

// GetLobbyForUpdate has no separate lock to take here: WithinTx already
// holds the store mutex, which serializes the whole transaction.
func (m *Memory) GetLobbyForUpdate(ctx context.Context, id uint) (*models.Lobby, error) {
	return m.GetLobby(ctx, id)
}

func (m *Memory) InsertLobby(ctx context.Context, lobby *models.Lobby) error {
	defer m.lock()()
	lobby.ID = m.d.nextID
	m.d.nextID++
	if lobby.Status == "" {
		lobby.Status = models.LobbyOpen
	}
	m.d.lobbies[lobby.ID] = *lobby
	m.publish(lobby.ID, feed.NewEvent(feed.TableLobbies, feed.OpInsert, nil, lobbyRowOf(lobby)))
	return nil
}

func (m *Memory) UpdateLobbyStatus(ctx context.Context, id uint, status models.LobbyStatus) error {
	defer m.lock()()
	lobby, ok := m.d.lobbies[id]
	if !ok {
		return ErrNotFound
	}
	before := lobby
	lobby.Status = status
	m.d.lobbies[id] = lobby
	m.publish(id, feed.NewEvent(feed.TableLobbies, feed.OpUpdate, lobbyRowOf(&before), lobbyRowOf(&lobby)))
	return nil
}

func (m *Memory) TouchHostActivity(ctx context.Context, lobbyID uint, at time.Time) error {
	defer m.lock()()
	lobby, ok := m.d.lobbies[lobbyID]
	if !ok {
		return ErrNotFound
	}
	lobby.HostLastActiveAt = at
	m.d.lobbies[lobbyID] = lobby
	return nil
}

func (m *Memory) StaleLobbies(ctx context.Context, cutoff time.Time) ([]models.Lobby, error) {
	defer m.lock()()
	var stale []models.Lobby
	for _, lobby := range m.d.lobbies {
		if lobby.Status.Active() && lobby.HostLastActiveAt.Before(cutoff) {
			stale = append(stale, lobby)
		}
	}
	return stale, nil
}

func (m *Memory) SearchLobbies(ctx context.Context, gameID uint, offset, limit int) ([]models.Lobby, int64, error) {
	defer m.lock()()
	var all []models.Lobby
	for _, lobby := range m.d.lobbies {
		if lobby.Status != models.LobbyOpen {
			continue
		}
		if gameID != 0 && lobby.GameID != gameID {
			continue
		}
		all = append(all, lobby)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *Memory) ListMemberships(ctx context.Context, lobbyID uint) ([]models.Membership, error) {
	defer m.lock()()
	return m.listMembershipsLocked(lobbyID), nil
}

func (m *Memory) listMembershipsLocked(lobbyID uint) []models.Membership {
	var members []models.Membership
	for _, mem := range m.d.memberships {
		if mem.LobbyID == lobbyID {
			if user, ok := m.d.users[mem.UserID]; ok {
				mem.User = user
			}
			members = append(members, mem)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
		return members[i].ID < members[j].ID
	})
	return members
}

func (m *Memory) GetMembership(ctx context.Context, id uint) (*models.Membership, error) {
	defer m.lock()()
	mem, ok := m.d.memberships[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &mem, nil
}

func (m *Memory) CountActiveMemberships(ctx context.Context, userID uint) (int64, error) {
	defer m.lock()()
	var count int64
	for _, mem := range m.d.memberships {
		if mem.UserID != userID {
			continue
		}
		if lobby, ok := m.d.lobbies[mem.LobbyID]; ok && lobby.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (m *Memory) InsertMembership(ctx context.Context, mem *models.Membership) error {
	defer m.lock()()
	for _, existing := range m.d.memberships {
		if existing.LobbyID == mem.LobbyID && existing.UserID == mem.UserID {
			return errors.New("store: duplicate membership")
		}
	}
	mem.ID = m.d.nextID
	m.d.nextID++
	if mem.Role == "" {
		mem.Role = models.RoleMember
	}
	if user, ok := m.d.users[mem.UserID]; ok {
		mem.User = user
	}
	m.d.memberships[mem.ID] = *mem
	m.publish(mem.LobbyID, feed.NewEvent(feed.TableMemberships, feed.OpInsert, nil, membershipRowOf(mem)))
	return nil
}

func (m *Memory) DeleteMembership(ctx context.Context, id uint) error {
	defer m.lock()()
	mem, ok := m.d.memberships[id]
	if !ok {
		return nil // already gone, deletion is idempotent
	}
	delete(m.d.memberships, id)
	m.publish(mem.LobbyID, feed.NewEvent(feed.TableMemberships, feed.OpDelete, membershipRowOf(&mem), nil))
	return nil
}

func (m *Memory) DeleteLobbyMemberships(ctx context.Context, lobbyID uint) error {
	defer m.lock()()
	for id, mem := range m.d.memberships {
		if mem.LobbyID == lobbyID {
			delete(m.d.memberships, id)
		}
	}
	return nil
}

func (m *Memory) UpdateMembershipReady(ctx context.Context, id, userID uint, ready bool) (int64, error) {
	defer m.lock()()
	mem, ok := m.d.memberships[id]
	if !ok || mem.UserID != userID {
		return 0, nil
	}
	before := mem
	mem.Ready = ready
	m.d.memberships[id] = mem
	m.publish(mem.LobbyID, feed.NewEvent(feed.TableMemberships, feed.OpUpdate, membershipRowOf(&before), membershipRowOf(&mem)))
	return 1, nil
}

func (m *Memory) InsertBan(ctx context.Context, ban *models.Ban) error {
	defer m.lock()()
	ban.CreatedAt = time.Now()
	m.d.bans[[2]uint{ban.LobbyID, ban.PlayerID}] = *ban
	return nil
}

func (m *Memory) HasBan(ctx context.Context, lobbyID, userID uint) (bool, error) {
	defer m.lock()()
	_, ok := m.d.bans[[2]uint{lobbyID, userID}]
	return ok, nil
}

func (m *Memory) AppendSystemMessage(ctx context.Context, lobbyID uint, text string) error {
	defer m.lock()()
	m.d.messages = append(m.d.messages, models.Message{
		LobbyID: lobbyID,
		Type:    models.MessageTypeSystem,
		Content: text,
	})
	return nil
}

func (m *Memory) InsertEncounter(ctx context.Context, e *models.RecentEncounter) error {
	defer m.lock()()
	m.d.encounters = append(m.d.encounters, *e)
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id uint) (*models.User, error) {
	defer m.lock()()
	user, ok := m.d.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *Memory) LockUser(ctx context.Context, id uint) error {
	defer m.lock()()
	if _, ok := m.d.users[id]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) TouchUserActivity(ctx context.Context, id uint, at time.Time) error {
	defer m.lock()()
	user, ok := m.d.users[id]
	if !ok {
		return ErrNotFound
	}
	user.LastActiveAt = at
	m.d.users[id] = user
	return nil
}

func (m *Memory) IsFollower(ctx context.Context, followerID, userID uint) (bool, error) {
	defer m.lock()()
	_, ok := m.d.relations[[2]uint{followerID, userID}]
	return ok, nil
}

func (m *Memory) InsertInvite(ctx context.Context, inv *models.Invite) error {
	defer m.lock()()
	inv.ID = m.d.nextID
	m.d.nextID++
	if inv.Status == "" {
		inv.Status = models.InvitePending
	}
	m.d.invites[inv.ID] = *inv
	return nil
}

func (m *Memory) InsertNotification(ctx context.Context, n *models.Notification) error {
	defer m.lock()()
	n.ID = m.d.nextID
	m.d.nextID++
	m.d.notifs = append(m.d.notifs, *n)
	return nil
}

func (m *Memory) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	defer m.lock()()
	var out []models.Notification
	for i := len(m.d.notifs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.d.notifs[i].UserID == userID {
			out = append(out, m.d.notifs[i])
		}
	}
	return out, nil
}

// PutUser seeds a user, assigning an ID when absent. Test helper.
func (m *Memory) PutUser(user models.User) uint {
	defer m.lock()()
	if user.ID == 0 {
		user.ID = m.d.nextID
		m.d.nextID++
	}
	m.d.users[user.ID] = user
	return user.ID
}

// PutRelation seeds a relation edge. Test helper.
func (m *Memory) PutRelation(fromID, toID uint, status models.RelationStatus) {
	defer m.lock()()
	m.d.relations[[2]uint{fromID, toID}] = models.UserRelation{
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     status,
	}
}

// Messages returns appended messages. Test helper.
func (m *Memory) Messages() []models.Message {
	defer m.lock()()
	out := make([]models.Message, len(m.d.messages))
	copy(out, m.d.messages)
	return out
}

// Encounters returns recorded encounters. Test helper.
func (m *Memory) Encounters() []models.RecentEncounter {
	defer m.lock()()
	out := make([]models.RecentEncounter, len(m.d.encounters))
	copy(out, m.d.encounters)
	return out
}

// Invites returns persisted invites. Test helper.
func (m *Memory) Invites() []models.Invite {
	defer m.lock()()
	var out []models.Invite
	for _, inv := range m.d.invites {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
