package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

// Gorm is the postgres-backed Store.
type Gorm struct {
	db  *gorm.DB
	pub Publisher

	// queue collects events produced inside a transaction; they are
	// published only after commit.
	queue *[]queuedEvent
}

type queuedEvent struct {
	lobbyID uint
	ev      feed.Event
}

// NewGorm wraps a gorm DB. pub may be nil when no feed is attached.
func NewGorm(db *gorm.DB, pub Publisher) *Gorm {
	return &Gorm{db: db, pub: pub}
}

func (s *Gorm) publish(lobbyID uint, ev feed.Event) {
	if s.queue != nil {
		*s.queue = append(*s.queue, queuedEvent{lobbyID: lobbyID, ev: ev})
		return
	}
	if s.pub != nil {
		s.pub.Publish(lobbyID, ev)
	}
}

func (s *Gorm) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.queue != nil {
		// Already inside a transaction; reuse it.
		return fn(s)
	}
	var queued []queuedEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx, pub: s.pub, queue: &queued})
	})
	if err != nil {
		return err
	}
	if s.pub != nil {
		for _, q := range queued {
			s.pub.Publish(q.lobbyID, q.ev)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Gorm) GetLobby(ctx context.Context, id uint) (*models.Lobby, error) {
	var lobby models.Lobby
	if err := s.db.WithContext(ctx).First(&lobby, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &lobby, nil
}

func (s *Gorm) GetLobbyForUpdate(ctx context.Context, id uint) (*models.Lobby, error) {
	var lobby models.Lobby
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lobby, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lobby, nil
}

func (s *Gorm) InsertLobby(ctx context.Context, lobby *models.Lobby) error {
	if err := s.db.WithContext(ctx).Create(lobby).Error; err != nil {
		return err
	}
	s.publish(lobby.ID, feed.NewEvent(feed.TableLobbies, feed.OpInsert, nil, lobbyRowOf(lobby)))
	return nil
}

func (s *Gorm) UpdateLobbyStatus(ctx context.Context, id uint, status models.LobbyStatus) error {
	before, err := s.GetLobby(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Lobby{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return err
	}
	after := *before
	after.Status = status
	s.publish(id, feed.NewEvent(feed.TableLobbies, feed.OpUpdate, lobbyRowOf(before), lobbyRowOf(&after)))
	return nil
}

func (s *Gorm) TouchHostActivity(ctx context.Context, lobbyID uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Lobby{}).Where("id = ?", lobbyID).
		Update("host_last_active_at", at).Error
}

func (s *Gorm) StaleLobbies(ctx context.Context, cutoff time.Time) ([]models.Lobby, error) {
	var lobbies []models.Lobby
	err := s.db.WithContext(ctx).
		Where("status IN ?", []models.LobbyStatus{models.LobbyOpen, models.LobbyInProgress}).
		Where("host_last_active_at < ?", cutoff).
		Find(&lobbies).Error
	return lobbies, err
}

func (s *Gorm) SearchLobbies(ctx context.Context, gameID uint, offset, limit int) ([]models.Lobby, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Lobby{}).
		Where("status = ?", models.LobbyOpen)
	if gameID != 0 {
		query = query.Where("game_id = ?", gameID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lobbies []models.Lobby
	err := query.Preload("Game").Preload("Host").
		Offset(offset).Limit(limit).Find(&lobbies).Error
	return lobbies, total, err
}

func (s *Gorm) ListMemberships(ctx context.Context, lobbyID uint) ([]models.Membership, error) {
	var members []models.Membership
	err := s.db.WithContext(ctx).Preload("User").
		Where("lobby_id = ?", lobbyID).
		Order("joined_at, id").
		Find(&members).Error
	return members, err
}

func (s *Gorm) GetMembership(ctx context.Context, id uint) (*models.Membership, error) {
	var m models.Membership
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *Gorm) CountActiveMemberships(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Joins("JOIN lobbies ON lobbies.id = memberships.lobby_id").
		Where("memberships.user_id = ?", userID).
		Where("lobbies.status IN ?", []models.LobbyStatus{models.LobbyOpen, models.LobbyInProgress}).
		Count(&count).Error
	return count, err
}

func (s *Gorm) InsertMembership(ctx context.Context, m *models.Membership) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	s.publish(m.LobbyID, feed.NewEvent(feed.TableMemberships, feed.OpInsert, nil, membershipRowOf(m)))
	return nil
}

func (s *Gorm) DeleteMembership(ctx context.Context, id uint) error {
	m, err := s.GetMembership(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil // already gone, deletion is idempotent
	}
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Unscoped().Delete(&models.Membership{}, id).Error; err != nil {
		return err
	}
	s.publish(m.LobbyID, feed.NewEvent(feed.TableMemberships, feed.OpDelete, membershipRowOf(m), nil))
	return nil
}

func (s *Gorm) DeleteLobbyMemberships(ctx context.Context, lobbyID uint) error {
	return s.db.WithContext(ctx).Unscoped().
		Where("lobby_id = ?", lobbyID).
		Delete(&models.Membership{}).Error
}

func (s *Gorm) UpdateMembershipReady(ctx context.Context, id, userID uint, ready bool) (int64, error) {
	before, err := s.GetMembership(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	// The user_id predicate is what stops a user from flipping another
	// member's readiness, independent of any handler-level checks.
	res := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("ready", ready)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		after := *before
		after.Ready = ready
		s.publish(before.LobbyID, feed.NewEvent(feed.TableMemberships, feed.OpUpdate, membershipRowOf(before), membershipRowOf(&after)))
	}
	return res.RowsAffected, nil
}

func (s *Gorm) InsertBan(ctx context.Context, ban *models.Ban) error {
	return s.db.WithContext(ctx).Create(ban).Error
}

func (s *Gorm) HasBan(ctx context.Context, lobbyID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Ban{}).
		Where("lobby_id = ? AND player_id = ?", lobbyID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *Gorm) AppendSystemMessage(ctx context.Context, lobbyID uint, text string) error {
	msg := models.Message{
		LobbyID: lobbyID,
		Type:    models.MessageTypeSystem,
		Content: text,
	}
	return s.db.WithContext(ctx).Create(&msg).Error
}

func (s *Gorm) InsertEncounter(ctx context.Context, e *models.RecentEncounter) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *Gorm) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Gorm) LockUser(ctx context.Context, id uint) error {
	var user models.User
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, id).Error
	return notFound(err)
}

func (s *Gorm) TouchUserActivity(ctx context.Context, id uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("last_active_at", at).Error
}

func (s *Gorm) IsFollower(ctx context.Context, followerID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserRelation{}).
		Where("from_user_id = ? AND to_user_id = ?", followerID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *Gorm) InsertInvite(ctx context.Context, inv *models.Invite) error {
	return s.db.WithContext(ctx).Create(inv).Error
}

func (s *Gorm) InsertNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *Gorm) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}
