// Package notify turns lifecycle transitions into user-facing
// notifications and gates invite creation on the recipient's preferences.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
)

// Invite precondition errors. A rejected invite never persists; these are
// checked before the insert, not filtered after.
var (
	ErrNotMember            = errors.New("inviter is not a member of this lobby")
	ErrInvitesDisabled      = errors.New("user does not accept invites")
	ErrInvitesFollowersOnly = errors.New("user only accepts invites from followers")
)

// Service is the notification fan-out.
type Service struct {
	store store.Store
}

// NewService creates a Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// CreateInvite persists an invite after the recipient's preference gate:
// the target may disallow invites entirely, or allow them only from users
// who follow them. The sender must hold a Membership in the lobby; an
// invite does not grant one to the recipient.
func (s *Service) CreateInvite(ctx context.Context, lobbyID, fromUserID, toUserID uint) (*models.Invite, error) {
	members, err := s.store.ListMemberships(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	isMember := false
	for _, m := range members {
		if m.UserID == fromUserID {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil, ErrNotMember
	}

	target, err := s.store.GetUser(ctx, toUserID)
	if err != nil {
		return nil, err
	}
	if !target.AllowInvites {
		return nil, ErrInvitesDisabled
	}
	if !target.AllowInvitesFromStrangers {
		follower, err := s.store.IsFollower(ctx, fromUserID, toUserID)
		if err != nil {
			return nil, err
		}
		if !follower {
			return nil, ErrInvitesFollowersOnly
		}
	}

	invite := &models.Invite{
		LobbyID:    lobbyID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     models.InvitePending,
	}
	if err := s.store.InsertInvite(ctx, invite); err != nil {
		return nil, err
	}

	s.push(ctx, &models.Notification{
		UserID:  toUserID,
		Kind:    models.NotifyInviteCreated,
		LobbyID: lobbyID,
		Body:    fmt.Sprintf("user %d invited you to a lobby", fromUserID),
	})
	return invite, nil
}

// MemberJoined notifies the host that someone joined.
func (s *Service) MemberJoined(ctx context.Context, lobby *models.Lobby, member *models.Membership) {
	if member.UserID == lobby.HostID {
		return
	}
	s.push(ctx, &models.Notification{
		UserID:  lobby.HostID,
		Kind:    models.NotifyMemberJoined,
		LobbyID: lobby.ID,
		Body:    fmt.Sprintf("user %d joined your lobby %q", member.UserID, lobby.Title),
	})
}

// MemberKicked notifies the removed user.
func (s *Service) MemberKicked(ctx context.Context, lobby *models.Lobby, targetUserID uint) {
	s.push(ctx, &models.Notification{
		UserID:  targetUserID,
		Kind:    models.NotifyMemberKicked,
		LobbyID: lobby.ID,
		Body:    fmt.Sprintf("you were kicked from lobby %q", lobby.Title),
	})
}

// MemberBanned notifies the banned user.
func (s *Service) MemberBanned(ctx context.Context, lobby *models.Lobby, targetUserID uint) {
	s.push(ctx, &models.Notification{
		UserID:  targetUserID,
		Kind:    models.NotifyMemberBanned,
		LobbyID: lobby.ID,
		Body:    fmt.Sprintf("you were banned from lobby %q", lobby.Title),
	})
}

func (s *Service) push(ctx context.Context, n *models.Notification) {
	if err := s.store.InsertNotification(ctx, n); err != nil {
		log.Warn().Str("module", "notify").Err(err).Uint("user_id", n.UserID).Msg("notification insert failed")
	}
}
