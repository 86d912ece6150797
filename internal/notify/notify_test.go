package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
	"gorm.io/gorm"
)

// seedLobby puts a lobby with one member directly into the store; invite
// gating only needs the membership row, not the full lifecycle.
func seedLobby(t *testing.T, mem *store.Memory, memberID uint) uint {
	t.Helper()
	lobby := &models.Lobby{GameID: 1, HostID: memberID, Title: "invites", Status: models.LobbyOpen}
	if err := mem.InsertLobby(context.Background(), lobby); err != nil {
		t.Fatalf("InsertLobby: %v", err)
	}
	err := mem.InsertMembership(context.Background(), &models.Membership{
		LobbyID:  lobby.ID,
		UserID:   memberID,
		Role:     models.RoleHost,
		JoinedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertMembership: %v", err)
	}
	return lobby.ID
}

func TestCreateInvite_PreferenceGate(t *testing.T) {
	mem := store.NewMemory(nil)
	svc := NewService(mem)

	sender := mem.PutUser(models.User{Nickname: "sender"})
	lobbyID := seedLobby(t, mem, sender)

	openTarget := mem.PutUser(models.User{AllowInvites: true, AllowInvitesFromStrangers: true})
	noInvites := mem.PutUser(models.User{AllowInvites: false})
	followersOnly := mem.PutUser(models.User{AllowInvites: true, AllowInvitesFromStrangers: false})
	followedTarget := mem.PutUser(models.User{AllowInvites: true, AllowInvitesFromStrangers: false})
	mem.PutRelation(sender, followedTarget, models.RelationFollowing)

	if _, err := svc.CreateInvite(context.Background(), lobbyID, sender, openTarget); err != nil {
		t.Fatalf("open target: %v", err)
	}
	if _, err := svc.CreateInvite(context.Background(), lobbyID, sender, noInvites); !errors.Is(err, ErrInvitesDisabled) {
		t.Fatalf("invites off: want ErrInvitesDisabled, got %v", err)
	}
	if _, err := svc.CreateInvite(context.Background(), lobbyID, sender, followersOnly); !errors.Is(err, ErrInvitesFollowersOnly) {
		t.Fatalf("stranger: want ErrInvitesFollowersOnly, got %v", err)
	}
	if _, err := svc.CreateInvite(context.Background(), lobbyID, sender, followedTarget); err != nil {
		t.Fatalf("follower: %v", err)
	}

	// rejected invites never persist
	if got := len(mem.Invites()); got != 2 {
		t.Fatalf("want 2 persisted invites, got %d: %+v", got, mem.Invites())
	}

	// each accepted invite fans out one notification to the recipient
	for _, target := range []uint{openTarget, followedTarget} {
		notifs, err := mem.ListNotifications(context.Background(), target, 0)
		if err != nil {
			t.Fatalf("ListNotifications: %v", err)
		}
		if len(notifs) != 1 || notifs[0].Kind != models.NotifyInviteCreated || notifs[0].LobbyID != lobbyID {
			t.Fatalf("user %d notifications: %+v", target, notifs)
		}
	}
}

func TestCreateInvite_SenderMustBeMember(t *testing.T) {
	mem := store.NewMemory(nil)
	svc := NewService(mem)

	member := mem.PutUser(models.User{Nickname: "member"})
	outsider := mem.PutUser(models.User{Nickname: "outsider"})
	target := mem.PutUser(models.User{AllowInvites: true, AllowInvitesFromStrangers: true})
	lobbyID := seedLobby(t, mem, member)

	if _, err := svc.CreateInvite(context.Background(), lobbyID, outsider, target); !errors.Is(err, ErrNotMember) {
		t.Fatalf("want ErrNotMember, got %v", err)
	}
	if len(mem.Invites()) != 0 {
		t.Fatalf("rejected invite persisted: %+v", mem.Invites())
	}
}

func TestLifecycleNotifications(t *testing.T) {
	mem := store.NewMemory(nil)
	svc := NewService(mem)

	host := mem.PutUser(models.User{Nickname: "host"})
	joiner := mem.PutUser(models.User{Nickname: "joiner"})
	lobby := &models.Lobby{Model: gorm.Model{ID: 9}, HostID: host, Title: "squad"}

	// the host joining their own lobby stays silent
	svc.MemberJoined(context.Background(), lobby, &models.Membership{UserID: host})
	svc.MemberJoined(context.Background(), lobby, &models.Membership{UserID: joiner})

	hostNotifs, _ := mem.ListNotifications(context.Background(), host, 0)
	if len(hostNotifs) != 1 || hostNotifs[0].Kind != models.NotifyMemberJoined {
		t.Fatalf("host notifications: %+v", hostNotifs)
	}

	svc.MemberKicked(context.Background(), lobby, joiner)
	svc.MemberBanned(context.Background(), lobby, joiner)

	joinerNotifs, _ := mem.ListNotifications(context.Background(), joiner, 0)
	if len(joinerNotifs) != 2 {
		t.Fatalf("joiner notifications: %+v", joinerNotifs)
	}
	// newest first
	if joinerNotifs[0].Kind != models.NotifyMemberBanned || joinerNotifs[1].Kind != models.NotifyMemberKicked {
		t.Fatalf("unexpected order: %+v", joinerNotifs)
	}
}
