package store

import (
	"context"
	"testing"
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

func seedOpenLobby(t *testing.T, m *Memory, gameID uint) uint {
	t.Helper()
	hostID := m.PutUser(models.User{})
	lobby := &models.Lobby{GameID: gameID, HostID: hostID, Status: models.LobbyOpen}
	if err := m.InsertLobby(context.Background(), lobby); err != nil {
		t.Fatalf("InsertLobby: %v", err)
	}
	return lobby.ID
}

func TestSearchLobbies_FiltersAndPaginates(t *testing.T) {
	m := NewMemory(nil)
	for i := 0; i < 5; i++ {
		seedOpenLobby(t, m, 1)
	}
	seedOpenLobby(t, m, 2)
	closedID := seedOpenLobby(t, m, 1)
	if err := m.UpdateLobbyStatus(context.Background(), closedID, models.LobbyClosed); err != nil {
		t.Fatalf("UpdateLobbyStatus: %v", err)
	}

	page, total, err := m.SearchLobbies(context.Background(), 1, 0, 3)
	if err != nil {
		t.Fatalf("SearchLobbies: %v", err)
	}
	if total != 5 || len(page) != 3 {
		t.Fatalf("want total 5 page 3, got total %d page %d", total, len(page))
	}

	rest, _, err := m.SearchLobbies(context.Background(), 1, 3, 3)
	if err != nil {
		t.Fatalf("SearchLobbies offset: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("want 2 on the second page, got %d", len(rest))
	}
}

func TestUpdateMembershipReady_WritePredicate(t *testing.T) {
	m := NewMemory(nil)
	lobbyID := seedOpenLobby(t, m, 1)
	userID := m.PutUser(models.User{})
	mem := &models.Membership{LobbyID: lobbyID, UserID: userID, JoinedAt: time.Now()}
	if err := m.InsertMembership(context.Background(), mem); err != nil {
		t.Fatalf("InsertMembership: %v", err)
	}

	// wrong owner matches zero rows and writes nothing
	matched, err := m.UpdateMembershipReady(context.Background(), mem.ID, userID+1, true)
	if err != nil || matched != 0 {
		t.Fatalf("foreign write: matched=%d err=%v", matched, err)
	}
	got, _ := m.GetMembership(context.Background(), mem.ID)
	if got.Ready {
		t.Fatalf("foreign write flipped the flag")
	}

	matched, err = m.UpdateMembershipReady(context.Background(), mem.ID, userID, true)
	if err != nil || matched != 1 {
		t.Fatalf("own write: matched=%d err=%v", matched, err)
	}
}

func TestDeleteMembership_Idempotent(t *testing.T) {
	m := NewMemory(nil)
	if err := m.DeleteMembership(context.Background(), 42); err != nil {
		t.Fatalf("deleting a missing membership: %v", err)
	}
}
