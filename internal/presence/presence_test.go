package presence

import (
	"context"
	"testing"
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
)

func seedLobby(t *testing.T, mem *store.Memory, hostActive time.Time) (uint, uint) {
	t.Helper()
	hostID := mem.PutUser(models.User{Nickname: "host"})
	lobby := &models.Lobby{
		GameID:           1,
		HostID:           hostID,
		Title:            "presence",
		Status:           models.LobbyOpen,
		HostLastActiveAt: hostActive,
	}
	if err := mem.InsertLobby(context.Background(), lobby); err != nil {
		t.Fatalf("InsertLobby: %v", err)
	}
	err := mem.InsertMembership(context.Background(), &models.Membership{
		LobbyID:  lobby.ID,
		UserID:   hostID,
		Role:     models.RoleHost,
		JoinedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertMembership: %v", err)
	}
	return lobby.ID, hostID
}

func TestHeartbeat_RefreshesActivity(t *testing.T) {
	mem := store.NewMemory(nil)
	stale := time.Now().Add(-time.Hour)
	lobbyID, hostID := seedLobby(t, mem, stale)

	hb := StartHeartbeat(context.Background(), mem, lobbyID, hostID, time.Hour)
	defer hb.Stop()

	// the first beat is immediate, no interval wait
	deadline := time.Now().Add(2 * time.Second)
	for {
		lobby, err := mem.GetLobby(context.Background(), lobbyID)
		if err != nil {
			t.Fatalf("GetLobby: %v", err)
		}
		if lobby.HostLastActiveAt.After(stale) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("heartbeat never refreshed host_last_active_at")
		}
		time.Sleep(5 * time.Millisecond)
	}

	user, err := mem.GetUser(context.Background(), hostID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !user.LastActiveAt.After(stale) {
		t.Fatalf("heartbeat did not refresh the host profile")
	}
}

func TestSweep_ClosesOnlyStaleLobbies(t *testing.T) {
	mem := store.NewMemory(nil)
	staleID, _ := seedLobby(t, mem, time.Now().Add(-time.Hour))
	freshID, _ := seedLobby(t, mem, time.Now())

	sweeper := NewSweeper(mem, time.Minute)
	if closed := sweeper.Sweep(context.Background()); closed != 1 {
		t.Fatalf("want 1 closed lobby, got %d", closed)
	}

	staleLobby, _ := mem.GetLobby(context.Background(), staleID)
	if staleLobby.Status != models.LobbyClosed {
		t.Fatalf("stale lobby not closed: %+v", staleLobby)
	}
	members, _ := mem.ListMemberships(context.Background(), staleID)
	if len(members) != 0 {
		t.Fatalf("stale lobby memberships not voided: %+v", members)
	}

	freshLobby, _ := mem.GetLobby(context.Background(), freshID)
	if freshLobby.Status != models.LobbyOpen {
		t.Fatalf("fresh lobby swept: %+v", freshLobby)
	}
}

func TestSweep_CooldownSkipsBackToBackRuns(t *testing.T) {
	mem := store.NewMemory(nil)
	sweeper := NewSweeper(mem, time.Minute)

	if closed := sweeper.Sweep(context.Background()); closed != 0 {
		t.Fatalf("empty store sweep closed %d", closed)
	}

	// now a stale lobby exists, but the cooldown window is still open
	seedLobby(t, mem, time.Now().Add(-time.Hour))
	if closed := sweeper.Sweep(context.Background()); closed != 0 {
		t.Fatalf("sweep within cooldown closed %d", closed)
	}
}
