package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/lifecycle"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
)

// fixture wires a memory store into a feed hub with a lobby, its host and
// one regular member, the way the server composes them.
type fixture struct {
	hub     *feed.Hub
	mem     *store.Memory
	manager *lifecycle.Manager
	lobby   *models.Lobby
	hostID  uint
	aliceID uint
	alice   *models.Membership
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hub := feed.NewHub()
	mem := store.NewMemory(hub)
	manager := lifecycle.NewManager(mem, nil)

	hostID := mem.PutUser(models.User{Nickname: "host"})
	lobby, err := manager.CreateLobby(context.Background(), hostID, lifecycle.CreateLobbyParams{
		GameID: 1,
		Title:  "sync test",
	})
	if err != nil {
		t.Fatalf("CreateLobby: %v", err)
	}

	aliceID := mem.PutUser(models.User{Nickname: "alice"})
	alice, err := manager.Join(context.Background(), lobby.ID, aliceID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	return &fixture{hub: hub, mem: mem, manager: manager, lobby: lobby, hostID: hostID, aliceID: aliceID, alice: alice}
}

func (f *fixture) open(t *testing.T, opts Options) *View {
	t.Helper()
	v, err := Open(context.Background(), f.lobby.ID, f.mem, f.hub, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(v.Close)
	return v
}

// waitState polls the view until cond holds or the deadline passes.
func waitState(t *testing.T, v *View, what string, cond func(proj Projection, pending int) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		proj, pending, _ := v.State()
		if cond(proj, pending) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	proj, pending, _ := v.State()
	t.Fatalf("timed out waiting for %s; members=%+v pending=%d", what, proj.Members, pending)
}

// recvTerminal drains snapshots until the terminal one arrives.
func recvTerminal(t *testing.T, snapshots <-chan Snapshot) Snapshot {
	t.Helper()
	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				t.Fatalf("snapshot channel closed before terminal snapshot")
			}
			if snap.Terminal {
				return snap
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for terminal snapshot")
		}
	}
}

func membershipPayload(membershipID, userID uint, ready bool) map[string]any {
	return map[string]any{
		"id":        membershipID,
		"lobby_id":  1,
		"user_id":   userID,
		"role":      "member",
		"ready":     ready,
		"joined_at": time.Now().UTC(),
	}
}

func TestOpen_ClosedLobbyRefused(t *testing.T) {
	f := newFixture(t)
	if err := f.manager.Close(context.Background(), f.lobby.ID, f.hostID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := Open(context.Background(), f.lobby.ID, f.mem, f.hub, Options{}); !errors.Is(err, ErrLobbyGone) {
		t.Fatalf("want ErrLobbyGone, got %v", err)
	}
}

func TestView_InitialSnapshotAndRemoteJoin(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{})

	_, snapshots := v.Subscribe()
	select {
	case snap := <-snapshots:
		if len(snap.Members) != 2 || snap.Pending != 0 {
			t.Fatalf("initial snapshot: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatalf("no initial snapshot")
	}

	bob := f.mem.PutUser(models.User{Nickname: "bob"})
	if _, err := f.manager.Join(context.Background(), f.lobby.ID, bob); err != nil {
		t.Fatalf("Join: %v", err)
	}

	waitState(t, v, "bob to appear", func(proj Projection, pending int) bool {
		return proj.memberByUser(bob) != nil && pending == 0
	})

	// members stay ordered by join time
	proj, _, _ := v.State()
	if proj.Members[0].UserID != f.hostID || proj.Members[2].UserID != bob {
		t.Fatalf("unexpected member order: %+v", proj.Members)
	}
}

func TestView_DuplicateEventsAreIdempotent(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})

	ev := feed.NewEvent(feed.TableMemberships, feed.OpInsert, nil, membershipPayload(77, 42, false))
	f.hub.Publish(f.lobby.ID, ev)
	f.hub.Publish(f.lobby.ID, ev)
	f.hub.Publish(f.lobby.ID, ev)

	waitState(t, v, "one row for the duplicated insert", func(proj Projection, pending int) bool {
		count := 0
		for _, m := range proj.Members {
			if m.MembershipID == 77 {
				count++
			}
		}
		return count == 1 && len(proj.Members) == 3
	})
}

func TestView_OptimisticReadyConfirmed(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})

	v.PredictReady(f.alice.ID, true)
	waitState(t, v, "optimistic ready applied", func(proj Projection, pending int) bool {
		i := proj.memberIndex(f.alice.ID)
		return i >= 0 && proj.Members[i].Ready && pending == 1
	})

	// the authoritative write confirms the prediction
	if err := f.manager.ToggleReady(context.Background(), f.alice.ID, f.aliceID, true); err != nil {
		t.Fatalf("ToggleReady: %v", err)
	}
	waitState(t, v, "pending marker cleared", func(proj Projection, pending int) bool {
		i := proj.memberIndex(f.alice.ID)
		return i >= 0 && proj.Members[i].Ready && pending == 0
	})
}

func TestView_OptimisticReadyCorrected(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})

	v.PredictReady(f.alice.ID, true)

	// the authoritative event disagrees with the prediction and wins
	f.hub.Publish(f.lobby.ID, feed.NewEvent(feed.TableMemberships, feed.OpUpdate,
		membershipPayload(f.alice.ID, f.aliceID, false),
		membershipPayload(f.alice.ID, f.aliceID, false)))

	waitState(t, v, "correction to ready=false", func(proj Projection, pending int) bool {
		i := proj.memberIndex(f.alice.ID)
		return i >= 0 && !proj.Members[i].Ready && pending == 0
	})
}

func TestView_OptimisticJoinConfirmed(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})
	bob := f.mem.PutUser(models.User{Nickname: "bob"})

	v.PredictJoin(Member{UserID: bob, Nickname: "bob", Role: models.RoleMember, JoinedAt: time.Now()})
	waitState(t, v, "provisional row applied", func(proj Projection, pending int) bool {
		return proj.memberByUser(bob) != nil && pending == 1
	})

	if _, err := f.manager.Join(context.Background(), f.lobby.ID, bob); err != nil {
		t.Fatalf("Join: %v", err)
	}

	// the authoritative row replaces the provisional one, leaving exactly
	// one entry for bob and no marker
	waitState(t, v, "authoritative row replaced the provisional one", func(proj Projection, pending int) bool {
		count := 0
		confirmed := false
		for _, m := range proj.Members {
			if m.UserID == bob {
				count++
				confirmed = m.MembershipID != 0
			}
		}
		return count == 1 && confirmed && pending == 0
	})
}

func TestView_OptimisticJoinRolledBack(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})
	bob := f.mem.PutUser(models.User{Nickname: "bob"})

	key := v.PredictJoin(Member{UserID: bob, Role: models.RoleMember, JoinedAt: time.Now()})
	waitState(t, v, "provisional row applied", func(proj Projection, pending int) bool {
		return proj.memberByUser(bob) != nil && pending == 1
	})

	v.ActionFailed(key)
	waitState(t, v, "provisional row removed", func(proj Projection, pending int) bool {
		return proj.memberByUser(bob) == nil && pending == 0 && len(proj.Members) == 2
	})
}

func TestView_ToggleRoundTripLeavesNoMarker(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})

	for _, ready := range []bool{true, false} {
		v.PredictReady(f.alice.ID, ready)
		if err := f.manager.ToggleReady(context.Background(), f.alice.ID, f.aliceID, ready); err != nil {
			t.Fatalf("ToggleReady(%v): %v", ready, err)
		}
	}

	waitState(t, v, "round trip settled", func(proj Projection, pending int) bool {
		i := proj.memberIndex(f.alice.ID)
		return i >= 0 && !proj.Members[i].Ready && pending == 0
	})
}

func TestView_ActionFailedRollsBack(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})

	key := v.PredictReady(f.alice.ID, true)
	waitState(t, v, "prediction applied", func(proj Projection, pending int) bool {
		return pending == 1
	})
	v.ActionFailed(key)
	waitState(t, v, "ready rollback", func(proj Projection, pending int) bool {
		i := proj.memberIndex(f.alice.ID)
		return i >= 0 && !proj.Members[i].Ready && pending == 0
	})

	key = v.PredictLeave(f.alice.ID, f.aliceID)
	waitState(t, v, "leave applied", func(proj Projection, pending int) bool {
		return proj.memberIndex(f.alice.ID) < 0 && pending == 1
	})
	v.ActionFailed(key)
	waitState(t, v, "leave rollback", func(proj Projection, pending int) bool {
		return proj.memberIndex(f.alice.ID) >= 0 && pending == 0
	})
}

func TestView_PendingTimeoutForcesResync(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour, PendingTimeout: 30 * time.Millisecond})

	// predicted but never written: no authoritative event will ever confirm
	v.PredictReady(f.alice.ID, true)

	waitState(t, v, "timeout resync restored authority", func(proj Projection, pending int) bool {
		i := proj.memberIndex(f.alice.ID)
		return i >= 0 && !proj.Members[i].Ready && pending == 0
	})
}

func TestView_ResyncConvergesAfterLostEvents(t *testing.T) {
	// a silent store publishes nothing, so every write is a lost event and
	// only the periodic resync can close the gap
	silent := store.NewMemory(nil)
	manager := lifecycle.NewManager(silent, nil)
	hostID := silent.PutUser(models.User{Nickname: "host"})
	lobby, err := manager.CreateLobby(context.Background(), hostID, lifecycle.CreateLobbyParams{GameID: 1, Title: "quiet"})
	if err != nil {
		t.Fatalf("CreateLobby: %v", err)
	}

	hub := feed.NewHub()
	v, err := Open(context.Background(), lobby.ID, silent, hub, Options{ResyncInterval: 25 * time.Millisecond})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(v.Close)

	alice := silent.PutUser(models.User{Nickname: "alice"})
	if _, err := manager.Join(context.Background(), lobby.ID, alice); err != nil {
		t.Fatalf("Join: %v", err)
	}

	waitState(t, v, "resync to pick up the lost join", func(proj Projection, pending int) bool {
		return proj.memberByUser(alice) != nil
	})
}

func TestView_MalformedEventDegradesToResync(t *testing.T) {
	// silent store: the ready flip publishes nothing, so only the resync
	// forced by the malformed payload can surface it
	silent := store.NewMemory(nil)
	manager := lifecycle.NewManager(silent, nil)
	hostID := silent.PutUser(models.User{Nickname: "host"})
	lobby, err := manager.CreateLobby(context.Background(), hostID, lifecycle.CreateLobbyParams{GameID: 1, Title: "quiet"})
	if err != nil {
		t.Fatalf("CreateLobby: %v", err)
	}
	aliceID := silent.PutUser(models.User{Nickname: "alice"})
	alice, err := manager.Join(context.Background(), lobby.ID, aliceID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	hub := feed.NewHub()
	v, err := Open(context.Background(), lobby.ID, silent, hub, Options{ResyncInterval: time.Hour})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(v.Close)

	if _, err := silent.UpdateMembershipReady(context.Background(), alice.ID, aliceID, true); err != nil {
		t.Fatalf("UpdateMembershipReady: %v", err)
	}
	hub.Publish(lobby.ID, feed.Event{Table: feed.TableMemberships, Op: feed.OpInsert, After: []byte(`{"id":`)})

	waitState(t, v, "resync triggered by malformed event", func(proj Projection, pending int) bool {
		i := proj.memberIndex(alice.ID)
		return i >= 0 && proj.Members[i].Ready
	})
}

func TestView_ClosedLobbyIsTerminal(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, Options{ResyncInterval: time.Hour})

	_, snapshots := v.Subscribe()

	// a pending marker present at close time must be discarded, not applied
	v.PredictReady(f.alice.ID, true)
	if err := f.manager.Close(context.Background(), f.lobby.ID, f.hostID); err != nil {
		t.Fatalf("Close: %v", err)
	}

	snap := recvTerminal(t, snapshots)
	if snap.Lobby.Status != models.LobbyClosed || len(snap.Members) != 0 || snap.Pending != 0 {
		t.Fatalf("bad terminal snapshot: %+v", snap)
	}

	select {
	case <-v.Done():
	case <-time.After(time.Second):
		t.Fatalf("view did not stop after terminal transition")
	}
}
