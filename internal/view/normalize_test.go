package view

import (
	"testing"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

func TestNormalize_MembershipEvents(t *testing.T) {
	row := membershipPayload(5, 9, true)

	d := Normalize(feed.NewEvent(feed.TableMemberships, feed.OpInsert, nil, row))
	joined, ok := d.(MemberJoined)
	if !ok {
		t.Fatalf("insert: want MemberJoined, got %T", d)
	}
	if joined.Member.MembershipID != 5 || joined.Member.UserID != 9 || !joined.Member.Ready {
		t.Fatalf("bad member: %+v", joined.Member)
	}

	d = Normalize(feed.NewEvent(feed.TableMemberships, feed.OpUpdate, row, row))
	if _, ok := d.(MemberReadyChanged); !ok {
		t.Fatalf("update: want MemberReadyChanged, got %T", d)
	}

	d = Normalize(feed.NewEvent(feed.TableMemberships, feed.OpDelete, row, nil))
	left, ok := d.(MemberLeft)
	if !ok {
		t.Fatalf("delete: want MemberLeft, got %T", d)
	}
	if left.MembershipID != 5 || left.UserID != 9 {
		t.Fatalf("bad MemberLeft: %+v", left)
	}
}

func TestNormalize_LobbyEvents(t *testing.T) {
	open := map[string]any{"id": 3, "host_id": 1, "status": "open", "title": "a"}
	inProgress := map[string]any{"id": 3, "host_id": 1, "status": "in_progress", "title": "a"}
	closed := map[string]any{"id": 3, "host_id": 1, "status": "closed"}

	d := Normalize(feed.NewEvent(feed.TableLobbies, feed.OpUpdate, open, inProgress))
	status, ok := d.(LobbyStatusChanged)
	if !ok || status.Status != models.LobbyInProgress {
		t.Fatalf("status transition: got %T %+v", d, d)
	}

	d = Normalize(feed.NewEvent(feed.TableLobbies, feed.OpUpdate, inProgress, closed))
	status, ok = d.(LobbyStatusChanged)
	if !ok || status.Status != models.LobbyClosed {
		t.Fatalf("close transition: got %T %+v", d, d)
	}

	// same status on both sides is a plain attribute update
	d = Normalize(feed.NewEvent(feed.TableLobbies, feed.OpUpdate, open, open))
	if _, ok := d.(LobbyUpdated); !ok {
		t.Fatalf("attribute update: want LobbyUpdated, got %T", d)
	}
}

func TestNormalize_DegradesToResync(t *testing.T) {
	cases := []struct {
		name string
		ev   feed.Event
	}{
		{"truncated json", feed.Event{Table: feed.TableMemberships, Op: feed.OpInsert, After: []byte(`{"id":`)}},
		{"missing required fields", feed.NewEvent(feed.TableMemberships, feed.OpInsert, nil, map[string]any{"id": 1})},
		{"unknown role", feed.NewEvent(feed.TableMemberships, feed.OpInsert, nil,
			map[string]any{"id": 1, "user_id": 2, "ready": false, "role": "spectator"})},
		{"unknown lobby status", feed.NewEvent(feed.TableLobbies, feed.OpUpdate, nil,
			map[string]any{"id": 1, "status": "archived"})},
		{"lobby delete", feed.NewEvent(feed.TableLobbies, feed.OpDelete, map[string]any{"id": 1, "status": "open"}, nil)},
		{"foreign table", feed.NewEvent("messages", feed.OpInsert, nil, map[string]any{"id": 1})},
		{"empty payload", feed.Event{Table: feed.TableMemberships, Op: feed.OpUpdate}},
	}
	for _, tc := range cases {
		d := Normalize(tc.ev)
		if _, ok := d.(ResyncRequested); !ok {
			t.Errorf("%s: want ResyncRequested, got %T %+v", tc.name, d, d)
		}
	}
}
