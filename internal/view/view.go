package view

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

// ErrLobbyGone is returned when opening a view on a closed lobby.
var ErrLobbyGone = errors.New("view: lobby is closed")

// Fetcher is the read slice of the store the view needs for resync.
// store.Store satisfies it.
type Fetcher interface {
	GetLobby(ctx context.Context, id uint) (*models.Lobby, error)
	ListMemberships(ctx context.Context, lobbyID uint) ([]models.Membership, error)
}

// Options tune the view's timing. Zero values get defaults.
type Options struct {
	// ResyncInterval bounds staleness: a full authoritative re-fetch runs
	// on this period regardless of what the feed delivers.
	ResyncInterval time.Duration
	// PendingTimeout bounds optimism: a prediction with no matching
	// authoritative event within this window forces a resync.
	PendingTimeout time.Duration
	FetchTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.ResyncInterval <= 0 {
		o.ResyncInterval = 15 * time.Second
	}
	if o.PendingTimeout <= 0 {
		o.PendingTimeout = 5 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 5 * time.Second
	}
	return o
}

type viewMsg interface{ isViewMsg() }

type predictJoinMsg struct{ member Member }
type predictLeaveMsg struct{ membershipID, userID uint }
type predictReadyMsg struct {
	membershipID uint
	ready        bool
}
type actionFailedMsg struct{ key PendingKey }
type rawEventMsg struct{ ev feed.Event }
type subLostMsg struct{}
type resyncNowMsg struct{ reason string }
type resyncResultMsg struct {
	lobby   *models.Lobby
	members []models.Membership
	err     error
}
type subscribeMsg struct {
	id  uuid.UUID
	out chan Snapshot
}
type unsubscribeMsg struct{ id uuid.UUID }
type stateMsg struct{ reply chan stateReply }

type stateReply struct {
	proj    Projection
	pending int
	version int
}

func (predictJoinMsg) isViewMsg()  {}
func (predictLeaveMsg) isViewMsg() {}
func (predictReadyMsg) isViewMsg() {}
func (actionFailedMsg) isViewMsg() {}
func (rawEventMsg) isViewMsg()     {}
func (subLostMsg) isViewMsg()      {}
func (resyncNowMsg) isViewMsg()    {}
func (resyncResultMsg) isViewMsg() {}
func (subscribeMsg) isViewMsg()    {}
func (unsubscribeMsg) isViewMsg()  {}
func (stateMsg) isViewMsg()        {}

// View owns the synchronized projection of one lobby for one open client
// view. All reconciliation runs on a single consumer loop; every exported
// method just posts a message, so there is no shared mutable state.
type View struct {
	lobbyID uint
	fetcher Fetcher
	hub     *feed.Hub
	opts    Options

	inbox  chan viewMsg
	ctx    context.Context
	cancel context.CancelFunc

	// loop-owned state
	handle   feed.Handle
	proj     Projection
	pending  map[PendingKey]*pendingMutation
	seq      uint64
	version  int
	subs     map[uuid.UUID]chan Snapshot
	terminal bool
	finished bool

	sf singleflight.Group
}

// Open fetches the authoritative snapshot, subscribes to the change feed
// and starts the consumer loop. Subscription happens before the snapshot
// fetch so no event can fall into the gap between them.
//
// parent scopes the initial fetch only. The running view detaches from it:
// a view is shared across requests, so its lifetime is ended by Close (or
// the lobby's terminal transition), not by whichever caller opened it.
func Open(parent context.Context, lobbyID uint, fetcher Fetcher, hub *feed.Hub, opts Options) (*View, error) {
	opts = opts.withDefaults()
	handle, ch := hub.Subscribe(lobbyID)

	lobby, err := fetcher.GetLobby(parent, lobbyID)
	if err != nil {
		hub.Unsubscribe(handle)
		return nil, err
	}
	if lobby.Status == models.LobbyClosed {
		hub.Unsubscribe(handle)
		return nil, ErrLobbyGone
	}
	members, err := fetcher.ListMemberships(parent, lobbyID)
	if err != nil {
		hub.Unsubscribe(handle)
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	v := &View{
		lobbyID: lobbyID,
		fetcher: fetcher,
		hub:     hub,
		opts:    opts,
		inbox:   make(chan viewMsg, 64),
		ctx:     ctx,
		cancel:  cancel,
		handle:  handle,
		proj:    projectionOf(lobby, members),
		pending: make(map[PendingKey]*pendingMutation),
		subs:    make(map[uuid.UUID]chan Snapshot),
	}
	go v.pump(ch)
	go v.loop()
	return v, nil
}

func projectionOf(lobby *models.Lobby, members []models.Membership) Projection {
	proj := Projection{
		Lobby: LobbyInfo{
			ID:         lobby.ID,
			HostID:     lobby.HostID,
			GameID:     lobby.GameID,
			Title:      lobby.Title,
			Platform:   lobby.Platform,
			MaxPlayers: lobby.MaxPlayers,
			Status:     lobby.Status,
		},
	}
	for _, m := range members {
		proj.upsertMember(Member{
			MembershipID: m.ID,
			UserID:       m.UserID,
			Nickname:     m.User.Nickname,
			Role:         m.Role,
			Ready:        m.Ready,
			JoinedAt:     m.JoinedAt,
		})
	}
	return proj
}

// post delivers a message unless the view is already torn down.
func (v *View) post(m viewMsg) bool {
	select {
	case v.inbox <- m:
		return true
	case <-v.ctx.Done():
		return false
	}
}

// pump moves feed events onto the inbox. A closed feed channel means the
// hub dropped us (or we unsubscribed); the loop decides which.
func (v *View) pump(ch <-chan feed.Event) {
	for ev := range ch {
		if !v.post(rawEventMsg{ev: ev}) {
			return
		}
	}
	v.post(subLostMsg{})
}

func (v *View) LobbyID() uint { return v.lobbyID }

// Done is closed once the view stops, either by Close or by the lobby's
// terminal transition.
func (v *View) Done() <-chan struct{} { return v.ctx.Done() }

// Close tears the view down without a terminal snapshot. Pending markers
// are simply discarded; server-side effects of in-flight actions still
// complete and surface on some other view's resync.
func (v *View) Close() { v.cancel() }

// PredictJoin applies the joining member optimistically. The caller fills
// in what it knows; the authoritative MemberJoined event replaces it.
func (v *View) PredictJoin(member Member) PendingKey {
	key := PendingKey{EntityID: member.UserID, Kind: MutationJoin}
	v.post(predictJoinMsg{member: member})
	return key
}

// PredictLeave removes the member optimistically.
func (v *View) PredictLeave(membershipID, userID uint) PendingKey {
	key := PendingKey{EntityID: userID, Kind: MutationLeave}
	v.post(predictLeaveMsg{membershipID: membershipID, userID: userID})
	return key
}

// PredictReady flips the member's ready flag optimistically.
func (v *View) PredictReady(membershipID uint, ready bool) PendingKey {
	key := PendingKey{EntityID: membershipID, Kind: MutationReady}
	v.post(predictReadyMsg{membershipID: membershipID, ready: ready})
	return key
}

// ActionFailed rolls a prediction back after a transient write failure.
// The caller may retry the same logical action afterwards.
func (v *View) ActionFailed(key PendingKey) {
	v.post(actionFailedMsg{key: key})
}

// Resync forces a full authoritative re-fetch.
func (v *View) Resync() {
	v.post(resyncNowMsg{reason: "requested"})
}

// Subscribe registers a snapshot consumer. The current snapshot is sent
// immediately; the channel closes when the view ends or the consumer is
// too slow.
func (v *View) Subscribe() (uuid.UUID, <-chan Snapshot) {
	id := uuid.New()
	out := make(chan Snapshot, 8)
	if !v.post(subscribeMsg{id: id, out: out}) {
		close(out)
	}
	return id, out
}

// Unsubscribe removes a snapshot consumer.
func (v *View) Unsubscribe(id uuid.UUID) {
	v.post(unsubscribeMsg{id: id})
}

// State reflects the loop-owned projection without data races. Test hook.
func (v *View) State() (Projection, int, int) {
	reply := make(chan stateReply, 1)
	if !v.post(stateMsg{reply: reply}) {
		return Projection{}, 0, 0
	}
	select {
	case r := <-reply:
		return r.proj, r.pending, r.version
	case <-v.ctx.Done():
		return Projection{}, 0, 0
	}
}

func (v *View) loop() {
	resyncTicker := time.NewTicker(v.opts.ResyncInterval)
	defer resyncTicker.Stop()

	expireEvery := v.opts.PendingTimeout / 4
	if expireEvery < 10*time.Millisecond {
		expireEvery = 10 * time.Millisecond
	}
	expireTicker := time.NewTicker(expireEvery)
	defer expireTicker.Stop()

	for {
		select {
		case <-v.ctx.Done():
			v.finish()
			return
		case <-resyncTicker.C:
			v.startResync("interval")
		case <-expireTicker.C:
			v.expirePending(time.Now())
		case m := <-v.inbox:
			if v.dispatch(m) {
				return
			}
		}
	}
}

// dispatch handles one message; true means the view reached its terminal
// state and the loop must stop.
func (v *View) dispatch(m viewMsg) bool {
	switch msg := m.(type) {
	case rawEventMsg:
		return v.applyDomainEvent(Normalize(msg.ev))

	case subLostMsg:
		if v.terminal {
			return false
		}
		// The hub dropped us as a slow subscriber. Resubscribe and fill
		// the gap with a full resync.
		log.Warn().Str("module", "view").Uint("lobby_id", v.lobbyID).Msg("feed subscription lost, resubscribing")
		handle, ch := v.hub.Subscribe(v.lobbyID)
		v.handle = handle
		go v.pump(ch)
		v.startResync("subscription lost")

	case resyncNowMsg:
		v.startResync(msg.reason)

	case resyncResultMsg:
		if msg.err != nil {
			log.Warn().Str("module", "view").Err(msg.err).Uint("lobby_id", v.lobbyID).Msg("resync failed")
			return false
		}
		return v.applyResync(msg.lobby, msg.members)

	case predictJoinMsg:
		member := msg.member
		key := PendingKey{EntityID: member.UserID, Kind: MutationJoin}
		v.track(key, &pendingMutation{member: &member})
		v.proj.upsertMember(member)
		v.broadcast()

	case predictLeaveMsg:
		i := v.proj.memberIndex(msg.membershipID)
		if i < 0 {
			return false
		}
		removed := v.proj.Members[i]
		key := PendingKey{EntityID: msg.userID, Kind: MutationLeave}
		v.track(key, &pendingMutation{member: &removed})
		v.proj.removeMember(msg.membershipID)
		v.broadcast()

	case predictReadyMsg:
		i := v.proj.memberIndex(msg.membershipID)
		if i < 0 {
			return false
		}
		key := PendingKey{EntityID: msg.membershipID, Kind: MutationReady}
		v.track(key, &pendingMutation{
			predictedReady: msg.ready,
			priorReady:     v.proj.Members[i].Ready,
		})
		v.proj.Members[i].Ready = msg.ready
		v.broadcast()

	case actionFailedMsg:
		v.rollback(msg.key)

	case subscribeMsg:
		v.subs[msg.id] = msg.out
		msg.out <- v.snapshot()

	case unsubscribeMsg:
		if out, ok := v.subs[msg.id]; ok {
			delete(v.subs, msg.id)
			close(out)
		}

	case stateMsg:
		msg.reply <- stateReply{proj: v.proj.clone(), pending: len(v.pending), version: v.version}
	}
	return false
}

// track records a pending marker with a fresh sequence number and timeout
// deadline, replacing any older marker under the same key.
func (v *View) track(key PendingKey, pm *pendingMutation) {
	v.seq++
	pm.key = key
	pm.seq = v.seq
	pm.deadline = time.Now().Add(v.opts.PendingTimeout)
	v.pending[key] = pm
}

func (v *View) applyDomainEvent(d DomainEvent) bool {
	if v.terminal {
		return true
	}
	switch ev := d.(type) {
	case ResyncRequested:
		log.Debug().Str("module", "view").Uint("lobby_id", v.lobbyID).Str("reason", ev.Reason).Msg("event degraded to resync")
		v.startResync(ev.Reason)
		return false

	case MemberJoined:
		key := PendingKey{EntityID: ev.Member.UserID, Kind: MutationJoin}
		if pm, ok := v.pending[key]; ok {
			delete(v.pending, key)
			if pm.member != nil {
				// drop the provisional row; the authoritative one replaces it
				v.proj.removeMember(pm.member.MembershipID)
			}
		}
		v.proj.upsertMember(ev.Member)
		v.broadcast()

	case MemberLeft:
		delete(v.pending, PendingKey{EntityID: ev.UserID, Kind: MutationLeave})
		// A ready prediction for a removed member can never confirm.
		delete(v.pending, PendingKey{EntityID: ev.MembershipID, Kind: MutationReady})
		v.proj.removeMember(ev.MembershipID)
		v.broadcast()

	case MemberReadyChanged:
		key := PendingKey{EntityID: ev.Member.MembershipID, Kind: MutationReady}
		if pm, ok := v.pending[key]; ok {
			delete(v.pending, key)
			if pm.predictedReady != ev.Member.Ready {
				log.Debug().Str("module", "view").Uint("lobby_id", v.lobbyID).
					Uint("membership_id", ev.Member.MembershipID).Msg("optimistic ready corrected")
			}
		}
		// Authoritative post-state wins whether the prediction matched or
		// not; with no marker this is just a remote change.
		v.proj.upsertMember(ev.Member)
		v.broadcast()

	case LobbyStatusChanged:
		if ev.Status == models.LobbyClosed {
			v.terminate()
			return true
		}
		v.proj.Lobby.Status = ev.Status
		v.broadcast()

	case LobbyUpdated:
		if ev.Lobby.Status == models.LobbyClosed {
			v.terminate()
			return true
		}
		v.proj.Lobby = ev.Lobby
		v.broadcast()
	}
	return false
}

// rollback undoes one prediction after its write failed.
func (v *View) rollback(key PendingKey) {
	pm, ok := v.pending[key]
	if !ok {
		return
	}
	delete(v.pending, key)
	switch key.Kind {
	case MutationJoin:
		if pm.member != nil {
			v.proj.removeMember(pm.member.MembershipID)
		}
	case MutationLeave:
		if pm.member != nil {
			v.proj.upsertMember(*pm.member)
		}
	case MutationReady:
		if i := v.proj.memberIndex(key.EntityID); i >= 0 {
			v.proj.Members[i].Ready = pm.priorReady
		}
	}
	v.broadcast()
}

// expirePending times out predictions whose authoritative event never
// arrived and falls back to a full resync instead of indefinite optimism.
func (v *View) expirePending(now time.Time) {
	expired := false
	for key, pm := range v.pending {
		if pm.deadline.Before(now) {
			log.Warn().Str("module", "view").Uint("lobby_id", v.lobbyID).
				Uint("entity_id", key.EntityID).Msg("optimistic mutation timed out")
			delete(v.pending, key)
			expired = true
		}
	}
	if expired {
		v.startResync("pending timeout")
	}
}

// startResync fetches the authoritative snapshot off-loop. Overlapping
// requests collapse into one fetch.
func (v *View) startResync(reason string) {
	go func() {
		type payload struct {
			lobby   *models.Lobby
			members []models.Membership
		}
		res, err, _ := v.sf.Do("resync", func() (interface{}, error) {
			ctx, cancel := context.WithTimeout(v.ctx, v.opts.FetchTimeout)
			defer cancel()
			lobby, err := v.fetcher.GetLobby(ctx, v.lobbyID)
			if err != nil {
				return nil, err
			}
			members, err := v.fetcher.ListMemberships(ctx, v.lobbyID)
			if err != nil {
				return nil, err
			}
			return payload{lobby: lobby, members: members}, nil
		})
		if err != nil {
			v.post(resyncResultMsg{err: err})
			return
		}
		p := res.(payload)
		v.post(resyncResultMsg{lobby: p.lobby, members: p.members})
	}()
}

// applyResync replaces the projection with the authoritative snapshot and
// re-applies the still-pending predictions on top. Markers whose predicted
// state already matches the snapshot are confirmed and cleared.
func (v *View) applyResync(lobby *models.Lobby, members []models.Membership) bool {
	if v.terminal {
		return true
	}
	if lobby.Status == models.LobbyClosed {
		v.terminate()
		return true
	}
	v.proj = projectionOf(lobby, members)
	for key, pm := range v.pending {
		switch key.Kind {
		case MutationJoin:
			if v.proj.memberByUser(key.EntityID) != nil {
				delete(v.pending, key)
			} else if pm.member != nil {
				v.proj.upsertMember(*pm.member)
			}
		case MutationLeave:
			mem := v.proj.memberByUser(key.EntityID)
			if mem == nil {
				delete(v.pending, key)
			} else {
				removed := *mem
				pm.member = &removed
				v.proj.removeMember(mem.MembershipID)
			}
		case MutationReady:
			i := v.proj.memberIndex(key.EntityID)
			if i < 0 || v.proj.Members[i].Ready == pm.predictedReady {
				delete(v.pending, key)
			} else {
				v.proj.Members[i].Ready = pm.predictedReady
			}
		}
	}
	v.broadcast()
	return false
}

func (v *View) snapshot() Snapshot {
	proj := v.proj.clone()
	return Snapshot{
		Version:  v.version,
		Terminal: v.terminal,
		Lobby:    proj.Lobby,
		Members:  proj.Members,
		Pending:  len(v.pending),
	}
}

// broadcast bumps the version and fans the snapshot out. A subscriber that
// cannot keep up is dropped; its closed channel tells it to re-subscribe.
func (v *View) broadcast() {
	v.version++
	snap := v.snapshot()
	for id, out := range v.subs {
		select {
		case out <- snap:
		default:
			delete(v.subs, id)
			close(out)
		}
	}
}

// terminate handles the lobby's closed transition: pending mutations are
// discarded, not applied, and subscribers get one final terminal snapshot.
func (v *View) terminate() {
	v.terminal = true
	for key := range v.pending {
		delete(v.pending, key)
	}
	v.proj.Lobby.Status = models.LobbyClosed
	v.proj.Members = nil
	v.broadcast()
	v.finish()
	v.cancel()
}

// finish releases the feed subscription and snapshot channels exactly once.
func (v *View) finish() {
	if v.finished {
		return
	}
	v.finished = true
	v.hub.Unsubscribe(v.handle)
	for id, out := range v.subs {
		delete(v.subs, id)
		close(out)
	}
}
