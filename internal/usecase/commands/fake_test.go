//go:build unit

package commands_test

import (
	"context"
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/slot"
	"tablebook/internal/domain/tableset"
	"tablebook/internal/infra"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeUoW is an in-memory UnitOfWork. Within snapshots the whole state
// before running the unit and restores it when the unit fails, so the
// rollback semantics of the real store hold in tests.
type fakeUoW struct {
	state *fakeState
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{state: newFakeState()}
}

func (u *fakeUoW) Within(_ context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	backup := u.state.clone()
	if err := fn(context.Background(), &fakeTx{state: u.state}); err != nil {
		*u.state = *backup
		return err
	}
	return nil
}

func (u *fakeUoW) Reads() shared.CommandReads {
	return u.state
}

type requestRow struct {
	snap      shared.RequestSnapshot
	updatedAt time.Time
}

type requestEvent struct {
	RequestID uuid.UUID
	From, To  request.Status
	Note      string
}

type reservationEvent struct {
	ReservationID uuid.UUID
	Kind, Note    string
}

type fakeState struct {
	slots        map[uuid.UUID]*shared.SlotSnapshot
	holds        map[uuid.UUID]shared.HoldRecord // keyed by slot id
	holdRequests map[uuid.UUID]uuid.UUID         // slot id -> request id
	tables       []shared.TableSnapshot
	requests     map[uuid.UUID]*requestRow
	reservations map[uuid.UUID]*shared.ReservationSnapshot
	tableSets    map[uuid.UUID]*tableset.TableSet

	cancellations []shared.CancellationRecord
	refunds       []shared.RefundRecord
	reqEvents     []requestEvent
	resEvents     []reservationEvent

	settings map[uuid.UUID]*shared.BookingSettingsSnapshot
	policies map[uuid.UUID]*shared.RefundPolicySnapshot

	// failOn aborts the named repository operation, for atomicity tests.
	// failOnce entries clear after the first hit, for retry tests.
	failOn   map[string]error
	failOnce map[string]error
}

func newFakeState() *fakeState {
	return &fakeState{
		slots:        map[uuid.UUID]*shared.SlotSnapshot{},
		holds:        map[uuid.UUID]shared.HoldRecord{},
		holdRequests: map[uuid.UUID]uuid.UUID{},
		requests:     map[uuid.UUID]*requestRow{},
		reservations: map[uuid.UUID]*shared.ReservationSnapshot{},
		tableSets:    map[uuid.UUID]*tableset.TableSet{},
		settings:     map[uuid.UUID]*shared.BookingSettingsSnapshot{},
		policies:     map[uuid.UUID]*shared.RefundPolicySnapshot{},
		failOn:       map[string]error{},
		failOnce:     map[string]error{},
	}
}

func (s *fakeState) clone() *fakeState {
	c := newFakeState()
	for id, v := range s.slots {
		cp := *v
		c.slots[id] = &cp
	}
	for id, v := range s.holds {
		c.holds[id] = v
	}
	for id, v := range s.holdRequests {
		c.holdRequests[id] = v
	}
	c.tables = append([]shared.TableSnapshot(nil), s.tables...)
	for id, v := range s.requests {
		cp := *v
		c.requests[id] = &cp
	}
	for id, v := range s.reservations {
		cp := *v
		c.reservations[id] = &cp
	}
	for id, v := range s.tableSets {
		c.tableSets[id] = cloneTableSet(v)
	}
	c.cancellations = append([]shared.CancellationRecord(nil), s.cancellations...)
	c.refunds = append([]shared.RefundRecord(nil), s.refunds...)
	c.reqEvents = append([]requestEvent(nil), s.reqEvents...)
	c.resEvents = append([]reservationEvent(nil), s.resEvents...)
	for id, v := range s.settings {
		cp := *v
		c.settings[id] = &cp
	}
	for id, v := range s.policies {
		cp := *v
		c.policies[id] = &cp
	}
	c.failOn = s.failOn
	c.failOnce = s.failOnce
	return c
}

func cloneTableSet(ts *tableset.TableSet) *tableset.TableSet {
	return tableset.ReconstructTableSet(
		ts.ID(),
		ts.ReservationID(),
		ts.PrimaryTableID(),
		ts.CombinedCapacity(),
		append([]tableset.Member(nil), ts.Members()...),
		ts.Status(),
		ts.ExpiresAt(),
		ts.DissolvedAt(),
		ts.DissolvedBy(),
	)
}

func (s *fakeState) fail(op string) error {
	if err, ok := s.failOnce[op]; ok {
		delete(s.failOnce, op)
		return err
	}
	return s.failOn[op]
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ---- shared.CommandReads ----

func (s *fakeState) SlotByID(_ context.Context, id uuid.UUID) (*shared.SlotSnapshot, error) {
	row, ok := s.slots[id]
	if !ok {
		return nil, notFound("slot not found")
	}
	cp := *row
	return &cp, nil
}

func (s *fakeState) SlotByIDForUpdate(ctx context.Context, id uuid.UUID) (*shared.SlotSnapshot, error) {
	return s.SlotByID(ctx, id)
}

func (s *fakeState) AvailableSlotForTableAt(_ context.Context, tableID uuid.UUID, date, start time.Time) (*shared.SlotSnapshot, error) {
	for _, row := range s.slots {
		if row.TableID == tableID && sameDay(row.Date, date) && row.Start.Equal(start) && row.Status == slot.StatusAvailable {
			cp := *row
			return &cp, nil
		}
	}
	return nil, notFound("available slot not found")
}

func (s *fakeState) CandidateTables(_ context.Context, restaurantID uuid.UUID, sectionID *uuid.UUID) ([]shared.TableSnapshot, error) {
	var out []shared.TableSnapshot
	for _, t := range s.tables {
		if t.RestaurantID != restaurantID || !t.IsActive {
			continue
		}
		if sectionID != nil && (t.SectionID == nil || *t.SectionID != *sectionID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeState) Occupancies(_ context.Context, tableID uuid.UUID, date time.Time) ([]shared.Occupancy, error) {
	var out []shared.Occupancy
	for _, row := range s.slots {
		if row.TableID != tableID || !sameDay(row.Date, date) {
			continue
		}
		if !row.Status.Occupying() {
			continue
		}
		out = append(out, shared.Occupancy{
			SlotID:        row.ID,
			Status:        row.Status,
			Start:         row.Start,
			End:           row.End,
			HoldExpiresAt: row.HoldExpiresAt,
			ReservationID: row.ReservationID,
		})
	}
	return out, nil
}

func (s *fakeState) HoldBySlotID(_ context.Context, slotID uuid.UUID) (*shared.HoldSnapshot, error) {
	rec, ok := s.holds[slotID]
	if !ok {
		return nil, notFound("hold not found")
	}
	snap := shared.HoldSnapshot{ID: rec.ID, SlotID: rec.SlotID, ExpiresAt: rec.ExpiresAt}
	if reqID, ok := s.holdRequests[slotID]; ok {
		snap.RequestID = &reqID
	}
	return &snap, nil
}

func (s *fakeState) RequestByID(_ context.Context, id uuid.UUID) (*shared.RequestSnapshot, error) {
	row, ok := s.requests[id]
	if !ok {
		return nil, notFound("request not found")
	}
	cp := row.snap
	return &cp, nil
}

func (s *fakeState) ReservationByID(_ context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	row, ok := s.reservations[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	cp := *row
	return &cp, nil
}

func (s *fakeState) ReservationByIDForUpdate(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	return s.ReservationByID(ctx, id)
}

func (s *fakeState) ActiveTableSetByReservation(_ context.Context, reservationID uuid.UUID) (*tableset.TableSet, error) {
	for _, ts := range s.tableSets {
		if ts.Status() == tableset.StatusActive && ts.ReservationID() != nil && *ts.ReservationID() == reservationID {
			return cloneTableSet(ts), nil
		}
	}
	return nil, notFound("active table set not found")
}

func (s *fakeState) PendingTableSetBySlot(_ context.Context, slotID uuid.UUID) (*tableset.TableSet, error) {
	for _, ts := range s.tableSets {
		if ts.Status() != tableset.StatusPendingMerge {
			continue
		}
		for _, m := range ts.Members() {
			if m.SlotID == slotID {
				return cloneTableSet(ts), nil
			}
		}
	}
	return nil, nil
}

func (s *fakeState) PendingCancellationExists(_ context.Context, reservationID uuid.UUID) (bool, error) {
	for _, c := range s.cancellations {
		if c.ReservationID == reservationID && c.Status == shared.CancellationApprovedPendingRefund {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeState) ActiveRefundPolicy(_ context.Context, restaurantID uuid.UUID) (*shared.RefundPolicySnapshot, error) {
	p, ok := s.policies[restaurantID]
	if !ok {
		return nil, notFound("no active refund policy")
	}
	cp := *p
	return &cp, nil
}

func (s *fakeState) BookingSettings(_ context.Context, restaurantID uuid.UUID) (*shared.BookingSettingsSnapshot, error) {
	b, ok := s.settings[restaurantID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// ---- shared.Tx ----

type fakeTx struct {
	state *fakeState
}

func (t *fakeTx) Slots() shared.SlotRepository                 { return (*fakeSlotRepo)(t) }
func (t *fakeTx) Holds() shared.HoldRepository                 { return (*fakeHoldRepo)(t) }
func (t *fakeTx) Requests() shared.RequestRepository           { return (*fakeRequestRepo)(t) }
func (t *fakeTx) Reservations() shared.ReservationRepository   { return (*fakeReservationRepo)(t) }
func (t *fakeTx) TableSets() shared.TableSetRepository         { return (*fakeTableSetRepo)(t) }
func (t *fakeTx) Cancellations() shared.CancellationRepository { return (*fakeCancellationRepo)(t) }
func (t *fakeTx) Reads() shared.CommandReads                   { return t.state }

type fakeSlotRepo fakeTx

func (r *fakeSlotRepo) InsertBatch(_ context.Context, slots []*slot.Slot) (int64, error) {
	if err := r.state.fail("slots.InsertBatch"); err != nil {
		return 0, err
	}
	var inserted int64
	for _, sl := range slots {
		exists := false
		for _, row := range r.state.slots {
			if row.TableID == sl.TableID() && sameDay(row.Date, sl.Date()) && row.Start.Equal(sl.Window().Start()) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.state.slots[sl.ID()] = &shared.SlotSnapshot{
			ID:           sl.ID(),
			RestaurantID: sl.RestaurantID(),
			TableID:      sl.TableID(),
			Date:         sl.Date(),
			Start:        sl.Window().Start(),
			End:          sl.Window().End(),
			Status:       sl.Status(),
		}
		inserted++
	}
	return inserted, nil
}

func (r *fakeSlotRepo) Hold(_ context.Context, slotID uuid.UUID, expiresAt time.Time) (bool, error) {
	if err := r.state.fail("slots.Hold"); err != nil {
		return false, err
	}
	row, ok := r.state.slots[slotID]
	if !ok || row.Status != slot.StatusAvailable {
		return false, nil
	}
	row.Status = slot.StatusHeld
	exp := expiresAt
	row.HoldExpiresAt = &exp
	return true, nil
}

func (r *fakeSlotRepo) HoldMany(ctx context.Context, slotIDs []uuid.UUID, expiresAt time.Time) (int64, error) {
	if err := r.state.fail("slots.HoldMany"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range slotIDs {
		ok, _ := r.Hold(ctx, id, expiresAt)
		if ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeSlotRepo) ConfirmHeld(_ context.Context, slotID, reservationID uuid.UUID, now time.Time) (bool, error) {
	if err := r.state.fail("slots.ConfirmHeld"); err != nil {
		return false, err
	}
	row, ok := r.state.slots[slotID]
	if !ok || row.Status != slot.StatusHeld || row.HoldExpiresAt == nil || !row.HoldExpiresAt.After(now) {
		return false, nil
	}
	row.Status = slot.StatusReserved
	row.HoldExpiresAt = nil
	resID := reservationID
	row.ReservationID = &resID
	return true, nil
}

func (r *fakeSlotRepo) ConfirmHeldMany(ctx context.Context, slotIDs []uuid.UUID, reservationID uuid.UUID, now time.Time) (int64, error) {
	if err := r.state.fail("slots.ConfirmHeldMany"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range slotIDs {
		ok, _ := r.ConfirmHeld(ctx, id, reservationID, now)
		if ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeSlotRepo) ReserveAvailable(_ context.Context, slotID, reservationID uuid.UUID) (bool, error) {
	if err := r.state.fail("slots.ReserveAvailable"); err != nil {
		return false, err
	}
	row, ok := r.state.slots[slotID]
	if !ok || row.Status != slot.StatusAvailable {
		return false, nil
	}
	row.Status = slot.StatusReserved
	resID := reservationID
	row.ReservationID = &resID
	return true, nil
}

func (r *fakeSlotRepo) Release(_ context.Context, slotID uuid.UUID) error {
	if err := r.state.fail("slots.Release"); err != nil {
		return err
	}
	if row, ok := r.state.slots[slotID]; ok {
		row.Status = slot.StatusAvailable
		row.HoldExpiresAt = nil
		row.ReservationID = nil
	}
	return nil
}

func (r *fakeSlotRepo) ReleaseReserved(_ context.Context, slotID, reservationID uuid.UUID) (bool, error) {
	if err := r.state.fail("slots.ReleaseReserved"); err != nil {
		return false, err
	}
	row, ok := r.state.slots[slotID]
	if !ok || row.Status != slot.StatusReserved || row.ReservationID == nil || *row.ReservationID != reservationID {
		return false, nil
	}
	row.Status = slot.StatusAvailable
	row.ReservationID = nil
	return true, nil
}

func (r *fakeSlotRepo) ReleaseReservedMany(ctx context.Context, slotIDs []uuid.UUID, reservationID uuid.UUID) (int64, error) {
	if err := r.state.fail("slots.ReleaseReservedMany"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range slotIDs {
		ok, _ := r.ReleaseReserved(ctx, id, reservationID)
		if ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeSlotRepo) ExpireHolds(_ context.Context, now time.Time) (int64, error) {
	if err := r.state.fail("slots.ExpireHolds"); err != nil {
		return 0, err
	}
	var n int64
	for _, row := range r.state.slots {
		if row.Status != slot.StatusHeld {
			continue
		}
		if row.HoldExpiresAt == nil || !row.HoldExpiresAt.After(now) {
			row.Status = slot.StatusAvailable
			row.HoldExpiresAt = nil
			n++
		}
	}
	return n, nil
}

func (r *fakeSlotRepo) DeletePastUnused(_ context.Context, before time.Time) (int64, error) {
	if err := r.state.fail("slots.DeletePastUnused"); err != nil {
		return 0, err
	}
	var n int64
	for id, row := range r.state.slots {
		if !row.End.Before(before) || row.ReservationID != nil {
			continue
		}
		switch row.Status {
		case slot.StatusAvailable, slot.StatusBlocked, slot.StatusMaintenance:
		default:
			continue
		}
		if _, held := r.state.holds[id]; held {
			continue
		}
		delete(r.state.slots, id)
		n++
	}
	return n, nil
}

type fakeHoldRepo fakeTx

func (r *fakeHoldRepo) Create(_ context.Context, rec shared.HoldRecord) error {
	if err := r.state.fail("holds.Create"); err != nil {
		return err
	}
	r.state.holds[rec.SlotID] = rec
	return nil
}

func (r *fakeHoldRepo) AttachRequest(_ context.Context, slotID, requestID uuid.UUID) error {
	if err := r.state.fail("holds.AttachRequest"); err != nil {
		return err
	}
	if _, ok := r.state.holds[slotID]; !ok {
		return notFound("hold not found")
	}
	r.state.holdRequests[slotID] = requestID
	return nil
}

func (r *fakeHoldRepo) DeleteBySlot(_ context.Context, slotID uuid.UUID) (int64, error) {
	if err := r.state.fail("holds.DeleteBySlot"); err != nil {
		return 0, err
	}
	if _, ok := r.state.holds[slotID]; !ok {
		return 0, nil
	}
	delete(r.state.holds, slotID)
	delete(r.state.holdRequests, slotID)
	return 1, nil
}

func (r *fakeHoldRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if err := r.state.fail("holds.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for slotID, rec := range r.state.holds {
		if !rec.ExpiresAt.After(now) {
			delete(r.state.holds, slotID)
			delete(r.state.holdRequests, slotID)
			n++
		}
	}
	return n, nil
}

type fakeRequestRepo fakeTx

func (r *fakeRequestRepo) Create(_ context.Context, req *request.Request) error {
	if err := r.state.fail("requests.Create"); err != nil {
		return err
	}
	r.state.requests[req.ID()] = &requestRow{
		snap: shared.RequestSnapshot{
			ID:            req.ID(),
			RestaurantID:  req.RestaurantID(),
			CustomerID:    req.CustomerID(),
			HeldSlotID:    req.HeldSlotID(),
			RequestedDate: req.RequestedDate(),
			RequestedTime: req.RequestedTime(),
			Adults:        req.Party().Adults(),
			Children:      req.Party().Children(),
			MealType:      req.MealType(),
			EstimateCents: req.EstimateCents(),
			Status:        req.Status(),
		},
	}
	return nil
}

func (r *fakeRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to request.Status) (bool, error) {
	if err := r.state.fail("requests.UpdateStatus"); err != nil {
		return false, err
	}
	row, ok := r.state.requests[id]
	if !ok || row.snap.Status != from {
		return false, nil
	}
	row.snap.Status = to
	return true, nil
}

func (r *fakeRequestRepo) AppendEvent(_ context.Context, requestID uuid.UUID, from, to request.Status, note string) error {
	if err := r.state.fail("requests.AppendEvent"); err != nil {
		return err
	}
	r.state.reqEvents = append(r.state.reqEvents, requestEvent{RequestID: requestID, From: from, To: to, Note: note})
	return nil
}

func (r *fakeRequestRepo) ExpireStalePaymentLinks(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	if err := r.state.fail("requests.ExpireStalePaymentLinks"); err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for id, row := range r.state.requests {
		if row.snap.Status == request.StatusPendingCustomerPayment && !row.updatedAt.After(cutoff) {
			row.snap.Status = request.StatusPaymentLinkExpired
			// The SQL bumps updated_at, so a fresh expiry outlives this sweep.
			row.updatedAt = cutoff.Add(time.Second)
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) DeleteStale(_ context.Context, cutoff time.Time) (int64, error) {
	if err := r.state.fail("requests.DeleteStale"); err != nil {
		return 0, err
	}
	var n int64
	for id, row := range r.state.requests {
		switch row.snap.Status {
		case request.StatusPaymentLinkExpired, request.StatusPaymentFailed, request.StatusCancelled:
		default:
			continue
		}
		if row.updatedAt.After(cutoff) {
			continue
		}
		referenced := false
		for _, res := range r.state.reservations {
			if res.RequestID == id {
				referenced = true
				break
			}
		}
		if referenced {
			continue
		}
		delete(r.state.requests, id)
		n++
	}
	return n, nil
}

type fakeReservationRepo fakeTx

func (r *fakeReservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	if err := r.state.fail("reservations.Create"); err != nil {
		return err
	}
	for _, existing := range r.state.reservations {
		if existing.Number == res.Number() {
			return infra.WrapRepoErr("duplicate reservation number", nil, infra.KindDuplicateKey)
		}
	}
	a := res.Assignment()
	fin := res.Financials()
	r.state.reservations[res.ID()] = &shared.ReservationSnapshot{
		ID:               res.ID(),
		Number:           res.Number(),
		RequestID:        res.RequestID(),
		CustomerID:       res.CustomerID(),
		RestaurantID:     res.RestaurantID(),
		Status:           res.Status(),
		PartySize:        res.PartySize(),
		TotalCents:       fin.Total().Cents(),
		AdvancePaidCents: fin.AdvancePaid().Cents(),
		TableID:          a.TableID,
		SectionID:        a.SectionID,
		SlotID:           a.SlotID,
		Start:            a.Window.Start(),
		End:              a.Window.End(),
		TableSetID:       res.TableSetID(),
	}
	return nil
}

func (r *fakeReservationRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to reservation.Status) (bool, error) {
	if err := r.state.fail("reservations.UpdateStatus"); err != nil {
		return false, err
	}
	row, ok := r.state.reservations[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	return true, nil
}

func (r *fakeReservationRepo) UpdateAssignment(_ context.Context, id uuid.UUID, a reservation.Assignment) error {
	if err := r.state.fail("reservations.UpdateAssignment"); err != nil {
		return err
	}
	row, ok := r.state.reservations[id]
	if !ok {
		return notFound("reservation not found")
	}
	row.TableID = a.TableID
	row.SectionID = a.SectionID
	row.SlotID = a.SlotID
	row.Start = a.Window.Start()
	row.End = a.Window.End()
	return nil
}

func (r *fakeReservationRepo) UpdatePartySize(_ context.Context, id uuid.UUID, partySize int) (bool, error) {
	if err := r.state.fail("reservations.UpdatePartySize"); err != nil {
		return false, err
	}
	row, ok := r.state.reservations[id]
	if !ok || row.Status != reservation.StatusConfirmed {
		return false, nil
	}
	row.PartySize = partySize
	return true, nil
}

func (r *fakeReservationRepo) AppendEvent(_ context.Context, reservationID uuid.UUID, kind, note string) error {
	if err := r.state.fail("reservations.AppendEvent"); err != nil {
		return err
	}
	r.state.resEvents = append(r.state.resEvents, reservationEvent{ReservationID: reservationID, Kind: kind, Note: note})
	return nil
}

type fakeTableSetRepo fakeTx

func (r *fakeTableSetRepo) Create(_ context.Context, ts *tableset.TableSet) error {
	if err := r.state.fail("tablesets.Create"); err != nil {
		return err
	}
	r.state.tableSets[ts.ID()] = cloneTableSet(ts)
	return nil
}

func (r *fakeTableSetRepo) Activate(_ context.Context, id, reservationID uuid.UUID) (bool, error) {
	if err := r.state.fail("tablesets.Activate"); err != nil {
		return false, err
	}
	ts, ok := r.state.tableSets[id]
	if !ok {
		return false, nil
	}
	if err := ts.Activate(reservationID); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeTableSetRepo) Dissolve(_ context.Context, id, dissolvedBy uuid.UUID, at time.Time) (bool, error) {
	if err := r.state.fail("tablesets.Dissolve"); err != nil {
		return false, err
	}
	ts, ok := r.state.tableSets[id]
	if !ok {
		return false, nil
	}
	if err := ts.Dissolve(dissolvedBy, at); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeTableSetRepo) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	if err := r.state.fail("tablesets.ExpirePending"); err != nil {
		return 0, err
	}
	var n int64
	for _, ts := range r.state.tableSets {
		if ts.ExpireIfStale(now) {
			n++
		}
	}
	return n, nil
}

type fakeCancellationRepo fakeTx

func (r *fakeCancellationRepo) CreateRequest(_ context.Context, rec shared.CancellationRecord) error {
	if err := r.state.fail("cancellations.CreateRequest"); err != nil {
		return err
	}
	r.state.cancellations = append(r.state.cancellations, rec)
	return nil
}

func (r *fakeCancellationRepo) CreateRefund(_ context.Context, rec shared.RefundRecord) error {
	if err := r.state.fail("cancellations.CreateRefund"); err != nil {
		return err
	}
	r.state.refunds = append(r.state.refunds, rec)
	return nil
}

// ---- nil-safe test cache ----

type noopCache struct{}

func (noopCache) Invalidate(context.Context, uuid.UUID, time.Time) error { return nil }
