// README: Lifecycle service: enforces the transition table and actor rules,
// persists transitions under the optimistic guard, releases drivers on
// terminal entry.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ridedispatch/internal/types"
)

var (
	ErrNotFound          = errors.New("service record not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrConflict          = errors.New("service record state conflict")
	ErrReasonRequired    = errors.New("cancellation reason required")
)

// ErrForbiddenActor is a wrong-actor attempt; it is a flavor of
// ErrInvalidTransition so callers can match either.
var ErrForbiddenActor = fmt.Errorf("%w: actor may not perform it", ErrInvalidTransition)

// TransitionError carries the offending from/to pair; it matches
// ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// DriverReleaser returns a reserved driver to the available pool. Release is
// idempotent on the driver side; the lifecycle still calls it exactly once
// per record, paired with the single successful terminal transition.
type DriverReleaser interface {
	Release(ctx context.Context, id types.ID) error
}

type Service struct {
	store   Store
	drivers DriverReleaser
	log     *logrus.Logger
}

func NewService(store Store, drivers DriverReleaser, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, drivers: drivers, log: log}
}

type CreateAssignedCommand struct {
	RequesterID types.ID
	DriverID    types.ID
	Pickup      types.Point
	DistanceKm  float64
	ETAMinutes  int
}

// CreateAssigned persists a new record directly in ASSIGNED: the REQUESTED
// state is transient because assignment is synchronous with creation. The
// driver is already held RESERVED by the caller.
func (s *Service) CreateAssigned(ctx context.Context, cmd CreateAssignedCommand) (*Record, error) {
	r := &Record{
		ID:          types.NewID(),
		RequesterID: cmd.RequesterID,
		DriverID:    cmd.DriverID,
		Pickup:      cmd.Pickup,
		Status:      StatusAssigned,
		DistanceKm:  cmd.DistanceKm,
		ETAMinutes:  cmd.ETAMinutes,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, r.ID, StatusRequested, StatusAssigned, Actor{ID: cmd.RequesterID, Role: RoleClient}, nil)
	return r, nil
}

type StartCommand struct {
	RecordID types.ID
	Actor    Actor
}

// Start moves ASSIGNED → IN_PROGRESS; assigned driver (or admin) only.
func (s *Service) Start(ctx context.Context, cmd StartCommand) (*Record, error) {
	return s.transition(ctx, cmd.RecordID, StatusInProgress, cmd.Actor, nil, driverOnly)
}

type CompleteCommand struct {
	RecordID types.ID
	Actor    Actor
}

// Complete moves IN_PROGRESS → COMPLETED and releases the driver.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*Record, error) {
	return s.transition(ctx, cmd.RecordID, StatusCompleted, cmd.Actor, nil, driverOnly)
}

type CancelCommand struct {
	RecordID types.ID
	Actor    Actor
	Reason   string
}

// Cancel moves ASSIGNED or IN_PROGRESS → CANCELLED and releases the driver.
// Either party may cancel; a non-empty reason is mandatory.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Record, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.transition(ctx, cmd.RecordID, StatusCancelled, cmd.Actor, &reason, eitherParty)
}

// actorRule decides whether a non-admin actor may trigger the transition.
type actorRule func(r *Record, a Actor) bool

func driverOnly(r *Record, a Actor) bool {
	return a.Role == RoleDriver && a.ID == r.DriverID
}

// eitherParty is the permissive-OR cancel rule: the requester or the
// assigned driver.
func eitherParty(r *Record, a Actor) bool {
	if a.Role == RoleClient && a.ID == r.RequesterID {
		return true
	}
	return a.Role == RoleDriver && a.ID == r.DriverID
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, actor Actor, reason *string, allowed actorRule) (*Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, to) {
		return nil, &TransitionError{From: r.Status, To: to}
	}
	if actor.Role != RoleAdmin && !allowed(r, actor) {
		return nil, ErrForbiddenActor
	}

	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, to, r.StatusVersion, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	s.appendEvent(ctx, r.ID, r.Status, to, actor, reason)

	// Winning the conditional update means this call, and only this call,
	// carried the record into `to`, so release pairs 1:1 with terminal entry.
	if to.Terminal() {
		if err := s.drivers.Release(ctx, r.DriverID); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"record_id": r.ID,
				"driver_id": r.DriverID,
			}).Error("failed to release driver after terminal transition")
		}
	}

	return s.store.Get(ctx, r.ID)
}

// Get enforces visibility: the requester, the assigned driver, and admins.
func (s *Service) Get(ctx context.Context, actor Actor, id types.ID) (*Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleAdmin && r.RequesterID != actor.ID && r.DriverID != actor.ID {
		return nil, ErrForbiddenActor
	}
	return r, nil
}

// List filters by role: clients see their own records, drivers their
// assignments, admins everything.
func (s *Service) List(ctx context.Context, actor Actor) ([]Record, error) {
	switch actor.Role {
	case RoleAdmin:
		return s.store.ListAll(ctx)
	case RoleDriver:
		return s.store.ListByDriver(ctx, actor.ID)
	default:
		return s.store.ListByRequester(ctx, actor.ID)
	}
}

func (s *Service) appendEvent(ctx context.Context, id types.ID, from, to Status, actor Actor, reason *string) {
	actorID := actor.ID
	e := &Event{
		RecordID:   id,
		FromStatus: from,
		ToStatus:   to,
		ActorRole:  actor.Role,
		ActorID:    &actorID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err := s.store.AppendEvent(ctx, e); err != nil {
		s.log.WithError(err).WithField("record_id", id).Warn("failed to append state event")
	}
}
