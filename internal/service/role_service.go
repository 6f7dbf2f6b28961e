package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
)

// Nombres de los pasos del journal
const (
	stepUpdateUser    = "update_user"
	stepDeleteRequest = "delete_request"
	stepCompensate    = "compensate"
)

// RoleSessions actualiza el rol de las sesiones vivas de un usuario.
type RoleSessions interface {
	UpdateRole(email string, role model.Role) int
}

type RoleService struct {
	requests RoleRequestStore
	users    UserStore
	sagas    SagaRepository
	keys     IdempotencyRepository
	sessions RoleSessions
	cache    *cache.Cache
	inv      *Invalidator

	lease time.Duration
	now   func() time.Time
}

// DefaultSagaLease es cuánto tiempo se deja en paz una saga started antes de
// darla por abandonada.
const DefaultSagaLease = 2 * time.Minute

func NewRoleService(requests RoleRequestStore, users UserStore, sagas SagaRepository, keys IdempotencyRepository, sessions RoleSessions, c *cache.Cache, inv *Invalidator) *RoleService {
	return &RoleService{
		requests: requests,
		users:    users,
		sagas:    sagas,
		keys:     keys,
		sessions: sessions,
		cache:    c,
		inv:      inv,
		lease:    DefaultSagaLease,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetRecoveryLease cambia el lease de las sagas started. Debe superar lo que
// puede durar un approve/reject en curso.
func (s *RoleService) SetRecoveryLease(d time.Duration) {
	if d > 0 {
		s.lease = d
	}
}

func userRequestsKey(email string) string { return cache.Key(keyRoleRequests, "user", email) }

// Request envía una solicitud de rol chef/admin. Bloqueada para usuarios fraud
// y cuando ya hay una del mismo tipo pendiente.
func (s *RoleService) Request(ctx context.Context, caller Caller, roleType model.Role, idemKey string) (*model.RoleChangeRequest, error) {
	u, err := loadUser(ctx, s.users, s.cache, caller.Email)
	if err != nil {
		return nil, err
	}
	// el chequeo de pendientes siempre contra el store
	pending, err := s.requests.ListRoleRequestsByUser(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanRequestRole(*u, pending, roleType); err != nil {
		return nil, err
	}

	name := u.DisplayName
	if name == "" {
		name = caller.Name
	}
	req := model.RoleChangeRequest{
		UserEmail:     caller.Email,
		UserName:      name,
		RequestType:   roleType,
		RequestStatus: model.RequestPending,
		RequestTime:   time.Now().UTC(),
	}
	id, replayed, err := once(ctx, s.keys, idemKey, "role_request", caller.Email, func() (string, error) {
		res, err := s.requests.CreateRoleRequest(ctx, req)
		return res.InsertedID, err
	})
	if err != nil {
		return nil, err
	}
	req.ID = id
	if !replayed {
		log.Info().Str("request_id", id).Str("user", caller.Email).Str("type", string(roleType)).Msg("role: request sent")
		s.inv.Invalidate(ctx, keyRoleRequests)
	}
	return &req, nil
}

func (s *RoleService) ListMine(ctx context.Context, caller Caller) ([]model.RoleChangeRequest, error) {
	return fetch(ctx, s.cache, userRequestsKey(caller.Email), func(ctx context.Context) ([]model.RoleChangeRequest, error) {
		return s.requests.ListRoleRequestsByUser(ctx, caller.Email)
	})
}

func (s *RoleService) ListAll(ctx context.Context) ([]model.RoleChangeRequest, error) {
	return fetch(ctx, s.cache, cache.Key(keyRoleRequests, "all"), func(ctx context.Context) ([]model.RoleChangeRequest, error) {
		return s.requests.ListRoleRequests(ctx)
	})
}

func (s *RoleService) ListSagas(ctx context.Context, limit int64) ([]*model.RoleSaga, error) {
	return s.sagas.FindAll(ctx, limit)
}

// Approve le da al usuario el rol pedido y borra la solicitud.
func (s *RoleService) Approve(ctx context.Context, caller Caller, requestID string) (*model.RoleSaga, error) {
	req, u, err := s.decisionTarget(ctx, requestID)
	if err != nil {
		return nil, err
	}
	saga := &model.RoleSaga{
		ID:             uuid.NewString(),
		Kind:           model.SagaApprove,
		RequestID:      req.ID,
		UserEmail:      req.UserEmail,
		RequestType:    req.RequestType,
		PreviousRole:   u.Role,
		PreviousStatus: u.UserStatus,
		ActorEmail:     caller.Email,
		State:          model.SagaStarted,
	}
	if err := s.run(ctx, saga); err != nil {
		return saga, err
	}
	if s.sessions != nil {
		s.sessions.UpdateRole(req.UserEmail, req.RequestType)
	}
	return saga, nil
}

// Reject marca al usuario como rejected y borra la solicitud.
func (s *RoleService) Reject(ctx context.Context, caller Caller, requestID string) (*model.RoleSaga, error) {
	req, u, err := s.decisionTarget(ctx, requestID)
	if err != nil {
		return nil, err
	}
	saga := &model.RoleSaga{
		ID:             uuid.NewString(),
		Kind:           model.SagaReject,
		RequestID:      req.ID,
		UserEmail:      req.UserEmail,
		RequestType:    req.RequestType,
		PreviousRole:   u.Role,
		PreviousStatus: u.UserStatus,
		ActorEmail:     caller.Email,
		State:          model.SagaStarted,
	}
	return saga, s.run(ctx, saga)
}

func (s *RoleService) decisionTarget(ctx context.Context, requestID string) (*model.RoleChangeRequest, *model.User, error) {
	all, err := s.requests.ListRoleRequests(ctx)
	if err != nil {
		return nil, nil, err
	}
	var req *model.RoleChangeRequest
	for i := range all {
		if all[i].ID == requestID {
			req = &all[i]
			break
		}
	}
	if req == nil {
		return nil, nil, ErrRequestNotFound
	}
	if err := lifecycle.CanDecide(*req); err != nil {
		return nil, nil, err
	}
	u, err := s.users.GetUser(ctx, req.UserEmail)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrUserNotFound)
	}
	return req, u, nil
}

// apply es la primera escritura de la saga (PATCH del usuario).
func (s *RoleService) apply(ctx context.Context, saga *model.RoleSaga) error {
	patch := remote.UserPatch{}
	switch saga.Kind {
	case model.SagaApprove:
		role := saga.RequestType
		patch.RequestType = &role
	case model.SagaReject:
		status := model.UserRejected
		patch.UserStatus = &status
	default:
		return fmt.Errorf("role: unknown saga kind %q", saga.Kind)
	}
	_, err := s.users.UpdateUser(ctx, saga.UserEmail, patch)
	return err
}

// undo restaura el rol o el estado previo del usuario.
func (s *RoleService) undo(ctx context.Context, saga *model.RoleSaga) error {
	patch := remote.UserPatch{}
	switch saga.Kind {
	case model.SagaApprove:
		role := saga.PreviousRole
		if role == "" {
			role = model.RoleUser
		}
		patch.RequestType = &role
	case model.SagaReject:
		status := saga.PreviousStatus
		if status == "" {
			status = model.UserActive
		}
		patch.UserStatus = &status
	}
	_, err := s.users.UpdateUser(ctx, saga.UserEmail, patch)
	return err
}

func (s *RoleService) deleteRequest(ctx context.Context, saga *model.RoleSaga) error {
	_, err := s.requests.DeleteRoleRequest(ctx, saga.RequestID)
	if errors.Is(err, remote.ErrNotFound) {
		return nil
	}
	return err
}

// run ejecuta la saga: escritura 1, escritura 2, y si la 2 falla la compensación
// de la 1. Cada paso queda en el journal.
func (s *RoleService) run(ctx context.Context, saga *model.RoleSaga) error {
	if err := s.sagas.Create(ctx, saga); err != nil {
		return fmt.Errorf("role: journal saga: %w", err)
	}
	logger := log.With().Str("saga_id", saga.ID).Str("kind", string(saga.Kind)).Str("request_id", saga.RequestID).Str("user", saga.UserEmail).Logger()

	if err := s.apply(ctx, saga); err != nil {
		s.record(ctx, saga, stepUpdateUser, err)
		// nada que compensar
		s.finish(ctx, saga, model.SagaFailed)
		logger.Warn().Err(err).Msg("role: decision failed at first write")
		return err
	}
	s.record(ctx, saga, stepUpdateUser, nil)

	if err := s.deleteRequest(ctx, saga); err != nil {
		s.record(ctx, saga, stepDeleteRequest, err)
		logger.Warn().Err(err).Msg("role: delete failed, compensating")

		if uerr := s.undo(context.WithoutCancel(ctx), saga); uerr != nil {
			s.record(ctx, saga, stepCompensate, uerr)
			s.finish(ctx, saga, model.SagaNeedsRecovery)
			logger.Error().Err(uerr).Msg("role: compensation failed, saga needs recovery")
			s.inv.Invalidate(ctx, keyUsers, keyRoleRequests)
			return fmt.Errorf("%w: %v", ErrDecisionIncomplete, err)
		}
		s.record(ctx, saga, stepCompensate, nil)
		s.finish(ctx, saga, model.SagaCompensated)
		s.inv.Invalidate(ctx, keyUsers, keyRoleRequests)
		return fmt.Errorf("%w: %v", ErrDecisionRolledBack, err)
	}
	s.record(ctx, saga, stepDeleteRequest, nil)
	s.finish(ctx, saga, model.SagaCompleted)

	logger.Info().Str("by", saga.ActorEmail).Msg("role: decision applied")
	s.inv.Invalidate(ctx, keyUsers, keyRoleRequests, keyStats)
	return nil
}

func (s *RoleService) record(ctx context.Context, saga *model.RoleSaga, name string, stepErr error) {
	step := model.SagaStep{Name: name, OK: stepErr == nil, Timestamp: time.Now().UTC()}
	if stepErr != nil {
		step.Error = stepErr.Error()
	}
	saga.Steps = append(saga.Steps, step)
	if err := s.sagas.AppendStep(context.WithoutCancel(ctx), saga.ID, step); err != nil {
		log.Error().Err(err).Str("saga_id", saga.ID).Str("step", name).Msg("role: failed to journal step")
	}
}

func (s *RoleService) finish(ctx context.Context, saga *model.RoleSaga, state model.SagaState) {
	saga.State = state
	if err := s.sagas.SetState(context.WithoutCancel(ctx), saga.ID, state); err != nil {
		log.Error().Err(err).Str("saga_id", saga.ID).Str("state", string(state)).Msg("role: failed to journal state")
	}
}

// Recover completa hacia adelante las sagas que quedaron a medias (proceso
// caído o compensación fallida): reaplica la escritura 1 y borra la solicitud.
// Una saga started o recovering solo se toca pasado el lease, y cada saga se reclama antes
// de actuar, así no pisa un approve/reject que sigue corriendo ni otra
// recuperación. Devuelve cuántas quedaron completas.
func (s *RoleService) Recover(ctx context.Context) (int, error) {
	pending, err := s.sagas.FindByState(ctx, model.SagaStarted, model.SagaNeedsRecovery, model.SagaRecovering)
	if err != nil {
		return 0, fmt.Errorf("role: load sagas: %w", err)
	}

	now := s.now()
	done := 0
	for _, saga := range pending {
		logger := log.With().Str("saga_id", saga.ID).Str("kind", string(saga.Kind)).Str("state", string(saga.State)).Logger()

		notAfter := now
		// recovering: una recuperación anterior se cayó a mitad
		if saga.State == model.SagaStarted || saga.State == model.SagaRecovering {
			notAfter = now.Add(-s.lease)
			if saga.UpdatedAt.After(notAfter) {
				logger.Debug().Msg("role: saga still within lease, skipped")
				continue
			}
		}
		claimed, err := s.sagas.Claim(ctx, saga.ID, saga.State, notAfter)
		if err != nil {
			logger.Warn().Err(err).Msg("role: failed to claim saga")
			continue
		}
		if !claimed {
			logger.Debug().Msg("role: saga taken or touched meanwhile, skipped")
			continue
		}
		saga.State = model.SagaRecovering

		if err := s.apply(ctx, saga); err != nil {
			s.record(ctx, saga, stepUpdateUser, err)
			s.finish(ctx, saga, model.SagaNeedsRecovery)
			logger.Warn().Err(err).Msg("role: recovery failed")
			continue
		}
		s.record(ctx, saga, stepUpdateUser, nil)
		if err := s.deleteRequest(ctx, saga); err != nil {
			s.record(ctx, saga, stepDeleteRequest, err)
			s.finish(ctx, saga, model.SagaNeedsRecovery)
			logger.Warn().Err(err).Msg("role: recovery failed")
			continue
		}
		s.record(ctx, saga, stepDeleteRequest, nil)
		s.finish(ctx, saga, model.SagaCompleted)
		if saga.Kind == model.SagaApprove && s.sessions != nil {
			s.sessions.UpdateRole(saga.UserEmail, saga.RequestType)
		}
		logger.Info().Msg("role: saga recovered")
		done++
	}
	if done > 0 {
		s.inv.Invalidate(ctx, keyUsers, keyRoleRequests, keyStats)
	}
	return done, nil
}
