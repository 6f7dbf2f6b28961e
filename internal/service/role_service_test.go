package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type roleFixture struct {
	requests *MockRequests
	users    *MockUsers
	sagas    *MockSagas
	sessions *MockSessions
	svc      *service.RoleService
}

func newRoleFixture() *roleFixture {
	f := &roleFixture{
		requests: new(MockRequests),
		users:    new(MockUsers),
		sagas:    new(MockSagas),
		sessions: new(MockSessions),
	}
	f.svc = service.NewRoleService(f.requests, f.users, f.sagas, nil, f.sessions, nil, nil)
	return f
}

func (f *roleFixture) journalOK() {
	f.sagas.On("Create", mock.Anything, mock.AnythingOfType("*model.RoleSaga")).Return(nil)
	f.sagas.On("AppendStep", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

var admin = service.Caller{SessionID: "s-admin", Email: "admin@x.io", Role: model.RoleAdmin}

func pendingChefRequest() model.RoleChangeRequest {
	return model.RoleChangeRequest{ID: "r1", UserEmail: "alice@x.io", RequestType: model.RoleChef, RequestStatus: model.RequestPending}
}

func rolePatch(r model.Role) remote.UserPatch { return remote.UserPatch{RequestType: &r} }
func statusPatch(s model.UserStatus) remote.UserPatch { return remote.UserPatch{UserStatus: &s} }

func TestRoleService_Approve(t *testing.T) {
	f := newRoleFixture()
	f.journalOK()
	f.requests.On("ListRoleRequests", mock.Anything).Return([]model.RoleChangeRequest{pendingChefRequest()}, nil)
	f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser, UserStatus: model.UserActive}, nil)
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", rolePatch(model.RoleChef)).Return(model.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()
	f.requests.On("DeleteRoleRequest", mock.Anything, "r1").Return(model.DeleteResult{DeletedCount: 1}, nil).Once()
	f.sagas.On("SetState", mock.Anything, mock.Anything, model.SagaCompleted).Return(nil).Once()
	f.sessions.On("UpdateRole", "alice@x.io", model.RoleChef).Return(1).Once()

	saga, err := f.svc.Approve(context.Background(), admin, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.SagaCompleted, saga.State)
	assert.Equal(t, model.RoleUser, saga.PreviousRole)
	require.Len(t, saga.Steps, 2)
	assert.True(t, saga.Steps[0].OK)
	assert.True(t, saga.Steps[1].OK)

	f.users.AssertExpectations(t)
	f.requests.AssertExpectations(t)
	f.sagas.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestRoleService_Reject(t *testing.T) {
	f := newRoleFixture()
	f.journalOK()
	f.requests.On("ListRoleRequests", mock.Anything).Return([]model.RoleChangeRequest{pendingChefRequest()}, nil)
	f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser, UserStatus: model.UserActive}, nil)
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", statusPatch(model.UserRejected)).Return(model.UpdateResult{MatchedCount: 1}, nil).Once()
	f.requests.On("DeleteRoleRequest", mock.Anything, "r1").Return(model.DeleteResult{DeletedCount: 1}, nil).Once()
	f.sagas.On("SetState", mock.Anything, mock.Anything, model.SagaCompleted).Return(nil).Once()

	saga, err := f.svc.Reject(context.Background(), admin, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.SagaReject, saga.Kind)
	f.users.AssertExpectations(t)
	f.requests.AssertExpectations(t)
	f.sessions.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything)
}

func TestRoleService_ApproveCompensatesFailedDelete(t *testing.T) {
	f := newRoleFixture()
	f.journalOK()
	f.requests.On("ListRoleRequests", mock.Anything).Return([]model.RoleChangeRequest{pendingChefRequest()}, nil)
	f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser}, nil)
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", rolePatch(model.RoleChef)).Return(model.UpdateResult{MatchedCount: 1}, nil).Once()
	f.requests.On("DeleteRoleRequest", mock.Anything, "r1").Return(model.DeleteResult{}, errors.New("store down")).Once()
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", rolePatch(model.RoleUser)).Return(model.UpdateResult{MatchedCount: 1}, nil).Once()
	f.sagas.On("SetState", mock.Anything, mock.Anything, model.SagaCompensated).Return(nil).Once()

	saga, err := f.svc.Approve(context.Background(), admin, "r1")
	assert.ErrorIs(t, err, service.ErrDecisionRolledBack)
	assert.Equal(t, model.SagaCompensated, saga.State)
	require.Len(t, saga.Steps, 3)
	assert.False(t, saga.Steps[1].OK)
	assert.Equal(t, "compensate", saga.Steps[2].Name)

	f.users.AssertExpectations(t)
	f.sagas.AssertExpectations(t)
	f.sessions.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything)
}

func TestRoleService_FailedCompensationNeedsRecovery(t *testing.T) {
	f := newRoleFixture()
	f.journalOK()
	f.requests.On("ListRoleRequests", mock.Anything).Return([]model.RoleChangeRequest{pendingChefRequest()}, nil)
	f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser}, nil)
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", rolePatch(model.RoleChef)).Return(model.UpdateResult{}, nil).Once()
	f.requests.On("DeleteRoleRequest", mock.Anything, "r1").Return(model.DeleteResult{}, errors.New("store down")).Once()
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", rolePatch(model.RoleUser)).Return(model.UpdateResult{}, errors.New("store down")).Once()
	f.sagas.On("SetState", mock.Anything, mock.Anything, model.SagaNeedsRecovery).Return(nil).Once()

	saga, err := f.svc.Approve(context.Background(), admin, "r1")
	assert.ErrorIs(t, err, service.ErrDecisionIncomplete)
	assert.Equal(t, model.SagaNeedsRecovery, saga.State)
	f.sagas.AssertExpectations(t)
}

func TestRoleService_FirstWriteFailureChangesNothing(t *testing.T) {
	f := newRoleFixture()
	f.journalOK()
	f.requests.On("ListRoleRequests", mock.Anything).Return([]model.RoleChangeRequest{pendingChefRequest()}, nil)
	f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser}, nil)
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", rolePatch(model.RoleChef)).Return(model.UpdateResult{}, errors.New("boom")).Once()
	f.sagas.On("SetState", mock.Anything, mock.Anything, model.SagaFailed).Return(nil).Once()

	saga, err := f.svc.Approve(context.Background(), admin, "r1")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, model.SagaFailed, saga.State)
	f.sagas.AssertExpectations(t)
	f.requests.AssertNotCalled(t, "DeleteRoleRequest", mock.Anything, mock.Anything)
}

func TestRoleService_DecisionGuards(t *testing.T) {
	f := newRoleFixture()
	decided := pendingChefRequest()
	decided.ID = "r2"
	decided.RequestStatus = model.RequestApproved
	f.requests.On("ListRoleRequests", mock.Anything).Return([]model.RoleChangeRequest{decided}, nil)

	_, err := f.svc.Approve(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, service.ErrRequestNotFound)

	_, err = f.svc.Approve(context.Background(), admin, "r2")
	assert.ErrorIs(t, err, lifecycle.ErrNotPending)

	f.sagas.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoleService_JournalFailureAbortsBeforeWrites(t *testing.T) {
	f := newRoleFixture()
	f.requests.On("ListRoleRequests", mock.Anything).Return([]model.RoleChangeRequest{pendingChefRequest()}, nil)
	f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser}, nil)
	f.sagas.On("Create", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	_, err := f.svc.Approve(context.Background(), admin, "r1")
	require.Error(t, err)
	f.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoleService_Request(t *testing.T) {
	alice := service.Caller{Email: "alice@x.io", Name: "Alice", Role: model.RoleUser}

	t.Run("fraud_user_blocked_without_write", func(t *testing.T) {
		f := newRoleFixture()
		f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser, UserStatus: model.UserFraud}, nil)
		f.requests.On("ListRoleRequestsByUser", mock.Anything, "alice@x.io").Return([]model.RoleChangeRequest{}, nil)

		_, err := f.svc.Request(context.Background(), alice, model.RoleChef, "")
		assert.ErrorIs(t, err, lifecycle.ErrAccountRestricted)
		f.requests.AssertNotCalled(t, "CreateRoleRequest", mock.Anything, mock.Anything)
	})

	t.Run("pending_request_blocks_new_one", func(t *testing.T) {
		f := newRoleFixture()
		f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", Role: model.RoleUser, UserStatus: model.UserActive}, nil)
		f.requests.On("ListRoleRequestsByUser", mock.Anything, "alice@x.io").Return([]model.RoleChangeRequest{pendingChefRequest()}, nil)

		_, err := f.svc.Request(context.Background(), alice, model.RoleChef, "")
		assert.ErrorIs(t, err, lifecycle.ErrRequestPending)
		f.requests.AssertNotCalled(t, "CreateRoleRequest", mock.Anything, mock.Anything)
	})

	t.Run("sent", func(t *testing.T) {
		f := newRoleFixture()
		f.users.On("GetUser", mock.Anything, "alice@x.io").Return(&model.User{Email: "alice@x.io", DisplayName: "Alice A.", Role: model.RoleUser, UserStatus: model.UserActive}, nil)
		f.requests.On("ListRoleRequestsByUser", mock.Anything, "alice@x.io").Return([]model.RoleChangeRequest{}, nil)
		f.requests.On("CreateRoleRequest", mock.Anything, mock.MatchedBy(func(r model.RoleChangeRequest) bool {
			return r.RequestType == model.RoleChef && r.RequestStatus == model.RequestPending && r.UserName == "Alice A."
		})).Return(model.InsertResult{InsertedID: "r9"}, nil).Once()

		req, err := f.svc.Request(context.Background(), alice, model.RoleChef, "")
		require.NoError(t, err)
		assert.Equal(t, "r9", req.ID)
		f.requests.AssertExpectations(t)
	})
}

func TestRoleService_Recover(t *testing.T) {
	f := newRoleFixture()
	stuck := &model.RoleSaga{ID: "s1", Kind: model.SagaApprove, RequestID: "r1", UserEmail: "alice@x.io", RequestType: model.RoleChef, State: model.SagaNeedsRecovery}
	broken := &model.RoleSaga{ID: "s2", Kind: model.SagaReject, RequestID: "r2", UserEmail: "bob@x.io", State: model.SagaStarted, UpdatedAt: time.Now().Add(-time.Hour)}

	f.sagas.On("FindByState", mock.Anything, mock.Anything).Return([]*model.RoleSaga{stuck, broken}, nil)
	f.sagas.On("Claim", mock.Anything, "s1", model.SagaNeedsRecovery, mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	f.sagas.On("Claim", mock.Anything, "s2", model.SagaStarted, mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	f.sagas.On("AppendStep", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.users.On("UpdateUser", mock.Anything, "alice@x.io", rolePatch(model.RoleChef)).Return(model.UpdateResult{}, nil)
	f.requests.On("DeleteRoleRequest", mock.Anything, "r1").Return(model.DeleteResult{}, &remote.StatusError{StatusCode: 404})
	f.users.On("UpdateUser", mock.Anything, "bob@x.io", statusPatch(model.UserRejected)).Return(model.UpdateResult{}, errors.New("still down"))
	f.sagas.On("SetState", mock.Anything, "s1", model.SagaCompleted).Return(nil).Once()
	f.sagas.On("SetState", mock.Anything, "s2", model.SagaNeedsRecovery).Return(nil).Once()
	f.sessions.On("UpdateRole", "alice@x.io", model.RoleChef).Return(0)

	n, err := f.svc.Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.SagaCompleted, stuck.State)
	// falló de nuevo: queda para la próxima recuperación
	assert.Equal(t, model.SagaNeedsRecovery, broken.State)
	f.sagas.AssertExpectations(t)
}

func TestRoleService_RecoverLeavesInFlightSagasAlone(t *testing.T) {
	t.Run("started_within_lease", func(t *testing.T) {
		f := newRoleFixture()
		running := &model.RoleSaga{ID: "s3", Kind: model.SagaApprove, RequestID: "r3", UserEmail: "carol@x.io", RequestType: model.RoleChef, State: model.SagaStarted, UpdatedAt: time.Now()}
		f.sagas.On("FindByState", mock.Anything, mock.Anything).Return([]*model.RoleSaga{running}, nil)

		n, err := f.svc.Recover(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		f.sagas.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
		f.requests.AssertNotCalled(t, "DeleteRoleRequest", mock.Anything, mock.Anything)
	})

	t.Run("claim_lost", func(t *testing.T) {
		f := newRoleFixture()
		f.svc.SetRecoveryLease(time.Second)
		stale := &model.RoleSaga{ID: "s4", Kind: model.SagaApprove, RequestID: "r4", UserEmail: "dan@x.io", RequestType: model.RoleChef, State: model.SagaStarted, UpdatedAt: time.Now().Add(-time.Minute)}
		f.sagas.On("FindByState", mock.Anything, mock.Anything).Return([]*model.RoleSaga{stale}, nil)
		// el approve original escribió un paso entre el Find y el Claim
		f.sagas.On("Claim", mock.Anything, "s4", model.SagaStarted, mock.AnythingOfType("time.Time")).Return(false, nil).Once()

		n, err := f.svc.Recover(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, model.SagaStarted, stale.State)
		f.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
		f.sagas.AssertExpectations(t)
	})
}
