package model

import "time"

// Registros propios del gateway, persistidos en MongoDB.

type SagaKind string

const (
	SagaApprove SagaKind = "approve"
	SagaReject  SagaKind = "reject"
)

type SagaState string

const (
	SagaStarted       SagaState = "started"
	SagaCompleted     SagaState = "completed"
	SagaCompensated   SagaState = "compensated"
	SagaNeedsRecovery SagaState = "needs_recovery"
	// la primera escritura falló, no hubo nada que deshacer
	SagaFailed SagaState = "failed"
	// tomada por una recuperación en curso
	SagaRecovering SagaState = "recovering"
)

// RoleSaga journals an approve/reject of a role-change request.
type RoleSaga struct {
	ID             string     `bson:"_id" json:"id"`
	Kind           SagaKind   `bson:"kind" json:"kind"`
	RequestID      string     `bson:"request_id" json:"requestId"`
	UserEmail      string     `bson:"user_email" json:"userEmail"`
	RequestType    Role       `bson:"request_type" json:"requestType"`
	PreviousRole   Role       `bson:"previous_role" json:"previousRole"`
	PreviousStatus UserStatus `bson:"previous_status" json:"previousStatus"`
	ActorEmail     string     `bson:"actor_email" json:"actorEmail"`
	State          SagaState  `bson:"state" json:"state"`
	Steps          []SagaStep `bson:"steps" json:"steps"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updatedAt"`
}

type SagaStep struct {
	Name      string    `bson:"name" json:"name"`
	OK        bool      `bson:"ok" json:"ok"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// IdempotencyKey reserves a client submission so a retried request
// does not create a second record.
type IdempotencyKey struct {
	Key        string    `bson:"_id" json:"key"`
	Scope      string    `bson:"scope" json:"scope"`
	Owner      string    `bson:"owner" json:"owner"`
	ResourceID string    `bson:"resource_id" json:"resourceId"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
