package repository

import (
	"context"
	"errors"
	"time"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("saga no encontrada")

// Journal de aprobaciones/rechazos de solicitudes de rol
type MongoSagaRepository struct {
	col *mongo.Collection
}

func NewMongoSagaRepository(db *mongo.Database) *MongoSagaRepository {
	return &MongoSagaRepository{col: db.Collection("role_sagas")}
}

// EnsureIndexes crea el índice por estado que usa la recuperación al arrancar.
func (m *MongoSagaRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	})
	return err
}

func (m *MongoSagaRepository) Create(ctx context.Context, s *model.RoleSaga) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Steps == nil {
		s.Steps = []model.SagaStep{}
	}
	_, err := m.col.InsertOne(ctx, s)
	return err
}

func (m *MongoSagaRepository) FindByID(ctx context.Context, id string) (*model.RoleSaga, error) {
	var res model.RoleSaga
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// AppendStep pushea un paso al historial de la saga.
func (m *MongoSagaRepository) AppendStep(ctx context.Context, id string, step model.SagaStep) error {
	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now().UTC()
	}
	update := bson.M{
		"$set":  bson.M{"updated_at": time.Now().UTC()},
		"$push": bson.M{"steps": step},
	}
	r, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoSagaRepository) SetState(ctx context.Context, id string, state model.SagaState) error {
	update := bson.M{
		"$set": bson.M{
			"state":      state,
			"updated_at": time.Now().UTC(),
		},
	}
	r, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Claim pasa la saga de from a recovering si sigue en from y no se tocó
// después de notAfter. Devuelve false si otro la tomó o sigue activa.
func (m *MongoSagaRepository) Claim(ctx context.Context, id string, from model.SagaState, notAfter time.Time) (bool, error) {
	filter := bson.M{
		"_id":        id,
		"state":      from,
		"updated_at": bson.M{"$lte": notAfter},
	}
	update := bson.M{
		"$set": bson.M{
			"state":      model.SagaRecovering,
			"updated_at": time.Now().UTC(),
		},
	}
	r, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return r.ModifiedCount == 1, nil
}

// FindByState devuelve las sagas en alguno de los estados, más viejas primero.
func (m *MongoSagaRepository) FindByState(ctx context.Context, states ...model.SagaState) ([]*model.RoleSaga, error) {
	filter := bson.M{"state": bson.M{"$in": states}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return m.find(ctx, filter, opts)
}

func (m *MongoSagaRepository) FindAll(ctx context.Context, limit int64) ([]*model.RoleSaga, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return m.find(ctx, bson.M{}, opts)
}

func (m *MongoSagaRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.RoleSaga, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.RoleSaga{}
	for cur.Next(ctx) {
		var v model.RoleSaga
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
