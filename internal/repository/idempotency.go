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

// ErrDuplicateKey: la clave ya fue reservada por un envío anterior.
var ErrDuplicateKey = errors.New("clave de idempotencia ya utilizada")

// KeyRetention es cuánto vive una clave antes de que Mongo la borre (índice TTL).
const KeyRetention = 24 * time.Hour

type MongoIdempotencyRepository struct {
	col *mongo.Collection
}

func NewMongoIdempotencyRepository(db *mongo.Database) *MongoIdempotencyRepository {
	return &MongoIdempotencyRepository{col: db.Collection("idempotency_keys")}
}

func (m *MongoIdempotencyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(KeyRetention.Seconds())),
	})
	return err
}

// Reserve inserta la clave. Si ya existe devuelve el registro previo junto con
// ErrDuplicateKey, así el caller puede responder con el recurso ya creado.
func (m *MongoIdempotencyRepository) Reserve(ctx context.Context, k *model.IdempotencyKey) (*model.IdempotencyKey, error) {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	_, err := m.col.InsertOne(ctx, k)
	if err == nil {
		return nil, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, err
	}

	var existing model.IdempotencyKey
	if ferr := m.col.FindOne(ctx, bson.M{"_id": k.Key}).Decode(&existing); ferr != nil {
		return nil, ErrDuplicateKey
	}
	return &existing, ErrDuplicateKey
}

// Complete guarda el id del recurso creado bajo la clave.
func (m *MongoIdempotencyRepository) Complete(ctx context.Context, key, resourceID string) error {
	_, err := m.col.UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M{"resource_id": resourceID}})
	return err
}

// Release borra la clave cuando la escritura remota falló, para permitir el reintento.
func (m *MongoIdempotencyRepository) Release(ctx context.Context, key string) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
