package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) model() (models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.User{}, serr.ErrInternal
	}
	return models.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}

type UsersRepository struct {
	coll *mongo.Collection
}

func NewUsersRepository(db *mongo.Database) *UsersRepository {
	return &UsersRepository{coll: db.Collection(UsersCollection)}
}

func (r *UsersRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.coll.InsertOne(ctx, userDoc{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	})
	return translate(err)
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UsersRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.User{}, translate(err)
	}
	return doc.model()
}
