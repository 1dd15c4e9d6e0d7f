package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// expenseDoc хранит сумму как Decimal128, чтобы не терять копейки на float.
type expenseDoc struct {
	ID        string          `bson:"_id"`
	UserID    string          `bson:"user_id"`
	Title     string          `bson:"title"`
	Amount    bson.Decimal128 `bson:"amount"`
	Category  string          `bson:"category"`
	Date      time.Time       `bson:"date"`
	Notes     string          `bson:"notes"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

func toDoc(e models.Expense) (expenseDoc, error) {
	amount, err := bson.ParseDecimal128(e.Amount.String())
	if err != nil {
		return expenseDoc{}, serr.ErrInternal
	}
	return expenseDoc{
		ID:        e.ID.String(),
		UserID:    e.UserID.String(),
		Title:     e.Title,
		Amount:    amount,
		Category:  string(e.Category),
		Date:      e.Date,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, nil
}

func (d expenseDoc) model() (models.Expense, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Expense{}, serr.ErrInternal
	}
	owner, err := uuid.Parse(d.UserID)
	if err != nil {
		return models.Expense{}, serr.ErrInternal
	}
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return models.Expense{}, serr.ErrInternal
	}
	return models.Expense{
		ID:        id,
		UserID:    owner,
		Title:     d.Title,
		Amount:    amount,
		Category:  sharedModels.Category(d.Category),
		Date:      d.Date.UTC(),
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

type ExpensesRepository struct {
	coll *mongo.Collection
}

func NewExpensesRepository(db *mongo.Database) *ExpensesRepository {
	return &ExpensesRepository{coll: db.Collection(ExpensesCollection)}
}

func (r *ExpensesRepository) Create(ctx context.Context, e models.Expense) error {
	doc, err := toDoc(e)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return translate(err)
}

func (r *ExpensesRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Expense, error) {
	var doc expenseDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return models.Expense{}, translate(err)
	}
	return doc.model()
}

func (r *ExpensesRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "created_at", Value: -1},
	})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	out := make([]models.Expense, 0)
	for cursor.Next(ctx) {
		var doc expenseDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, translate(err)
		}
		e, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *ExpensesRepository) Update(ctx context.Context, e models.Expense) error {
	doc, err := toDoc(e)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "user_id": doc.UserID},
		bson.M{"$set": bson.M{
			"title":      doc.Title,
			"amount":     doc.Amount,
			"category":   doc.Category,
			"date":       doc.Date,
			"notes":      doc.Notes,
			"updated_at": doc.UpdatedAt,
		}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return serr.ErrNotFound
	}
	return nil
}

func (r *ExpensesRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String(), "user_id": userID.String()})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return serr.ErrNotFound
	}
	return nil
}
