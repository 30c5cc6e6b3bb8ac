package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/formatrack/training-system/internal/core/domain"
)

// collectionRecords is the `Data` table of the tabular store.
const collectionRecords = "data"

// RecordRepository is the record store adapter. Each document carries an
// opaque surrogate _id (the public record handle) plus a monotonic row
// sequence preserving insertion order.
type RecordRepository struct {
	col *mongo.Collection
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{col: db.Collection(collectionRecords)}
}

type recordDoc struct {
	ID             string  `bson:"_id"`
	Row            int64   `bson:"row"`
	Specialty      string  `bson:"specialty"`
	Group          string  `bson:"group"`
	FullName       string  `bson:"full_name"`
	NationalID     string  `bson:"national_id"`
	TrainingDate   string  `bson:"training_date"`
	HoursCount     float64 `bson:"hours_count"`
	Commune        string  `bson:"commune"`
	Institution    string  `bson:"institution"`
	SupervisorName string  `bson:"supervisor_name"`
	SupervisorID   string  `bson:"supervisor_id"`
	OwnerEmail     string  `bson:"owner_email"`
}

// FindAll returns every record sorted by row sequence (insertion order).
func (r *RecordRepository) FindAll(ctx context.Context) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "row", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []recordDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(docs))
	for i := range docs {
		records = append(records, *docs[i].toDomain())
	}
	return records, nil
}

func (r *RecordRepository) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc recordDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Insert appends the record, assigning its handle and the next row sequence.
// The unique index on national_id turns a concurrent duplicate into
// domain.ErrDuplicateNationalID.
func (r *RecordRepository) Insert(ctx context.Context, record *domain.Record) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	row, err := r.nextRow(ctx)
	if err != nil {
		return err
	}
	record.Row = row

	if _, err := r.col.InsertOne(ctx, fromDomain(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateNationalID
		}
		return err
	}
	return nil
}

// Replace rewrites the whole row identified by record.ID.
func (r *RecordRepository) Replace(ctx context.Context, record *domain.Record) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": record.ID}, fromDomain(record))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateNationalID
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// EnsureIndexes bootstraps the collection: the unique national_id index
// doubles as the duplicate-key backstop, and the row index serves ordering.
func (r *RecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "national_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "row", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// nextRow returns one past the highest row sequence in the collection.
// Deleted rows leave gaps; the sequence only ever grows.
func (r *RecordRepository) nextRow(ctx context.Context) (int64, error) {
	var doc recordDoc
	err := r.col.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "row", Value: -1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}
	return doc.Row + 1, nil
}

func (d *recordDoc) toDomain() *domain.Record {
	return &domain.Record{
		ID:             d.ID,
		Row:            d.Row,
		Specialty:      d.Specialty,
		Group:          d.Group,
		FullName:       d.FullName,
		NationalID:     d.NationalID,
		TrainingDate:   d.TrainingDate,
		HoursCount:     d.HoursCount,
		Commune:        d.Commune,
		Institution:    d.Institution,
		SupervisorName: d.SupervisorName,
		SupervisorID:   d.SupervisorID,
		OwnerEmail:     d.OwnerEmail,
	}
}

func fromDomain(r *domain.Record) recordDoc {
	return recordDoc{
		ID:             r.ID,
		Row:            r.Row,
		Specialty:      r.Specialty,
		Group:          r.Group,
		FullName:       r.FullName,
		NationalID:     r.NationalID,
		TrainingDate:   r.TrainingDate,
		HoursCount:     r.HoursCount,
		Commune:        r.Commune,
		Institution:    r.Institution,
		SupervisorName: r.SupervisorName,
		SupervisorID:   r.SupervisorID,
		OwnerEmail:     r.OwnerEmail,
	}
}
