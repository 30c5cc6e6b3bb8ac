package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/formatrack/training-system/internal/core/domain"
)

// collectionOptions is the `Options` reference table. It is maintained
// out-of-band; the application only ever scans it.
const collectionOptions = "options"

type OptionRepository struct {
	col *mongo.Collection
}

func NewOptionRepository(db *mongo.Database) *OptionRepository {
	return &OptionRepository{col: db.Collection(collectionOptions)}
}

type optionDoc struct {
	Specialty   string `bson:"specialty"`
	Group       string `bson:"group"`
	Name        string `bson:"name"`
	Commune     string `bson:"commune"`
	Institution string `bson:"institution"`
	Supervisor  string `bson:"supervisor"`
}

func (r *OptionRepository) FindAll(ctx context.Context) ([]domain.OptionRow, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []optionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]domain.OptionRow, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, domain.OptionRow{
			Specialty:   d.Specialty,
			Group:       d.Group,
			Name:        d.Name,
			Commune:     d.Commune,
			Institution: d.Institution,
			Supervisor:  d.Supervisor,
		})
	}
	return rows, nil
}
