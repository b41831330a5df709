package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vutran-dev/platform-ads/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrVideoNotFound = errors.New("video not found")

type mongoVideoRepo struct {
	col *mongo.Collection
}

func NewMongoVideoRepo(db *mongo.Database, collection string) VideoRepository {
	return &mongoVideoRepo{col: db.Collection(collection)}
}

func (r *mongoVideoRepo) Create(ctx context.Context, v *models.Video) error {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, v)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		v.ID = id
	}
	return nil
}

func (r *mongoVideoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var v models.Video
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *mongoVideoRepo) List(ctx context.Context, skip, limit int64) ([]models.Video, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var videos []models.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *mongoVideoRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
