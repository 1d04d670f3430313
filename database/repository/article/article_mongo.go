package articleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medibook/database"
	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no article matches the given identifier.
var ErrNotFound = errors.New("article not found")

// ArticleRepository defines persistence for back-office articles.
type ArticleRepository interface {
	Insert(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	ListPublished(ctx context.Context) ([]models.Article, error)
	ListAll(ctx context.Context) ([]models.Article, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// MongoArticleRepo is the MongoDB-backed article repository.
type MongoArticleRepo struct {
	coll *mongo.Collection
}

func NewMongoArticleRepo() *MongoArticleRepo {
	return &MongoArticleRepo{coll: database.DB().Collection("articles")}
}

func (r *MongoArticleRepo) Insert(ctx context.Context, article *models.Article) error {
	if _, err := r.coll.InsertOne(ctx, article); err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

func (r *MongoArticleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&article)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article %s: %w", id, err)
	}
	return &article, nil
}

func (r *MongoArticleRepo) ListPublished(ctx context.Context) ([]models.Article, error) {
	return r.list(ctx, bson.M{"published": true})
}

func (r *MongoArticleRepo) ListAll(ctx context.Context) ([]models.Article, error) {
	return r.list(ctx, bson.M{})
}

func (r *MongoArticleRepo) list(ctx context.Context, filter bson.M) ([]models.Article, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}
	return articles, nil
}

func (r *MongoArticleRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update article %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoArticleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete article %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
