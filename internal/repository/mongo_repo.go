package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/linkvault/internal/database"
	"github.com/hitoshi/linkvault/internal/model"
)

type mongoUser struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoLink struct {
	ID   int    `bson:"id"`
	Name string `bson:"name"`
	URL  string `bson:"url"`
}

type mongoCollection struct {
	ID        string      `bson:"_id"`
	UserID    string      `bson:"user_id"`
	Title     string      `bson:"title"`
	Links     []mongoLink `bson:"links"`
	CreatedAt time.Time   `bson:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

func toMongoCollection(c *model.Collection) *mongoCollection {
	links := make([]mongoLink, 0, len(c.Links))
	for _, l := range c.Links {
		links = append(links, mongoLink{ID: l.ID, Name: l.Name, URL: l.URL})
	}
	return &mongoCollection{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Links:     links,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d *mongoCollection) toModel() *model.Collection {
	links := make([]model.Link, 0, len(d.Links))
	for _, l := range d.Links {
		links = append(links, model.Link{ID: l.ID, Name: l.Name, URL: l.URL})
	}
	return &model.Collection{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		Links:     links,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoUserRepo はMongoDBを使用したユーザーリポジトリ。
// メールアドレスの一意性はusers_email_keyインデックスで保証する。
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo はMongoUserRepoを生成する。
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection(database.MongoUsersCollection)}
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var doc mongoUser
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &model.User{
		ID:        doc.ID,
		Email:     doc.Email,
		Password:  doc.Password,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Create はユーザーを作成する。
func (r *MongoUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.coll.InsertOne(ctx, mongoUser{
		ID:        user.ID,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// MongoCollectionRepo はMongoDBを使用したコレクションリポジトリ。
// リンクはドキュメント内の配列として保持する。
type MongoCollectionRepo struct {
	coll *mongo.Collection
}

// NewMongoCollectionRepo はMongoCollectionRepoを生成する。
func NewMongoCollectionRepo(db *mongo.Database) *MongoCollectionRepo {
	return &MongoCollectionRepo{coll: db.Collection(database.MongoCollectionsCollection)}
}

// ListByUserID はユーザーのコレクションを作成日時の降順で返す。
func (r *MongoCollectionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Collection, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	var docs []mongoCollection
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}

	collections := make([]*model.Collection, 0, len(docs))
	for i := range docs {
		collections = append(collections, docs[i].toModel())
	}
	return collections, nil
}

// FindByIDAndUserID は所有者を指定してコレクションを取得する。見つからない場合はnilを返す。
func (r *MongoCollectionRepo) FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Collection, error) {
	var doc mongoCollection
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find collection: %w", err)
	}
	return doc.toModel(), nil
}

// Create はコレクションを作成する。
func (r *MongoCollectionRepo) Create(ctx context.Context, c *model.Collection) error {
	if _, err := r.coll.InsertOne(ctx, toMongoCollection(c)); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	return nil
}

// Replace はコレクションのドキュメントを丸ごと置き換える。
func (r *MongoCollectionRepo) Replace(ctx context.Context, c *model.Collection) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": c.ID, "user_id": c.UserID},
		toMongoCollection(c),
	)
	if err != nil {
		return fmt.Errorf("failed to replace collection: %w", err)
	}
	return nil
}

// DeleteByIDAndUserID はコレクションを削除する。
func (r *MongoCollectionRepo) DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// compile-time interface check
var (
	_ UserRepository       = (*MongoUserRepo)(nil)
	_ CollectionRepository = (*MongoCollectionRepo)(nil)
)
