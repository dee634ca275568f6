package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistante-suite/utils/contentstore"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBManager stores page documents in one collection. Content is kept as
// a JSON string so key order survives.
type MongoDBManager struct {
	client *mongo.Client
	pages  *mongo.Collection
	now    func() time.Time
}

type pageRecord struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Revision  int64     `bson:"revision"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r pageRecord) toDocument() *contentstore.StoredDocument {
	return &contentstore.StoredDocument{
		ID:        r.ID,
		Title:     r.Title,
		Content:   []byte(r.Content),
		Revision:  r.Revision,
		UpdatedAt: r.UpdatedAt,
	}
}

func NewMongoDBManager(ctx context.Context, dbURL, db, pages string) (*MongoDBManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURL))
	if err != nil {
		return nil, err
	}
	return &MongoDBManager{
		client: client,
		pages:  client.Database(db).Collection(pages),
		now:    time.Now,
	}, nil
}

func (m *MongoDBManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoDBManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoDBManager) LoadDocument(ctx context.Context, id string) (*contentstore.StoredDocument, error) {
	var rec pageRecord
	err := m.pages.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contentstore.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", id, err)
	}
	return rec.toDocument(), nil
}

// SaveDocument matches on both id and revision so a stale writer updates nothing.
func (m *MongoDBManager) SaveDocument(ctx context.Context, doc contentstore.StoredDocument) (int64, error) {
	set := bson.M{
		"content":    string(doc.Content),
		"updated_at": m.now(),
	}
	if doc.Title != "" {
		set["title"] = doc.Title
	}
	res, err := m.pages.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "revision": doc.Revision},
		bson.M{"$set": set, "$inc": bson.M{"revision": 1}},
	)
	if err != nil {
		return 0, fmt.Errorf("save page %s: %w", doc.ID, err)
	}
	if res.MatchedCount == 0 {
		count, err := m.pages.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err == nil && count == 0 {
			return 0, contentstore.ErrDocumentNotFound
		}
		return 0, contentstore.ErrRevisionConflict
	}
	return doc.Revision + 1, nil
}

func (m *MongoDBManager) ListPages(ctx context.Context) ([]contentstore.PageSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"content": 0})
	cur, err := m.pages.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer cur.Close(ctx)
	out := make([]contentstore.PageSummary, 0)
	for cur.Next(ctx) {
		var rec pageRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, contentstore.PageSummary{ID: rec.ID, Title: rec.Title, Revision: rec.Revision, UpdatedAt: rec.UpdatedAt})
	}
	return out, cur.Err()
}

func (m *MongoDBManager) CreatePage(ctx context.Context, doc contentstore.StoredDocument) (*contentstore.StoredDocument, error) {
	rec := pageRecord{ID: doc.ID, Title: doc.Title, Content: string(doc.Content), Revision: 1, UpdatedAt: m.now()}
	if _, err := m.pages.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, contentstore.ErrDocumentExists
		}
		return nil, fmt.Errorf("create page %s: %w", doc.ID, err)
	}
	return rec.toDocument(), nil
}

func (m *MongoDBManager) DeletePage(ctx context.Context, id string) error {
	res, err := m.pages.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return contentstore.ErrDocumentNotFound
	}
	return nil
}
