package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tokenCollection = "session_tokens"

// TokenRepository persists credential tokens, one document per browser
// session. A TTL index on updated_at expires abandoned tokens.
type TokenRepository struct {
	col *mongo.Collection
	ttl time.Duration
	now func() time.Time
}

func NewTokenRepository(db *mongo.Database, ttl time.Duration) *TokenRepository {
	return &TokenRepository{col: db.Collection(tokenCollection), ttl: ttl, now: time.Now}
}

type tokenDocument struct {
	SessionID string    `bson:"_id"`
	Token     string    `bson:"token"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r *TokenRepository) Load(ctx context.Context, sessionID string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc tokenDocument
	err := r.col.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find token: %w", err)
	}
	// The TTL monitor runs about once a minute; don't hand out stale tokens.
	if r.ttl > 0 && r.now().Sub(doc.UpdatedAt) > r.ttl {
		return "", false, nil
	}
	return doc.Token, true, nil
}

func (r *TokenRepository) Save(ctx context.Context, sessionID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := tokenDocument{SessionID: sessionID, Token: token, UpdatedAt: r.now().UTC()}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": sessionID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": sessionID}); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// EnsureIndexes creates the TTL index on the tokens collection.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(r.ttl.Seconds())),
	})
	return err
}
