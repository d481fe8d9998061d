package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/strmparty/loto-services/internal/db"
	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

const Collection = "chat_archive"

// Archive keeps a TTL-expiring trail of every polled chat message, for
// debugging and replay. Writes are best effort; the game never depends on it.
type Archive struct {
	coll      *mongo.Collection
	retention time.Duration
}

type archivedMessage struct {
	MessageID string    `bson:"message_id"`
	Text      string    `bson:"text"`
	Ts        int64     `bson:"ts"`
	UserID    string    `bson:"user_id"`
	Username  string    `bson:"username"`
	Platform  string    `bson:"platform"`
	Channel   string    `bson:"channel"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func New(database *mongo.Database, retention time.Duration) *Archive {
	db.CreateTTLIndexForCollection(database, Collection)
	return &Archive{
		coll:      database.Collection(Collection),
		retention: retention,
	}
}

// StoreBatch inserts one poll batch. Returns the first insert error, callers
// only log it.
func (a *Archive) StoreBatch(ctx context.Context, batch []models.ChatMessage) error {
	if len(batch) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(batch))
	expires := time.Now().Add(a.retention)
	for _, m := range batch {
		docs = append(docs, archivedMessage{
			MessageID: m.ID,
			Text:      m.Text,
			Ts:        m.Ts,
			UserID:    m.User.ID,
			Username:  m.User.Name,
			Platform:  m.User.Platform,
			Channel:   m.User.Channel,
			ExpiresAt: expires,
		})
	}

	_, err := a.coll.InsertMany(ctx, docs)
	return err
}
