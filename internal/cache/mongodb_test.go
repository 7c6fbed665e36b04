package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	newMongo := func(mt *mtest.T) *Mongo {
		return &Mongo{client: mt.Client, coll: mt.Coll, now: func() time.Time { return now }}
	}
	ns := func(mt *mtest.T) string {
		return mt.Coll.Database().Name() + "." + mt.Coll.Name()
	}

	mt.Run("get hit", func(mt *mtest.T) {
		m := newMongo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "k"},
			{Key: "value", Value: "v"},
			{Key: "expires_at", Value: now.Add(time.Minute)},
		}))

		v, err := m.Get(ctx, "k")
		require.NoError(mt, err)
		assert.Equal(mt, "v", v)
	})

	mt.Run("get miss", func(mt *mtest.T) {
		m := newMongo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := m.Get(ctx, "k")
		assert.ErrorIs(mt, err, ErrMiss)
	})

	mt.Run("get expired", func(mt *mtest.T) {
		m := newMongo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "k"},
			{Key: "value", Value: "v"},
			{Key: "expires_at", Value: now.Add(-time.Second)},
		}))

		_, err := m.Get(ctx, "k")
		assert.ErrorIs(mt, err, ErrMiss)
	})

	mt.Run("set and delete", func(mt *mtest.T) {
		m := newMongo(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, m.Set(ctx, "k", "v", time.Minute))
		require.NoError(mt, m.Delete(ctx, "k"))
	})

	mt.Run("set error", func(mt *mtest.T) {
		m := newMongo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))

		assert.Error(mt, m.Set(ctx, "k", "v", 0))
	})

	mt.Run("ttl index", func(mt *mtest.T) {
		m := newMongo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, m.createIndexes(ctx))
	})
}
