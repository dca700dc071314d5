package store

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/seamline/pkg/errors"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := DefaultMongoDatabase + "." + DefaultMongoCollection

	mt.Run("PutThenGet", func(mt *mtest.T) {
		st := NewMongoStoreFromClient(mt.Client, "", "")
		s := loadSkirt(mt.T)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		put, err := st.Put(ctx, "skirt", s)
		if err != nil {
			mt.Fatalf("Put: %v", err)
		}

		data, err := encodeSpec(s)
		if err != nil {
			mt.Fatalf("encodeSpec: %v", err)
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "skirt"},
			{Key: "revision", Value: put.Revision},
			{Key: "updated_at", Value: put.UpdatedAt},
			{Key: "panels", Value: 2},
			{Key: "parameters", Value: 3},
			{Key: "spec", Value: string(data)},
		}))
		got, err := st.Get(ctx, "skirt")
		if err != nil {
			mt.Fatalf("Get: %v", err)
		}
		if got.Revision != put.Revision || got.Spec.Name != "skirt" || len(got.Spec.Pattern.Panels) != 2 {
			mt.Errorf("Get = %+v", got)
		}
	})

	mt.Run("GetMissing", func(mt *mtest.T) {
		st := NewMongoStoreFromClient(mt.Client, "", "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		if _, err := st.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
			mt.Errorf("Get = %v, want NOT_FOUND", err)
		}
	})

	mt.Run("List", func(mt *mtest.T) {
		st := NewMongoStoreFromClient(mt.Client, "", "")
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "a"}, {Key: "revision", Value: "r1"}, {Key: "updated_at", Value: now}, {Key: "panels", Value: 2}, {Key: "parameters", Value: 1}},
			bson.D{{Key: "_id", Value: "b"}, {Key: "revision", Value: "r2"}, {Key: "updated_at", Value: now}, {Key: "panels", Value: 4}, {Key: "parameters", Value: 0}},
		))
		list, err := st.List(ctx)
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if len(list) != 2 || list[0].Name != "a" || list[1].Panels != 4 || list[1].Revision != "r2" {
			mt.Errorf("List = %+v", list)
		}
	})

	mt.Run("DeleteMissing", func(mt *mtest.T) {
		st := NewMongoStoreFromClient(mt.Client, "", "")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		if err := st.Delete(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
			mt.Errorf("Delete = %v, want NOT_FOUND", err)
		}
	})

	mt.Run("Delete", func(mt *mtest.T) {
		st := NewMongoStoreFromClient(mt.Client, "", "")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		if err := st.Delete(ctx, "skirt"); err != nil {
			mt.Errorf("Delete: %v", err)
		}
	})

	mt.Run("InvalidName", func(mt *mtest.T) {
		st := NewMongoStoreFromClient(mt.Client, "", "")
		if err := st.Delete(ctx, "../x"); !errors.Is(err, errors.ErrCodeInvalidName) {
			mt.Errorf("Delete = %v, want INVALID_NAME", err)
		}
	})
}
