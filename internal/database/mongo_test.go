package database

import (
	"context"
	"testing"
	"time"
	"tgadmin/entity"
	"tgadmin/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testDatabase = "test"

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestGetAdminByChatId(t *testing.T) {
	mt := newMock(t)

	mt.Run("found", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.admins", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "chat_id", Value: int64(42)},
			{Key: "password", Value: "hash"},
		}))

		admin, err := db.GetAdminByChatId(context.Background(), 42)
		require.NoError(mt, err)
		assert.Equal(mt, id, admin.Id)
		assert.Equal(mt, int64(42), admin.ChatId)
		assert.Equal(mt, "hash", admin.Password)
	})

	mt.Run("not found", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.admins", mtest.FirstBatch))

		_, err := db.GetAdminByChatId(context.Background(), 42)
		assert.ErrorIs(mt, err, entity.ErrAdminNotFound)
	})
}

func TestSetAdminPassword(t *testing.T) {
	mt := newMock(t)

	mt.Run("updated", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, db.SetAdminPassword(context.Background(), primitive.NewObjectID(), "hash"))
	})

	mt.Run("missing admin", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := db.SetAdminPassword(context.Background(), primitive.NewObjectID(), "hash")
		assert.ErrorIs(mt, err, entity.ErrAdminNotFound)
	})
}

func TestUpsertMaintenance(t *testing.T) {
	mt := newMock(t)

	mt.Run("upsert", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}}}},
		))

		title := "Planned works"
		err := db.UpsertMaintenance(context.Background(), &entity.MaintenanceUpdate{
			Title:     &title,
			UpdatedAt: time.Now(),
		})
		require.NoError(mt, err)

		statement := updateStatement(mt)
		assert.Empty(mt, elements(mt, statement.Lookup("q").Document()))
		assert.True(mt, statement.Lookup("upsert").Boolean())
		update := statement.Lookup("u").Document()
		set := update.Lookup("$set").Document()
		assert.Equal(mt, "Planned works", set.Lookup("title").StringValue())
		_, err = set.LookupErr("enabled")
		assert.Error(mt, err)
		assert.False(mt, update.Lookup("$setOnInsert", "enabled").Boolean())
	})

	mt.Run("explicit enabled", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		enabled := true
		require.NoError(mt, db.UpsertMaintenance(context.Background(), &entity.MaintenanceUpdate{Enabled: &enabled}))

		statement := updateStatement(mt)
		assert.Empty(mt, elements(mt, statement.Lookup("q").Document()))
		assert.True(mt, statement.Lookup("upsert").Boolean())
		update := statement.Lookup("u").Document()
		assert.True(mt, update.Lookup("$set", "enabled").Boolean())
		_, err := update.LookupErr("$setOnInsert")
		assert.Error(mt, err)
	})

	mt.Run("server error", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "duplicate key",
			Name:    "DuplicateKey",
		}))

		enabled := true
		err := db.UpsertMaintenance(context.Background(), &entity.MaintenanceUpdate{Enabled: &enabled})
		assert.Error(mt, err)
	})
}

func TestGetMaintenance(t *testing.T) {
	mt := newMock(t)

	mt.Run("empty", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.maintenance", mtest.FirstBatch))

		records, err := db.GetMaintenance(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, records)
		assert.Empty(mt, records)
	})

	mt.Run("singleton", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.maintenance", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "enabled", Value: true},
			{Key: "title", Value: "Down"},
		}))

		records, err := db.GetMaintenance(context.Background())
		require.NoError(mt, err)
		require.Len(mt, records, 1)
		assert.True(mt, records[0].Enabled)
		assert.Equal(mt, "Down", records[0].Title)
	})
}

func TestFindUsers(t *testing.T) {
	mt := newMock(t)

	mt.Run("page with extra fields", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		registered := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "chat_id", Value: int64(7)},
				{Key: "username", Value: "ann"},
				{Key: "register_date", Value: registered},
				{Key: "banned", Value: false},
				{Key: "language", Value: "en"},
			}),
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(21)}}),
		)

		users, total, err := db.FindUsers(context.Background(), entity.UserQuery{Page: 2, Query: "ann"})
		require.NoError(mt, err)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, "find", find.CommandName)
		assert.Equal(mt, "users", find.Command.Lookup("find").StringValue())
		assert.Equal(mt, int64(20), find.Command.Lookup("skip").AsInt64())
		assert.Equal(mt, int64(20), find.Command.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(-1), find.Command.Lookup("sort", "register_date").AsInt64())
		or, err := find.Command.Lookup("filter", "$or").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, or, 1)
		pattern, opts := or[0].Document().Lookup("username").Regex()
		assert.Equal(mt, "ann", pattern)
		assert.Equal(mt, "i", opts)

		assert.Equal(mt, int64(21), total)
		require.Len(mt, users, 1)
		assert.Equal(mt, int64(7), users[0].ChatId)
		assert.Equal(mt, "ann", users[0].Username)
		assert.True(mt, registered.Equal(users[0].RegisterDate))
		assert.Equal(mt, "en", users[0].Extra["language"])
	})
}

func TestLatestUsers(t *testing.T) {
	mt := newMock(t)

	mt.Run("newest first", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		users, err := db.LatestUsers(context.Background(), entity.LatestUsersSize)
		require.NoError(mt, err)
		assert.NotNil(mt, users)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Empty(mt, elements(mt, find.Command.Lookup("filter").Document()))
		assert.Equal(mt, int64(5), find.Command.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(-1), find.Command.Lookup("sort", "register_date").AsInt64())
		_, err = find.Command.LookupErr("skip")
		assert.Error(mt, err)
	})
}

func TestCountUsers(t *testing.T) {
	mt := newMock(t)

	mt.Run("counts", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(10)}}),
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
		)

		total, banned, err := db.CountUsers(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(10), total)
		assert.Equal(mt, int64(3), banned)
	})
}

func TestUpdateUser(t *testing.T) {
	mt := newMock(t)
	banned := true

	mt.Run("updated", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, db.UpdateUser(context.Background(), primitive.NewObjectID(), &entity.UserUpdate{Banned: &banned}))
	})

	mt.Run("missing user", func(mt *mtest.T) {
		db := NewWithClient(mt.Client, testDatabase)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := db.UpdateUser(context.Background(), primitive.NewObjectID(), &entity.UserUpdate{Banned: &banned})
		assert.ErrorIs(mt, err, entity.ErrUserNotFound)
	})
}

func TestUsersFilter(t *testing.T) {
	assert.Equal(t, bson.D{}, usersFilter("   "))

	byName := usersFilter(" an.n ")
	assert.Equal(t, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: primitive.Regex{Pattern: `an\.n`, Options: "i"}}},
	}}}, byName)

	byId := usersFilter("12345")
	assert.Equal(t, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "chat_id", Value: int64(12345)}},
		bson.D{{Key: "username", Value: primitive.Regex{Pattern: "12345", Options: "i"}}},
	}}}, byId)
}

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "explicit", databaseName(config.MongoConfig{URI: "mongodb://h/fromuri", Database: "explicit"}))
	assert.Equal(t, "fromuri", databaseName(config.MongoConfig{URI: "mongodb://h/fromuri"}))
	assert.Equal(t, defaultDatabase, databaseName(config.MongoConfig{URI: "mongodb://h"}))
}

// updateStatement returns the single statement of the last update command sent.
func updateStatement(mt *mtest.T) bson.Raw {
	started := mt.GetStartedEvent()
	require.NotNil(mt, started)
	require.Equal(mt, "update", started.CommandName)
	assert.Equal(mt, "maintenance", started.Command.Lookup("update").StringValue())
	statements, err := started.Command.Lookup("updates").Array().Values()
	require.NoError(mt, err)
	require.Len(mt, statements, 1)
	return statements[0].Document()
}

func elements(mt *mtest.T, doc bson.Raw) []bson.RawElement {
	elems, err := doc.Elements()
	require.NoError(mt, err)
	return elems
}
