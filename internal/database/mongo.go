package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"tgadmin/entity"
	"tgadmin/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	collectionAdmins      = "admins"
	collectionUsers       = "users"
	collectionMaintenance = "maintenance"
	defaultDatabase       = "admin_panel"
)

type MongoDB struct {
	client   *mongo.Client
	database string
}

// Connect opens a pooled client and verifies the connection.
func Connect(ctx context.Context, conf config.MongoConfig) (*MongoDB, error) {
	clientOptions := options.Client().
		ApplyURI(conf.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	return NewWithClient(client, databaseName(conf)), nil
}

func NewWithClient(client *mongo.Client, database string) *MongoDB {
	return &MongoDB{
		client:   client,
		database: database,
	}
}

func databaseName(conf config.MongoConfig) string {
	if conf.Database != "" {
		return conf.Database
	}
	if cs, err := connstring.ParseAndValidate(conf.URI); err == nil && cs.Database != "" {
		return cs.Database
	}
	return defaultDatabase
}

func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

// EnsureIndexes creates the indexes the queries rely on; existing indexes are left as is.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection(collectionAdmins).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("admins index: %w", err)
	}
	_, err = m.collection(collectionUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "register_date", Value: -1}}},
		{Keys: bson.D{{Key: "chat_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	return nil
}

func findOne[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, notFound error) (*T, error) {
	var doc T
	err := collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &doc, nil
}

func (m *MongoDB) GetAdminByChatId(ctx context.Context, chatId int64) (*entity.Admin, error) {
	filter := bson.D{{Key: "chat_id", Value: chatId}}
	return findOne[entity.Admin](ctx, m.collection(collectionAdmins), filter, entity.ErrAdminNotFound)
}

func (m *MongoDB) GetAdmin(ctx context.Context, id primitive.ObjectID) (*entity.Admin, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	return findOne[entity.Admin](ctx, m.collection(collectionAdmins), filter, entity.ErrAdminNotFound)
}

func (m *MongoDB) CreateAdmin(ctx context.Context, admin *entity.Admin) error {
	if admin.Id.IsZero() {
		admin.Id = primitive.NewObjectID()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	_, err := m.collection(collectionAdmins).InsertOne(ctx, admin)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("admin with chat id %d already exists", admin.ChatId)
	}
	return err
}

func (m *MongoDB) SetAdminPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: password},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	result, err := m.collection(collectionAdmins).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrAdminNotFound
	}
	return nil
}

// UpsertMaintenance writes the singleton document: the empty filter always
// targets the one existing record or creates it.
func (m *MongoDB) UpsertMaintenance(ctx context.Context, update *entity.MaintenanceUpdate) error {
	doc := bson.D{{Key: "$set", Value: update}}
	if update.Enabled == nil {
		doc = append(doc, bson.E{Key: "$setOnInsert", Value: bson.D{{Key: "enabled", Value: false}}})
	}
	opts := options.Update().SetUpsert(true)
	_, err := m.collection(collectionMaintenance).UpdateOne(ctx, bson.D{}, doc, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert: %w", err)
	}
	return nil
}

func (m *MongoDB) GetMaintenance(ctx context.Context) ([]*entity.Maintenance, error) {
	cursor, err := m.collection(collectionMaintenance).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*entity.Maintenance, 0, 1)
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongodb decode: %w", err)
	}
	return records, nil
}

// FindUsers returns one page of users, newest registrations first, and the
// total number of users matching the query.
func (m *MongoDB) FindUsers(ctx context.Context, query entity.UserQuery) ([]*entity.User, int64, error) {
	collection := m.collection(collectionUsers)
	filter := usersFilter(query.Query)

	opts := options.Find().
		SetSort(bson.D{{Key: "register_date", Value: -1}}).
		SetSkip(query.Skip()).
		SetLimit(entity.UsersPageSize)
	users, err := m.findUsers(ctx, collection, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb count: %w", err)
	}
	return users, total, nil
}

func (m *MongoDB) LatestUsers(ctx context.Context, limit int64) ([]*entity.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "register_date", Value: -1}}).
		SetLimit(limit)
	return m.findUsers(ctx, m.collection(collectionUsers), bson.D{}, opts)
}

func (m *MongoDB) findUsers(ctx context.Context, collection *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]*entity.User, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*entity.User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongodb decode: %w", err)
	}
	return users, nil
}

func (m *MongoDB) GetUser(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	return findOne[entity.User](ctx, m.collection(collectionUsers), filter, entity.ErrUserNotFound)
}

func (m *MongoDB) UpdateUser(ctx context.Context, id primitive.ObjectID, update *entity.UserUpdate) error {
	filter := bson.D{{Key: "_id", Value: id}}
	result, err := m.collection(collectionUsers).UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: update}})
	if err != nil {
		return fmt.Errorf("mongodb update: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

// CountUsers returns the number of all users and of banned users.
func (m *MongoDB) CountUsers(ctx context.Context) (int64, int64, error) {
	collection := m.collection(collectionUsers)
	total, err := collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, 0, fmt.Errorf("mongodb count: %w", err)
	}
	banned, err := collection.CountDocuments(ctx, bson.D{{Key: "banned", Value: true}})
	if err != nil {
		return 0, 0, fmt.Errorf("mongodb count banned: %w", err)
	}
	return total, banned, nil
}

// usersFilter matches a numeric query against chat_id exactly and any query
// against username as a case-insensitive substring.
func usersFilter(query string) bson.D {
	query = strings.TrimSpace(query)
	if query == "" {
		return bson.D{}
	}
	or := bson.A{
		bson.D{{Key: "username", Value: primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}},
	}
	if chatId, err := strconv.ParseInt(query, 10, 64); err == nil {
		or = append(bson.A{bson.D{{Key: "chat_id", Value: chatId}}}, or...)
	}
	return bson.D{{Key: "$or", Value: or}}
}
