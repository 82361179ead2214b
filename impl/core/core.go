package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"tgadmin/entity"
	"tgadmin/lib/clock"
	"tgadmin/lib/sl"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAdminName = "Admin"
	systemHealthGood = "Good"
	enrichWorkers    = 8
)

// Database is the credential store. Implemented by internal/database.
type Database interface {
	GetAdminByChatId(ctx context.Context, chatId int64) (*entity.Admin, error)
	GetAdmin(ctx context.Context, id primitive.ObjectID) (*entity.Admin, error)
	SetAdminPassword(ctx context.Context, id primitive.ObjectID, password string) error
	UpsertMaintenance(ctx context.Context, update *entity.MaintenanceUpdate) error
	GetMaintenance(ctx context.Context) ([]*entity.Maintenance, error)
	FindUsers(ctx context.Context, query entity.UserQuery) ([]*entity.User, int64, error)
	LatestUsers(ctx context.Context, limit int64) ([]*entity.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update *entity.UserUpdate) error
	CountUsers(ctx context.Context) (int64, int64, error)
}

type ProfileResolver interface {
	Resolve(chatId int64) entity.Profile
}

type AuthService interface {
	IssueToken(admin *entity.Admin) (string, error)
	ParseToken(token string) (*entity.Identity, error)
	CheckPassword(stored, password string) (bool, bool)
	Hash(password string) (string, error)
}

type Core struct {
	db       Database
	profiles ProfileResolver
	auth     AuthService
	log      *slog.Logger
	now      func() time.Time
}

func New(db Database, profiles ProfileResolver, auth AuthService, log *slog.Logger) *Core {
	if db == nil {
		panic("database is nil")
	}
	if auth == nil {
		panic("auth service is nil")
	}
	return &Core{
		db:       db,
		profiles: profiles,
		auth:     auth,
		log:      log.With(sl.Module("core")),
		now:      time.Now,
	}
}

func (c *Core) AuthenticateByToken(token string) (*entity.Identity, error) {
	return c.auth.ParseToken(token)
}

func (c *Core) Login(ctx context.Context, credentials entity.Credentials) (*entity.LoginResult, error) {
	if credentials.ChatId == 0 || credentials.Password == "" {
		return nil, entity.Invalid("Missing credentials")
	}
	log := c.log.With(sl.ChatId(credentials.ChatId))

	admin, err := c.db.GetAdminByChatId(ctx, credentials.ChatId)
	if err != nil {
		if isNotFound(err) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}

	ok, legacy := c.auth.CheckPassword(admin.Password, credentials.Password)
	if !ok {
		return nil, entity.ErrInvalidCredentials
	}
	if legacy {
		c.upgradePassword(ctx, admin, credentials.Password)
	}

	token, err := c.auth.IssueToken(admin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	log.Info("admin logged in", slog.String("admin_id", admin.Id.Hex()))

	return &entity.LoginResult{
		Token:   token,
		AdminId: admin.Id.Hex(),
	}, nil
}

// upgradePassword replaces a legacy plaintext password with its hash; failures only get logged.
func (c *Core) upgradePassword(ctx context.Context, admin *entity.Admin, password string) {
	log := c.log.With(slog.String("admin_id", admin.Id.Hex()))
	hash, err := c.auth.Hash(password)
	if err != nil {
		log.Warn("hash legacy password", sl.Err(err))
		return
	}
	if err = c.db.SetAdminPassword(ctx, admin.Id, hash); err != nil {
		log.Warn("upgrade legacy password", sl.Err(err))
		return
	}
	log.Info("legacy password upgraded")
}

func (c *Core) UpdateMaintenance(ctx context.Context, update *entity.MaintenanceUpdate) error {
	update.UpdatedAt = c.now().UTC()
	if err := c.db.UpsertMaintenance(ctx, update); err != nil {
		return fmt.Errorf("upsert maintenance: %w", err)
	}
	return nil
}

func (c *Core) Maintenance(ctx context.Context) ([]*entity.Maintenance, error) {
	return c.db.GetMaintenance(ctx)
}

func (c *Core) AdminProfile(ctx context.Context, identity entity.Identity, adminId string) (*entity.AdminProfile, error) {
	if identity.AdminId != adminId {
		return nil, entity.ErrForbidden
	}
	id, err := parseId(adminId)
	if err != nil {
		return nil, err
	}
	admin, err := c.db.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := c.resolve(admin.ChatId)
	return &entity.AdminProfile{
		ChatId:   admin.ChatId,
		Name:     profile.DisplayName(defaultAdminName),
		Username: profile.Username,
		ImgURL:   profile.ImgURL,
	}, nil
}

func (c *Core) ChangePassword(ctx context.Context, identity entity.Identity, adminId string, change *entity.PasswordChange) error {
	if err := change.Validate(); err != nil {
		return err
	}
	if identity.AdminId != adminId {
		return entity.ErrForbidden
	}
	id, err := parseId(adminId)
	if err != nil {
		return err
	}
	admin, err := c.db.GetAdmin(ctx, id)
	if err != nil {
		return err
	}
	if ok, _ := c.auth.CheckPassword(admin.Password, change.CPassword); !ok {
		return entity.ErrWrongPassword
	}

	hash, err := c.auth.Hash(change.NPassword)
	if err != nil {
		return err
	}
	if err = c.db.SetAdminPassword(ctx, id, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	c.log.With(slog.String("admin_id", adminId)).Info("password changed")
	return nil
}

func (c *Core) Users(ctx context.Context, query entity.UserQuery) (*entity.UserPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	users, total, err := c.db.FindUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return &entity.UserPage{
		Users: c.enrich(users),
		Page:  query.Page,
		Pages: (total + entity.UsersPageSize - 1) / entity.UsersPageSize,
		Total: total,
	}, nil
}

func (c *Core) User(ctx context.Context, userId string) (*entity.UserRow, error) {
	id, err := parseId(userId)
	if err != nil {
		return nil, err
	}
	user, err := c.db.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	row := c.row(user)
	return &row, nil
}

func (c *Core) UpdateUser(ctx context.Context, userId string, update *entity.UserUpdate) error {
	id, err := parseId(userId)
	if err != nil {
		return err
	}
	return c.db.UpdateUser(ctx, id, update)
}

func (c *Core) LatestUsers(ctx context.Context) ([]entity.UserRow, error) {
	users, err := c.db.LatestUsers(ctx, entity.LatestUsersSize)
	if err != nil {
		return nil, fmt.Errorf("latest users: %w", err)
	}
	return c.enrich(users), nil
}

func (c *Core) Dashboard(ctx context.Context) (*entity.Dashboard, error) {
	total, banned, err := c.db.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &entity.Dashboard{
		Total:        total,
		Active:       total - banned,
		Banned:       banned,
		SystemHealth: systemHealthGood,
	}, nil
}

// enrich resolves profiles for all users concurrently, keeping the input order.
func (c *Core) enrich(users []*entity.User) []entity.UserRow {
	rows := make([]entity.UserRow, len(users))
	var g errgroup.Group
	g.SetLimit(enrichWorkers)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			rows[i] = c.row(user)
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

func (c *Core) row(user *entity.User) entity.UserRow {
	return entity.UserRow{
		User:    user,
		Profile: c.resolve(user.ChatId),
		Time:    clock.Since(user.RegisterDate, c.now()),
	}
}

func (c *Core) resolve(chatId int64) entity.Profile {
	if c.profiles == nil {
		return entity.Profile{}
	}
	return c.profiles.Resolve(chatId)
}

func parseId(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, entity.Invalid("Invalid id")
	}
	return oid, nil
}
