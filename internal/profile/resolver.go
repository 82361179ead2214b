// Package profile resolves Telegram display data for chat ids and caches the result.
//
// Lookups are best-effort: every failure degrades to a partially filled
// profile which is cached like a successful one.
package profile

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"tgadmin/entity"
	"tgadmin/internal/metrics"
	"tgadmin/lib/sl"

	"github.com/maypok86/otter"
	"golang.org/x/sync/singleflight"
)

const defaultCapacity = 10_000

// Chat is the part of a Telegram chat used to build a profile.
type Chat struct {
	FirstName string
	LastName  string
	Username  string
}

// Directory is the Telegram lookup backend. Implemented by internal/telegram.
type Directory interface {
	Chat(chatId int64) (*Chat, error)
	PhotoFileId(userId int64) (string, error)
	FileURL(fileId string) (string, error)
}

type Config struct {
	Capacity int
	// TTL of zero keeps entries until they are evicted by capacity.
	TTL time.Duration
}

type Resolver struct {
	dir   Directory
	cache otter.Cache[int64, entity.Profile]
	group singleflight.Group
	log   *slog.Logger
}

func New(dir Directory, conf Config, log *slog.Logger) (*Resolver, error) {
	capacity := conf.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	builder := otter.MustBuilder[int64, entity.Profile](capacity)
	var cache otter.Cache[int64, entity.Profile]
	var err error
	if conf.TTL > 0 {
		cache, err = builder.WithTTL(conf.TTL).Build()
	} else {
		cache, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("profile cache with capacity %d: %w", capacity, err)
	}

	return &Resolver{
		dir:   dir,
		cache: cache,
		log:   log.With(sl.Module("profile")),
	}, nil
}

// Resolve returns the cached profile for chatId, looking it up on a miss.
// Concurrent misses for the same id share one lookup.
func (r *Resolver) Resolve(chatId int64) entity.Profile {
	if p, ok := r.cache.Get(chatId); ok {
		metrics.ProfileCacheLookup(true)
		return p
	}
	metrics.ProfileCacheLookup(false)

	if r.dir == nil {
		return entity.Profile{}
	}

	v, _, _ := r.group.Do(strconv.FormatInt(chatId, 10), func() (interface{}, error) {
		p := r.lookup(chatId)
		r.cache.Set(chatId, p)
		return p, nil
	})
	return v.(entity.Profile)
}

// Cached returns the stored profile without triggering a lookup.
func (r *Resolver) Cached(chatId int64) (entity.Profile, bool) {
	return r.cache.Get(chatId)
}

func (r *Resolver) Size() int {
	return r.cache.Size()
}

func (r *Resolver) Close() {
	r.cache.Close()
}

func (r *Resolver) lookup(chatId int64) entity.Profile {
	var p entity.Profile
	log := r.log.With(sl.ChatId(chatId))

	chat, err := r.dir.Chat(chatId)
	if err != nil {
		metrics.DirectoryFailure("chat")
		log.Debug("profile lookup", sl.Err(err))
		return p
	}
	name := joinName(chat.FirstName, chat.LastName)
	p.Name = &name
	if chat.Username != "" {
		username := "@" + chat.Username
		p.Username = &username
	}

	fileId, err := r.dir.PhotoFileId(chatId)
	if err != nil {
		metrics.DirectoryFailure("photos")
		log.Debug("profile photos lookup", sl.Err(err))
		return p
	}
	if fileId == "" {
		return p
	}

	url, err := r.dir.FileURL(fileId)
	if err != nil {
		metrics.DirectoryFailure("file")
		log.Debug("profile photo file lookup", sl.Err(err))
		return p
	}
	p.ImgURL = &url
	return p
}

func joinName(parts ...string) string {
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			names = append(names, part)
		}
	}
	return strings.Join(names, " ")
}
