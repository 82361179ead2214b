// Package telegram wraps the Bot API calls used by the admin backend:
// profile lookups (getChat, getUserProfilePhotos, getFile) and alert delivery.
package telegram

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"tgadmin/internal/profile"
	"tgadmin/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

const DefaultAPIURL = "https://api.telegram.org"

type Config struct {
	Token      string
	APIURL     string
	AlertChats []int64
}

type Client struct {
	api        *tgbotapi.Bot
	apiURL     string
	alertChats []int64
	log        *slog.Logger
}

// New creates a Bot API client. The token is not checked against the API here,
// a bad token surfaces as failed lookups.
func New(conf Config, log *slog.Logger) (*Client, error) {
	if conf.Token == "" {
		return nil, fmt.Errorf("bot token is empty")
	}
	apiURL := strings.TrimSuffix(conf.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	api, err := tgbotapi.NewBot(conf.Token, &tgbotapi.BotOpts{
		BotClient: &tgbotapi.BaseBotClient{
			Client: http.Client{},
			DefaultRequestOpts: &tgbotapi.RequestOpts{
				APIURL: apiURL,
			},
		},
		DisableTokenCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}

	return &Client{
		api:        api,
		apiURL:     apiURL,
		alertChats: conf.AlertChats,
		log:        log.With(sl.Module("telegram")),
	}, nil
}

func (c *Client) Chat(chatId int64) (*profile.Chat, error) {
	chat, err := c.api.GetChat(chatId, nil)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &profile.Chat{
		FirstName: chat.FirstName,
		LastName:  chat.LastName,
		Username:  chat.Username,
	}, nil
}

// PhotoFileId returns the file id of the largest size of the newest profile photo,
// or an empty string when the user has no photo.
func (c *Client) PhotoFileId(userId int64) (string, error) {
	photos, err := c.api.GetUserProfilePhotos(userId, &tgbotapi.GetUserProfilePhotosOpts{
		Limit: 1,
	})
	if err != nil {
		return "", fmt.Errorf("get profile photos: %w", err)
	}
	if len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}
	sizes := photos.Photos[0]
	return sizes[len(sizes)-1].FileId, nil
}

func (c *Client) FileURL(fileId string) (string, error) {
	file, err := c.api.GetFile(fileId, nil)
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("get file: empty file path")
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.apiURL, c.api.Token, file.FilePath), nil
}

// Notify sends a MarkdownV2 message to every alert chat, falling back to plain
// text when Telegram rejects the markup.
func (c *Client) Notify(msg string) {
	if msg == "" {
		return
	}
	for _, chatId := range c.alertChats {
		_, err := c.api.SendMessage(chatId, msg, &tgbotapi.SendMessageOpts{
			ParseMode: "MarkdownV2",
		})
		if err == nil {
			continue
		}
		c.log.With(sl.ChatId(chatId)).Warn("sending message", sl.Err(err))
		_, err = c.api.SendMessage(chatId, msg, &tgbotapi.SendMessageOpts{})
		if err != nil {
			c.log.With(sl.ChatId(chatId)).Warn("sending plain message", sl.Err(err))
		}
	}
}

// Sanitize escapes MarkdownV2 reserved characters.
func Sanitize(input string) string {
	const reservedChars = "\\_{}#+-.!|()[]=*~>`"
	var b strings.Builder
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
