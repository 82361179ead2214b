// Command adminctl manages admin accounts directly in the database:
//
//	adminctl -conf config.yml create -chat 123456 -password secret1
//	adminctl -conf config.yml passwd -chat 123456 -password secret2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"
	"tgadmin/entity"
	"tgadmin/impl/auth"
	"tgadmin/internal/config"
	"tgadmin/internal/database"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminStore interface {
	CreateAdmin(ctx context.Context, admin *entity.Admin) error
	GetAdminByChatId(ctx context.Context, chatId int64) (*entity.Admin, error)
	SetAdminPassword(ctx context.Context, id primitive.ObjectID, password string) error
}

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Usage = usage
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, conf.Mongo)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = db.Disconnect(context.Background())
	}()

	if err = run(ctx, db, flag.Args(), os.Stdout); err != nil {
		log.Print(err)
		cancel()
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	_, _ = fmt.Fprintf(out, "usage: %s [-conf path] create|passwd -chat <chat id> -password <password>\n", os.Args[0])
	flag.PrintDefaults()
}

func run(ctx context.Context, store AdminStore, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("command required: create or passwd")
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(out)
	chatId := fs.Int64("chat", 0, "admin telegram chat id")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *chatId == 0 {
		return errors.New("-chat is required")
	}
	if err := entity.CheckPasswordLength(*password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}

	switch args[0] {
	case "create":
		admin := &entity.Admin{ChatId: *chatId, Password: hash}
		if err = store.CreateAdmin(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		_, _ = fmt.Fprintf(out, "admin %s created for chat %d\n", admin.Id.Hex(), admin.ChatId)
	case "passwd":
		admin, err := store.GetAdminByChatId(ctx, *chatId)
		if err != nil {
			return fmt.Errorf("find admin: %w", err)
		}
		if err = store.SetAdminPassword(ctx, admin.Id, hash); err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		_, _ = fmt.Fprintf(out, "password updated for admin %s\n", admin.Id.Hex())
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
