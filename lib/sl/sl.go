package sl

import (
	"fmt"
	"log/slog"
)

func Err(err error) slog.Attr {
	value := "<nil>"
	if err != nil {
		value = err.Error()
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(value),
	}
}

// Secret returns a string with the first 5 characters of the input string
// used to hide sensitive information in logs
func Secret(key, value string) slog.Attr {
	r := "***"
	if len(value) > 5 {
		r = fmt.Sprintf("%s***", value[0:5])
	}
	if value == "" {
		r = "?"
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(r),
	}
}

func Module(mod string) slog.Attr {
	return slog.Attr{
		Key:   "mod",
		Value: slog.StringValue(mod),
	}
}

func ChatId(id int64) slog.Attr {
	return slog.Int64("chat_id", id)
}
