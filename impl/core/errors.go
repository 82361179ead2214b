package core

import (
	"errors"
	"tgadmin/entity"
)

func isNotFound(err error) bool {
	return errors.Is(err, entity.ErrNotFound)
}
