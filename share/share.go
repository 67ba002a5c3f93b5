// Package share stores chats that users publish under /api/share/{user}/{id}.
package share

import (
	"context"
	"regexp"
	"time"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no share exists for a user and id.
var ErrNotFound = apperrors.ErrNotFound

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Object is a stored share. Data is opaque to the store.
type Object struct {
	ContentType string
	Data        []byte
	Uploaded    time.Time
}

// Info describes a share without its body.
type Info struct {
	ID       string    `json:"id"`
	Size     int       `json:"size"`
	Uploaded time.Time `json:"uploaded"`
}

type Store interface {
	Put(ctx context.Context, user, id string, obj Object) error
	Get(ctx context.Context, user, id string) (Object, error)
	// List returns the user's shares, newest first.
	List(ctx context.Context, user string) ([]Info, error)
	Delete(ctx context.Context, user, id string) error
}

// Key is the object key for a share.
func Key(user, id string) string {
	return user + "/" + id
}

// ValidateName checks a user or id path segment.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) || name == ".." {
		return errors.Wrapf(apperrors.ErrInvalidRequest, "invalid name %q", name)
	}
	return nil
}
