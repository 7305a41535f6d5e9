package profile

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Sentinels matched by PersistenceError.Is.
var (
	ErrNotFound         = errors.New("profile not found")
	ErrPermissionDenied = errors.New("profile store permission denied")
	ErrUnavailable      = errors.New("profile store unavailable")
)

// Kind classifies a persistence failure.
type Kind string

const (
	KindPermission  Kind = "permission"
	KindUnavailable Kind = "unavailable"
	KindNotFound    Kind = "not_found"
	KindOther       Kind = "other"
)

// PersistenceError is returned by every Store implementation when a read
// or write fails.
type PersistenceError struct {
	Op     string
	UserID string
	Kind   Kind
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("profile %s %q (%s): %v", e.Op, e.UserID, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets callers test the kind with errors.Is(err, ErrUnavailable) and friends.
func (e *PersistenceError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrPermissionDenied:
		return e.Kind == KindPermission
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	}
	return false
}

// KindOf returns the persistence kind of err, or KindOther.
func KindOf(err error) Kind {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindOther
}

func newError(op, userID string, kind Kind, err error) *PersistenceError {
	return &PersistenceError{Op: op, UserID: userID, Kind: kind, Err: err}
}

// classifyPostgres maps a pgx error to a Kind. SQLSTATE 42501 is
// insufficient_privilege; class 28 is invalid authorization.
func classifyPostgres(err error) Kind {
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "42501" || strings.HasPrefix(pgErr.Code, "28") {
			return KindPermission
		}
		return KindOther
	}
	if pgconn.Timeout(err) || isTransient(err) {
		return KindUnavailable
	}
	return KindOther
}

// classifyMongo maps a driver error to a Kind. Code 13 is Unauthorized,
// 18 AuthenticationFailed.
func classifyMongo(err error) Kind {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return KindNotFound
	}
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(13) || se.HasErrorCode(18)) {
		return KindPermission
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || isTransient(err) {
		return KindUnavailable
	}
	return KindOther
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
