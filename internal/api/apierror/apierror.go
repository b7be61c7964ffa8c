package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

var (
	ErrInternal = Errorf("The server errored out while processing your request. Please try again, and if the error persists, contact the gallery operators.")
	ErrDatabase = Errorf("The database system encountered an error while processing your request. This is probably a transient error, please try again.")
)

// Error is an error that can be presented to end-users
type Error struct {
	err error
}

func (e Error) Error() string {
	return e.err.Error()
}

// Errorf formats an error message for end-users. Remember not to leak sensitive information in error messages
func Errorf(format string, args ...any) Error {
	return Error{
		err: fmt.Errorf(format, args...),
	}
}

// Respond writes err as a JSON error response, translating internal errors
// into user-safe messages. Raw errors are logged, never sent to the client.
func Respond(w http.ResponseWriter, err error, log logrus.FieldLogger) {
	status := http.StatusInternalServerError
	message := ErrInternal.Error()

	var userErr Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &userErr):
		status = http.StatusBadRequest
		message = userErr.Error()
	case errors.As(err, &pgErr):
		message = ErrDatabase.Error()
		log.WithError(err).Error("database error")
	case errors.Is(err, pgx.ErrNoRows):
		status = http.StatusNotFound
		message = "Object was not found."
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
		message = "Request canceled."
	default:
		log.WithError(err).Error("unhandled error in the API error responder")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
