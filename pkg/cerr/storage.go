package cerr

import (
	"errors"
	"fmt"

	"github.com/kazz187/wetracker/pkg/storage"
)

// The wrappers below turn storage failures on one record into client errors.
// record names the kind ("task", "profile"); the id only reaches the logs.

func WrapStorageReadError(record, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		return NewError(NotFound, record+" not found", fmt.Errorf("read %s: %w", describe(record, id), err))
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to read %s: %w", describe(record, id), err))
}

func WrapStorageWriteError(record, id string, err error) error {
	if errors.Is(err, storage.ErrInvalidKey) {
		return NewError(InvalidArgument, "invalid "+record+" id", err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to write %s: %w", describe(record, id), err))
}

func WrapStorageDeleteError(record, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		return NewError(NotFound, record+" not found", fmt.Errorf("delete %s: %w", describe(record, id), err))
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to delete %s: %w", describe(record, id), err))
}

// WrapStorageListError is for listing every record under a prefix.
func WrapStorageListError(records string, err error) error {
	return NewError(Internal, "server error", fmt.Errorf("failed to list %s: %w", records, err))
}

func describe(record, id string) string {
	return fmt.Sprintf("%s %q", record, id)
}
