package kvs

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyKey       = errors.New("empty key")
	ErrSerialization  = errors.New("serialization failed")
	ErrMigration      = errors.New("migration failed")
	ErrUnknownVersion = errors.New("stored version is newer than supported")
)

// StorageError é o único tipo de erro devolvido pelo Store.
// Op é a operação ("store", "get", "remove", ...) e Key pode ser vazia
// em operações sem chave (clearAll).
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("kvs %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("kvs %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, key string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Key: key, Err: err}
}
