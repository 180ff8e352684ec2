// Package session implements the login session store.
//
// Sessions are opaque random tokens mapped to usernames. They live in a
// BadgerDB keyspace with a TTL, so expiry is enforced by the database and
// restarting with an on-disk store keeps users logged in.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a token does not resolve to a live session.
var ErrNotFound = errors.New("session not found")

// keyPrefix namespaces session entries inside the database.
var keyPrefix = []byte("session/")

// Session is the stored state for one login.
type Session struct {
	// Token is the opaque session identifier handed to the client
	Token string `json:"token"`

	// Username is the authenticated user
	Username string `json:"username"`

	// CreatedAt is when the session was issued
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions in BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens an on-disk session store at the given directory, creating it if
// needed.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store at %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens a session store that keeps all sessions in memory.
// Sessions are lost when the process exits.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory session store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create issues a new session for the given username, valid for ttl.
func (s *Store) Create(username string, ttl time.Duration) (*Session, error) {
	session := &Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key(session.Token), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// Resolve looks up a session by token.
// Returns ErrNotFound for unknown or expired tokens.
func (s *Store) Resolve(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var session Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(token))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	return &session, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *Store) Delete(token string) error {
	if token == "" {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(token))
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func key(token string) []byte {
	return append(append([]byte{}, keyPrefix...), token...)
}
