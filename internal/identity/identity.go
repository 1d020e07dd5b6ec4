// Package identity owns the durable client identifier the backend keys
// sessions by.
package identity

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/store"
)

// Prefix is prepended to every generated identifier.
const Prefix = "user_"

// Store reads and lazily creates the client identity in a preference store.
type Store struct {
	kv  store.KV
	log *logging.Logger

	// newRandom is the preferred, cryptographically strong source.
	newRandom func() (uuid.UUID, error)

	mu     sync.Mutex
	cached domain.ClientIdentity
}

// New creates an identity store on top of kv.
func New(kv store.KV, log *logging.Logger) *Store {
	return &Store{
		kv:        kv,
		log:       log.Sub("identity"),
		newRandom: uuid.NewRandom,
	}
}

// GetOrCreate returns the stored identity, generating and persisting one
// when none exists. It never fails: storage errors are logged and the
// generated value is still returned and remembered for this process.
func (s *Store) GetOrCreate() domain.ClientIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached
	}

	stored, ok, err := s.kv.Get(store.KeyClientID)
	if err != nil {
		s.log.Warn().Err(err).Msg("reading stored client id failed")
	}
	if ok && stored != "" {
		s.log.Debug().Str("clientId", stored).Msg("using stored client id")
		s.cached = domain.ClientIdentity(stored)
		return s.cached
	}

	id := domain.ClientIdentity(Prefix + s.generate())
	if err := s.kv.Set(store.KeyClientID, id.String()); err != nil {
		s.log.Warn().Err(err).Msg("persisting client id failed; it will not survive a restart")
	} else {
		s.log.Info().Str("clientId", id.String()).Msg("generated new client id")
	}
	s.cached = id
	return id
}

// Peek returns the stored identity without creating one.
func (s *Store) Peek() (domain.ClientIdentity, bool, error) {
	v, ok, err := s.kv.Get(store.KeyClientID)
	if err != nil || !ok || v == "" {
		return "", false, err
	}
	return domain.ClientIdentity(v), true, nil
}

// Reset forgets the stored identity; the next GetOrCreate generates a new one.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = ""
	return s.kv.Delete(store.KeyClientID)
}

func (s *Store) generate() string {
	u, err := s.newRandom()
	if err == nil {
		return u.String()
	}
	s.log.Warn().Err(err).Msg("secure random source unavailable; using pseudo-random fallback")
	return pseudoRandomUUID()
}

// pseudoRandomUUID lays out a version 4 UUID from a non-cryptographic source.
func pseudoRandomUUID() string {
	var u uuid.UUID
	for i := range u {
		u[i] = byte(rand.IntN(256))
	}
	u[6] = (u[6] & 0x0f) | 0x40 // version 4
	u[8] = (u[8] & 0x3f) | 0x80 // RFC 4122 variant
	return u.String()
}
