package bolt

import (
	"encoding/binary"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/guardia/internal/guard/common/clock"
	"github.com/haukened/guardia/internal/guard/domain"
	"github.com/haukened/guardia/internal/guard/repos/state"
)

var (
	bucketState = []byte("state")
	bucketMeta  = []byte("meta")

	metaSaves = []byte("saves")
	metaSaved = []byte("saved")
)

// Store implements state.Store using bbolt. The whole state lives under
// one key in the state bucket.
type Store struct {
	db    *bbolt.DB
	key   []byte
	clock clock.Clock
}

type bucketCreator interface {
	CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error)
}

func ensureBuckets(tx bucketCreator) error {
	for _, name := range [][]byte{bucketState, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("create bucket %s: %w", name, err)
		}
	}
	return nil
}

// ensureBucketsFn is a seam for tests.
var ensureBucketsFn = func(tx bucketCreator) error { return ensureBuckets(tx) }

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path, key string, clk clock.Clock) (*Store, error) {
	if key == "" {
		return nil, fmt.Errorf("state key must not be empty")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error { return ensureBucketsFn(tx) }); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, key: []byte(key), clock: clk}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Load returns the saved state, state.ErrNotFound when the key is absent and
// a wrapped state.ErrCorrupt when the document does not decode.
func (s *Store) Load() (domain.State, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return nil
		}
		if v := b.Get(s.key); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return domain.State{}, err
	}
	if raw == nil {
		return domain.State{}, state.ErrNotFound
	}
	return state.Decode(raw)
}

// Save encodes and replaces the state document and bumps the meta counters
// in the same transaction.
func (s *Store) Save(st domain.State) error {
	raw, err := state.Encode(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	now := s.clock.Now().Unix()
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketState).Put(s.key, raw); err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		var saves uint64
		if v := meta.Get(metaSaves); len(v) == 8 {
			saves = binary.BigEndian.Uint64(v)
		}
		sbuf := make([]byte, 8)
		tbuf := make([]byte, 8)
		binary.BigEndian.PutUint64(sbuf, saves+1)
		binary.BigEndian.PutUint64(tbuf, uint64(now))
		if err := meta.Put(metaSaves, sbuf); err != nil {
			return err
		}
		return meta.Put(metaSaved, tbuf)
	})
}

// Stats reads the meta counters in a read-only transaction.
func (s *Store) Stats() state.StoreStats {
	st := state.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketState); b != nil {
			st.Bytes = len(b.Get(s.key))
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(metaSaves); len(v) == 8 {
				st.Saves = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(metaSaved); len(v) == 8 {
				st.SavedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

var _ state.Store = (*Store)(nil)
