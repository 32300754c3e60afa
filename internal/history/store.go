package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketPredictions = []byte("predictions")
	bucketIDs         = []byte("prediction_ids")
)

var ErrNotFound = errors.New("prediction not found")

// Recorder persists predictions. Store writes locally; the cluster package
// provides a replicated implementation.
type Recorder interface {
	Record(rec Record) error
}

// Reader serves stored predictions.
type Reader interface {
	Get(id string) (Record, error)
	Recent(limit int) ([]Record, error)
}

// Store keeps predictions in a bbolt file ordered by creation time.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPredictions); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketIDs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// key sorts chronologically: big-endian unix nanos followed by the id.
func key(rec Record) []byte {
	k := make([]byte, 8, 8+len(rec.ID))
	binary.BigEndian.PutUint64(k, uint64(rec.CreatedAt.UnixNano()))
	return append(k, rec.ID...)
}

// Record stores rec. Writing the same id twice replaces the earlier copy.
func (s *Store) Record(rec Record) error {
	if rec.ID == "" {
		return errors.New("record id is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		preds := tx.Bucket(bucketPredictions)
		ids := tx.Bucket(bucketIDs)

		if old := ids.Get([]byte(rec.ID)); old != nil {
			if err := preds.Delete(old); err != nil {
				return err
			}
		}
		k := key(rec)
		if err := preds.Put(k, data); err != nil {
			return err
		}
		return ids.Put([]byte(rec.ID), k)
	})
}

func (s *Store) Get(id string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		k := tx.Bucket(bucketIDs).Get([]byte(id))
		if k == nil {
			return ErrNotFound
		}
		data := tx.Bucket(bucketPredictions).Get(k)
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		return []Record{}, nil
	}
	out := make([]Record, 0, limit)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketPredictions).Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode record %x: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// All returns every record, oldest first.
func (s *Store) All() ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPredictions).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode record %x: %w", k, err)
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

// Restore replaces the whole history with recs.
func (s *Store) Restore(recs []Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPredictions, bucketIDs} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		preds, err := tx.CreateBucket(bucketPredictions)
		if err != nil {
			return err
		}
		ids, err := tx.CreateBucket(bucketIDs)
		if err != nil {
			return err
		}

		for _, rec := range recs {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal record %s: %w", rec.ID, err)
			}
			k := key(rec)
			if err := preds.Put(k, data); err != nil {
				return err
			}
			if err := ids.Put([]byte(rec.ID), k); err != nil {
				return err
			}
		}
		return nil
	})
}
