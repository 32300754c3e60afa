package cluster

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/raft"

	"github.com/rupamthxt/symptomrank/internal/history"
)

const OpRecord = "record"

// Command is what we replicate across the network
type Command struct {
	Op     string         `json:"op"`
	Record history.Record `json:"record"`
}

// FSM applies replicated history commands to the local store.
type FSM struct {
	store *history.Store
}

func NewFSM(store *history.Store) *FSM {
	return &FSM{store: store}
}

func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}

	switch cmd.Op {
	case OpRecord:
		return f.store.Record(cmd.Record)
	default:
		return fmt.Errorf("unknown command: %s", cmd.Op)
	}
}

func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	recs, err := f.store.All()
	if err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	return &historySnapshot{records: recs}, nil
}

func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var recs []history.Record
	if err := json.NewDecoder(rc).Decode(&recs); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return f.store.Restore(recs)
}

// historySnapshot is a point-in-time copy of every record.
type historySnapshot struct {
	records []history.Record
}

func (s *historySnapshot) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(s.records); err != nil {
		sink.Cancel()
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return sink.Close()
}

func (s *historySnapshot) Release() {}
