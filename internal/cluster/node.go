package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb/v2"

	"github.com/rupamthxt/symptomrank/internal/history"
	"github.com/rupamthxt/symptomrank/internal/metrics"
)

const (
	RaftTimeout = 10 * time.Second
)

var ErrNotLeader = errors.New("not the leader of the history cluster")

// Config describes the local raft replica.
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string
}

// RaftNode replicates prediction history through raft. Writes must go to
// the leader; reads are served from the local store.
type RaftNode struct {
	Raft *raft.Raft
	FSM  *FSM
	// we keep a reference to the store for read only operations
	Store *history.Store

	id          raft.ServerID
	transport   *raft.NetworkTransport
	logStore    *raftboltdb.BoltStore
	stableStore *raftboltdb.BoltStore
}

func NewRaftNode(cfg Config, store *history.Store, logger hclog.Logger) (*RaftNode, error) {
	fsm := NewFSM(store)

	raftDir := filepath.Join(cfg.DataDir, "raft")
	if err := os.MkdirAll(raftDir, 0o755); err != nil {
		return nil, fmt.Errorf("create raft dir: %w", err)
	}

	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(cfg.NodeID)
	config.Logger = logger

	transport, err := raft.NewTCPTransportWithLogger(cfg.BindAddr, nil, 3, 10*time.Second, logger.Named("transport"))
	if err != nil {
		return nil, fmt.Errorf("raft transport: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(raftDir, "logs.dat"))
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("raft log store: %w", err)
	}

	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(raftDir, "stable.dat"))
	if err != nil {
		transport.Close()
		logStore.Close()
		return nil, fmt.Errorf("raft stable store: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStoreWithLogger(raftDir, 2, logger.Named("snapshot"))
	if err != nil {
		transport.Close()
		logStore.Close()
		stableStore.Close()
		return nil, fmt.Errorf("raft snapshot store: %w", err)
	}

	raftNode, err := raft.NewRaft(config, fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		transport.Close()
		logStore.Close()
		stableStore.Close()
		return nil, fmt.Errorf("start raft: %w", err)
	}

	return &RaftNode{
		Raft:        raftNode,
		FSM:         fsm,
		Store:       store,
		id:          config.LocalID,
		transport:   transport,
		logStore:    logStore,
		stableStore: stableStore,
	}, nil
}

// Addr is the address peers use to reach this node.
func (rn *RaftNode) Addr() string {
	return string(rn.transport.LocalAddr())
}

// Bootstrap forms a new cluster with this node as its only voter. A node
// that already has raft state is left untouched.
func (rn *RaftNode) Bootstrap() error {
	cfg := raft.Configuration{
		Servers: []raft.Server{
			{
				ID:      rn.id,
				Address: rn.transport.LocalAddr(),
			},
		},
	}
	err := rn.Raft.BootstrapCluster(cfg).Error()
	if errors.Is(err, raft.ErrCantBootstrap) {
		return nil
	}
	return err
}

// Join adds a voter. Only the leader can change membership.
func (rn *RaftNode) Join(nodeID, addr string) error {
	if rn.Raft.State() != raft.Leader {
		return ErrNotLeader
	}
	return rn.Raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, RaftTimeout).Error()
}

// Record replicates rec to the cluster and waits until it is applied locally.
func (rn *RaftNode) Record(rec history.Record) error {
	if rn.Raft.State() != raft.Leader {
		return ErrNotLeader
	}

	b, err := json.Marshal(Command{Op: OpRecord, Record: rec})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	future := rn.Raft.Apply(b, RaftTimeout)
	if err := future.Error(); err != nil {
		return err
	}

	if fsmErr, ok := future.Response().(error); ok {
		return fsmErr
	}
	return nil
}

func (rn *RaftNode) Get(id string) (history.Record, error) {
	return rn.Store.Get(id)
}

func (rn *RaftNode) Recent(limit int) ([]history.Record, error) {
	return rn.Store.Recent(limit)
}

// WatchState publishes the raft state gauge until ctx is done.
func (rn *RaftNode) WatchState(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		metrics.RaftState.Set(float64(rn.Raft.State()))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (rn *RaftNode) Close() error {
	err := rn.Raft.Shutdown().Error()
	if cerr := rn.transport.Close(); err == nil {
		err = cerr
	}
	if cerr := rn.logStore.Close(); err == nil {
		err = cerr
	}
	if cerr := rn.stableStore.Close(); err == nil {
		err = cerr
	}
	return err
}
