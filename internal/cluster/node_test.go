package cluster

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupamthxt/symptomrank/internal/history"
)

func TestRaftNode_SingleNodeRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a raft node")
	}

	store := openStore(t)
	node, err := NewRaftNode(Config{
		NodeID:   "node-1",
		BindAddr: "127.0.0.1:0",
		DataDir:  t.TempDir(),
	}, store, hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { node.Close() })

	rec := history.NewRecord()
	assert.ErrorIs(t, node.Record(rec), ErrNotLeader)

	require.NoError(t, node.Bootstrap())
	require.Eventually(t, func() bool {
		return node.Raft.State() == raft.Leader
	}, 10*time.Second, 50*time.Millisecond)

	// a second bootstrap on a node with state is harmless
	require.NoError(t, node.Bootstrap())

	rec.Predicted = "Typhoid"
	require.NoError(t, node.Record(rec))

	got, err := node.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Typhoid", got.Predicted)

	recent, err := node.Recent(5)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
	assert.NotEmpty(t, node.Addr())
}
