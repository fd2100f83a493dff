package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewatch/nodewatch/pkg/errors"
)

func TestConfigStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")

	store := NewConfigStore(path)
	nodes, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestConfigStore_LoadParsesExistingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	content := `{"address":"localhost:8545","reviveCmd":"touch","reviveArgs":"server1"}
{"address":"localhost:8546","reviveCmd":"touch","reviveArgs":"server2"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	store := NewConfigStore(path)
	nodes, err := store.Load()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "localhost:8545", nodes[0].Address)
	assert.Equal(t, "server2", nodes[1].ReviveArgs)
}

func TestConfigStore_LoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	content := "{\"address\":\"localhost:8545\",\"reviveCmd\":\"touch\",\"reviveArgs\":\"s1\"}\n\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	store := NewConfigStore(path)
	nodes, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestConfigStore_LoadFailsOnMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0644))

	store := NewConfigStore(path)
	_, err := store.Load()
	assert.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ConfigParseError))
}

func TestConfigStore_AppendPersistsAndIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	store := NewConfigStore(path)

	node := &MonitoredNode{Address: "localhost:9000", ReviveCmd: "touch", ReviveArgs: "addedServer"}
	require.NoError(t, store.Append(node))

	reloaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.Equal(t, "localhost:9000", reloaded[0].Address)
}

func TestConfigStore_AppendIsAtomicPerCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	store := NewConfigStore(path)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(&MonitoredNode{
			Address:    "localhost:900" + string(rune('0'+i)),
			ReviveCmd:  "touch",
			ReviveArgs: "server",
		}))
	}

	nodes, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, nodes, 5)
}
