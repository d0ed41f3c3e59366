package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/constellation-engine/constellation/internal/dagspec"
)

func TestDagRegistryRegisterAndRetrieve(t *testing.T) {
	t.Parallel()

	reg := NewDagRegistry()
	dag := dagspec.DagSpec{DeclaredOutputs: []string{"y"}}
	reg.Register("double", dag)

	got, ok := reg.Retrieve("double", "")
	require.True(t, ok)
	require.Equal(t, []string{"y"}, got.DeclaredOutputs)
	require.True(t, reg.Exists("double"))
	require.False(t, reg.Exists("missing"))
}

func TestDagRegistryListIncludesCompiledAt(t *testing.T) {
	t.Parallel()

	reg := NewDagRegistry()
	reg.Register("double", dagspec.DagSpec{
		Modules:         map[string]dagspec.ModuleNodeSpec{"m": {}},
		Data:            map[string]dagspec.DataNodeSpec{"d": {}},
		DeclaredOutputs: []string{"y"},
	})
	now := time.Now()
	reg.MarkCompiled("double", now)

	list := reg.List()
	meta, ok := list["double"]
	require.True(t, ok)
	require.Equal(t, 2, meta.NodeCount)
	require.Equal(t, now, meta.CompiledAt)
}

func TestStoreIsIdempotentOnStructuralHash(t *testing.T) {
	t.Parallel()

	store := NewStore()
	img := Image{StructuralHash: "abc123"}
	store.StoreImage(img)
	store.StoreImage(img)

	require.Len(t, store.ListImages(), 1)
}

func TestStoreAliasResolveGetByName(t *testing.T) {
	t.Parallel()

	store := NewStore()
	img := Image{StructuralHash: "hash1"}
	store.StoreImage(img)
	store.Alias("prod", "hash1")

	hash, ok := store.Resolve("prod")
	require.True(t, ok)
	require.Equal(t, "hash1", hash)

	got, ok := store.GetByName("prod")
	require.True(t, ok)
	require.Equal(t, "hash1", got.StructuralHash)
}

func TestStoreRemoveReportsPresence(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.StoreImage(Image{StructuralHash: "hash1"})

	require.True(t, store.Remove("hash1"))
	require.False(t, store.Remove("hash1"))
}

func TestStoreSyntacticIndex(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.IndexSyntactic("src1", "reg1", "structural1")

	hash, ok := store.LookupSyntactic("src1", "reg1")
	require.True(t, ok)
	require.Equal(t, "structural1", hash)

	_, ok = store.LookupSyntactic("src1", "reg2")
	require.False(t, ok)
}
