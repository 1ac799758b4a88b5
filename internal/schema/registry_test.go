package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDuplicateResource(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Schema{Resource: "league", Fields: []Field{{Name: "name", Type: TypeString}}}))

	err := r.Register(&Schema{Resource: "league", Fields: []Field{{Name: "name", Type: TypeString}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterDuplicateField(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Schema{
		Resource: "league",
		Fields: []Field{
			{Name: "name", Type: TypeString},
			{Name: "name", Type: TypeString},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}

func TestRegisterRejectsRangeOnString(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Schema{
		Resource: "league",
		Fields: []Field{
			{Name: "name", Type: TypeString, Constraints: []Constraint{Range(0, 10)}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numeric")
}

func TestRegisterRejectsEmptyNames(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register(&Schema{Resource: ""}))
	require.Error(t, r.Register(&Schema{
		Resource: "league",
		Fields:   []Field{{Name: "", Type: TypeString}},
	}))
}

func TestResourcesSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Schema{Resource: "teams"}))
	require.NoError(t, r.Register(&Schema{Resource: "leagues"}))
	require.NoError(t, r.Register(&Schema{Resource: "players"}))

	assert.Equal(t, []string{"leagues", "players", "teams"}, r.Resources())
}

func TestSchemaLookup(t *testing.T) {
	r := NewRegistry()
	declared := &Schema{Resource: "leagues", Fields: []Field{{Name: "name", Type: TypeString}}}
	require.NoError(t, r.Register(declared))

	got, ok := r.Schema("leagues")
	assert.True(t, ok)
	assert.Same(t, declared, got)

	_, ok = r.Schema("missing")
	assert.False(t, ok)
}
