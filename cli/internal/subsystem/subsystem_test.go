package subsystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openportal.dev/openportal/runtime"
)

type testConfig struct {
	Type runtime.Type `json:"type"`
}

func (c *testConfig) GetType() runtime.Type { return c.Type }

func (c *testConfig) SetType(typ runtime.Type) { c.Type = typ }
func (c *testConfig) DeepCopyTyped() runtime.Typed {
	copied := *c
	return &copied
}

func TestRegistry(t *testing.T) {
	scheme := runtime.NewScheme()
	s := &Subsystem{
		Name:   "test-subsystem",
		Title:  "A subsystem for testing",
		Scheme: scheme,
	}

	registry := NewRegistry()
	registry.Register(s)

	assert.Equal(t, s, registry.Get("test-subsystem"))
	assert.Nil(t, registry.Get("non-existent"))
	assert.ElementsMatch(t, []*Subsystem{s}, registry.List())
}

func TestRegisterOverwritesSameName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewSubsystem("dup", "first"))
	replacement := NewSubsystem("dup", "second")
	registry.Register(replacement)

	assert.Equal(t, replacement, registry.Get("dup"))
	assert.Len(t, registry.List(), 1)
}

func TestNewSubsystemMergesSchemes(t *testing.T) {
	first := runtime.NewScheme()
	first.MustRegisterWithAlias(&testConfig{}, runtime.NewType("first.test", "v1"))
	second := runtime.NewScheme()
	second.MustRegisterWithAlias(&testConfig{}, runtime.NewType("second.test", "v1"))

	s := NewSubsystem("test-name", "test title", first, second)

	assert.Equal(t, "test-name", s.Name)
	assert.Equal(t, "test title", s.Title)
	require.NotNil(t, s.Scheme)

	names := make([]string, 0, 2)
	for _, typ := range s.Scheme.Types() {
		names = append(names, typ.String())
	}
	assert.Contains(t, names, "first.test/v1")
	assert.Contains(t, names, "second.test/v1")
}
