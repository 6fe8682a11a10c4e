package runtime

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
}

func (c *testConfig) GetType() Type    { return c.Type }
func (c *testConfig) SetType(typ Type) { c.Type = typ }
func (c *testConfig) DeepCopyTyped() Typed {
	copied := *c
	return &copied
}

func TestSchemeConvert(t *testing.T) {
	typ := NewType("test.config.openportal.dev", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&testConfig{}, typ)

	r := require.New(t)

	parsed := &testConfig{}
	r.NoError(scheme.Convert(&Raw{Type: typ, Data: []byte(`{"type": "test.config.openportal.dev/v1", "value": "foo"}`)}, parsed))
	r.Equal("foo", parsed.Value)

	r.NoError(scheme.Convert(&testConfig{Type: typ, Value: "bar"}, parsed))
	r.Equal("bar", parsed.Value)
}

func TestSchemeConvertTypedToRawCanonicalizes(t *testing.T) {
	typ := NewType("test.config.openportal.dev", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&testConfig{}, typ)

	r := require.New(t)

	raw := &Raw{}
	r.NoError(scheme.Convert(&testConfig{Type: typ, Value: "foo"}, raw))
	r.Equal(typ, raw.Type)
	// canonical JSON orders keys lexicographically
	r.Equal(`{"type":"test.config.openportal.dev/v1","value":"foo"}`, string(raw.Data))
}

func TestSchemeNewObject(t *testing.T) {
	typ := NewType("test.config.openportal.dev", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&testConfig{}, typ)

	r := require.New(t)

	obj, err := scheme.NewObject(typ)
	r.NoError(err)
	r.IsType(&testConfig{}, obj)

	_, err = scheme.NewObject(NewUnversionedType("unknown"))
	r.Error(err)

	lenient := NewScheme(WithAllowUnknown())
	obj, err = lenient.NewObject(NewUnversionedType("unknown"))
	r.NoError(err)
	r.IsType(&Raw{}, obj)
}

func TestSchemeDecode(t *testing.T) {
	typ := NewType("test.config.openportal.dev", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&testConfig{}, typ)

	r := require.New(t)

	into := &testConfig{}
	r.NoError(scheme.Decode(bytes.NewReader([]byte("type: test.config.openportal.dev/v1\nvalue: foo\n")), into))
	r.Equal("foo", into.Value)
	r.Equal(typ, into.Type)
}

func TestSchemeRejectsDuplicateRegistration(t *testing.T) {
	typ := NewType("test.config.openportal.dev", "v1")
	scheme := NewScheme()
	require.NoError(t, scheme.RegisterWithAlias(&testConfig{}, typ))
	require.Error(t, scheme.RegisterWithAlias(&testConfig{}, typ))
}

func TestSchemeTypes(t *testing.T) {
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&testConfig{},
		NewType("b.config.openportal.dev", "v1"),
		NewType("a.config.openportal.dev", "v1"),
	)

	types := scheme.Types()
	require.Len(t, types, 2)
	assert.Equal(t, "a.config.openportal.dev/v1", types[0].String())
	assert.Equal(t, "b.config.openportal.dev/v1", types[1].String())
}

func TestRawRoundTrip(t *testing.T) {
	r := require.New(t)

	raw := &Raw{}
	r.NoError(raw.UnmarshalJSON([]byte(`{"type":"Button","label":"ok"}`)))
	r.Equal("Button", raw.Type.Name)

	data, err := raw.MarshalJSON()
	r.NoError(err)
	r.JSONEq(`{"type":"Button","label":"ok"}`, string(data))

	clone := raw.DeepCopy()
	clone.Data[0] = ' '
	r.Equal(byte('{'), raw.Data[0])
}
