package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTS = `class Greeter {
  name: string;

  greet(): string {
    return "hello " + this.name;
  }
}

function add(a: number, b: number): number {
  return a + b;
}
`

func TestParseBuffer_UnknownExtension_ReturnsError(t *testing.T) {
	m := NewManager()
	err := m.ParseBuffer("/tmp/file.zzz", []byte("whatever"))
	assert.Error(t, err)
}

func TestParseBuffer_StoresTreeAndSource(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))

	tree, ok := m.GetTree("/tmp/greeter.ts")
	require.True(t, ok)
	assert.NotNil(t, tree)

	source, ok := m.GetSource("/tmp/greeter.ts")
	require.True(t, ok)
	assert.Equal(t, sampleTS, string(source))
}

func TestParseBuffer_SkipsReparseWhenHashUnchanged(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))
	first, _ := m.GetTree("/tmp/greeter.ts")

	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))
	second, _ := m.GetTree("/tmp/greeter.ts")

	assert.Same(t, first, second, "identical source should not trigger a re-parse")
}

func TestParseBuffer_ReparsesOnContentChange(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))
	first, _ := m.GetTree("/tmp/greeter.ts")

	changed := sampleTS + "\nconst x = 1;\n"
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(changed)))
	second, _ := m.GetTree("/tmp/greeter.ts")

	assert.NotSame(t, first, second)
	source, _ := m.GetSource("/tmp/greeter.ts")
	assert.Equal(t, changed, string(source))
}

func TestRemoveBuffer_DropsStoredTree(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))
	m.RemoveBuffer("/tmp/greeter.ts")

	_, ok := m.GetTree("/tmp/greeter.ts")
	assert.False(t, ok)
}

func TestSymbols_FindsClassAndFunctionDeclarations(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))

	symbols, err := m.Symbols("/tmp/greeter.ts")
	require.NoError(t, err)

	names := make(map[string]string)
	for _, s := range symbols {
		names[s.Name] = s.Kind
	}
	assert.Equal(t, "Class", names["Greeter"])
	assert.Equal(t, "Function", names["add"])
	assert.Equal(t, "Method", names["greet"])
}

func TestFolds_FindsClassBody(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))

	folds, err := m.Folds("/tmp/greeter.ts")
	require.NoError(t, err)
	assert.NotEmpty(t, folds)
}

func TestHighlights_CapturesKeywordsAndStrings(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))

	highlights, err := m.Highlights("/tmp/greeter.ts")
	require.NoError(t, err)

	scopes := make(map[string]bool)
	for _, h := range highlights {
		scopes[h.Scope] = true
	}
	assert.True(t, scopes["keyword"])
	assert.True(t, scopes["string"])
}

func TestTextObjects_FindsFunctionOuterAndInner(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.ParseBuffer("/tmp/greeter.ts", []byte(sampleTS)))

	objects, err := m.TextObjects("/tmp/greeter.ts")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, o := range objects {
		names[o.Name] = true
	}
	assert.True(t, names["function.outer"])
	assert.True(t, names["function.inner"])
}

func TestQueryOperations_UnparsedPathReturnsNil(t *testing.T) {
	m := NewManager()
	symbols, err := m.Symbols("/tmp/never-parsed.ts")
	require.NoError(t, err)
	assert.Nil(t, symbols)
}
