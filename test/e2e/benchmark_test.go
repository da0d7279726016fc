package e2e_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcncl/cafkit/internal/caf"
	"github.com/mcncl/cafkit/internal/formatter"
	"github.com/mcncl/cafkit/internal/schema"
)

// BenchmarkParseDocument measures parsing of a large scene
func BenchmarkParseDocument(b *testing.B) {
	src := generateScene(2000, rand.New(rand.NewSource(1)))
	b.SetBytes(int64(len(src)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := caf.ParseDocument(src); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWriteDocument measures serialization of a parsed scene
func BenchmarkWriteDocument(b *testing.B) {
	doc, err := caf.ParseDocument(generateScene(2000, rand.New(rand.NewSource(1))))
	require.NoError(b, err)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = doc.String()
	}
}

// BenchmarkCanonicalFormat measures the canonical formatter
func BenchmarkCanonicalFormat(b *testing.B) {
	src := generateScene(2000, rand.New(rand.NewSource(1)))
	f := formatter.NewFormatter(true)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := f.Format(src); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkJSONRoundTrip measures document to JSON to document with fill
// recovery
func BenchmarkJSONRoundTrip(b *testing.B) {
	src := generateScene(500, rand.New(rand.NewSource(1)))
	reg, err := schema.ParseString(registryYAML)
	require.NoError(b, err)
	old, err := caf.ParseDocument(src)
	require.NoError(b, err)
	jsonVal, err := old.Commands().ToJSON()
	require.NoError(b, err)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		cmds, err := caf.CommandsFromJSON(jsonVal, reg)
		if err != nil {
			b.Fatal(err)
		}
		cmds.RecoverFill(old.Commands())
	}
}
