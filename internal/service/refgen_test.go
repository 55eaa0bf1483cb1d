package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository/memory"
)

func TestReferenceGeneratorFormat(t *testing.T) {
	gen := NewReferenceGenerator(memory.NewSequenceRepository())
	date := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

	ref, err := gen.NextFor(context.Background(), NamespaceOrder, date)
	require.NoError(t, err)
	assert.Equal(t, "ORD-070326-0001", ref)

	ref, err = gen.NextFor(context.Background(), NamespaceInvoice, date)
	require.NoError(t, err)
	assert.Equal(t, "INV-070326-0001", ref)
}

func TestReferenceGeneratorMonotonicPerDay(t *testing.T) {
	gen := NewReferenceGenerator(memory.NewSequenceRepository())
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 12; i++ {
		ref, err := gen.NextFor(context.Background(), NamespaceOrder, date)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-150126-%04d", i), ref)
	}

	// A new day restarts the sequence
	nextDay := date.AddDate(0, 0, 1)
	ref, err := gen.NextFor(context.Background(), NamespaceOrder, nextDay)
	require.NoError(t, err)
	assert.Equal(t, "ORD-160126-0001", ref)
}

func TestReferenceGeneratorNamespacesIndependent(t *testing.T) {
	gen := NewReferenceGenerator(memory.NewSequenceRepository())
	date := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

	ord1, err := gen.NextFor(context.Background(), NamespaceOrder, date)
	require.NoError(t, err)
	inv1, err := gen.NextFor(context.Background(), NamespaceInvoice, date)
	require.NoError(t, err)
	ord2, err := gen.NextFor(context.Background(), NamespaceOrder, date)
	require.NoError(t, err)

	assert.Equal(t, "ORD-020526-0001", ord1)
	assert.Equal(t, "INV-020526-0001", inv1)
	assert.Equal(t, "ORD-020526-0002", ord2)
}

func TestReferenceGeneratorConcurrentUnique(t *testing.T) {
	gen := NewReferenceGenerator(memory.NewSequenceRepository())
	date := time.Now()

	const n = 50
	refs := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			ref, err := gen.NextFor(context.Background(), NamespaceOrder, date)
			require.NoError(t, err)
			refs <- ref
		}()
	}

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		ref := <-refs
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
