package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
)

// Namespace prefixes for human-readable document numbers
const (
	NamespaceOrder       = "ORD"
	NamespaceInvoice     = "INV"
	NamespaceCustomOrder = "CORD"
)

// ReferenceGenerator produces collision-resistant, human-readable document
// numbers with a per-day sequence: {PREFIX}-{DDMMYY}-{0001}. The sequence
// comes from an atomic per-(namespace, date) counter, so concurrent order
// creation cannot hand out the same number twice.
type ReferenceGenerator struct {
	sequences repository.SequenceRepository
}

// NewReferenceGenerator creates a new reference generator
func NewReferenceGenerator(sequences repository.SequenceRepository) *ReferenceGenerator {
	return &ReferenceGenerator{sequences: sequences}
}

// Next returns the next number in the namespace for today
func (g *ReferenceGenerator) Next(ctx context.Context, namespace string) (string, error) {
	return g.NextFor(ctx, namespace, time.Now())
}

// NextFor returns the next number in the namespace for the given date
func (g *ReferenceGenerator) NextFor(ctx context.Context, namespace string, date time.Time) (string, error) {
	seq, err := g.sequences.Next(ctx, namespace, date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", namespace, date.Format("020106"), seq), nil
}
