package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/admin"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/memory"
)

func runShell(t *testing.T, svc portfolio.Service, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	shell := NewAdminShell(admin.NewEditor(svc, admin.WithLogger(quietLogger())), &out)
	err := shell.Run(context.Background(), strings.NewReader(strings.Join(script, "\n")+"\n"))
	require.NoError(t, err)
	return out.String()
}

func newMemoryService(t *testing.T) portfolio.Service {
	t.Helper()
	svc, err := portfolio.New(portfolio.WithRepository(memory.New()))
	require.NoError(t, err)
	return svc
}

func TestShellAddEditSave(t *testing.T) {
	svc := newMemoryService(t)

	out := runShell(t, svc,
		"load pricing_packages",
		"add pricing_packages",
		"set pricing_packages 0 name_en Starter",
		"set pricing_packages 0 price 49.5",
		`set pricing_packages 0 features_en 4K export\nColor grading`,
		"save pricing_packages",
		"exit",
	)
	assert.Contains(t, out, "No pricing_packages rows")
	assert.Contains(t, out, "Added row new-1 at index 0")
	assert.Contains(t, out, "Items saved successfully!")
	assert.Contains(t, out, "Goodbye!")

	rows, err := svc.List(context.Background(), portfolio.CollectionPricing, portfolio.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	pkg := rows[0].(*portfolio.PricingPackage)
	assert.Equal(t, "Starter", pkg.NameEN)
	assert.Equal(t, 49.5, pkg.Price)
	assert.Equal(t, []string{"4K export", "Color grading"}, pkg.FeaturesEN)
	assert.True(t, pkg.IsActive)
}

func TestShellRejectsBadInput(t *testing.T) {
	svc := newMemoryService(t)

	out := runShell(t, svc,
		"load nope",
		"load portfolio_settings",
		"add faq_items",
		"set faq_items 0 order_index abc",
		"set faq_items 3 question_en Why?",
		"frobnicate",
	)
	assert.Contains(t, out, "unknown collection")
	assert.Contains(t, out, admin.ErrNotEditable.Error())
	assert.Contains(t, out, "must be a whole number")
	assert.Contains(t, out, admin.ErrRowNotFound.Error())
	assert.Contains(t, out, "Unknown command: frobnicate")
}

func TestShellDeleteRows(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, &portfolio.FAQItem{QuestionEN: "Turnaround?", IsActive: true})
	require.NoError(t, err)

	out := runShell(t, svc,
		"load faq_items",
		"add faq_items",
		"delete faq_items new-1",
		"delete faq_items 0",
	)
	assert.Contains(t, out, "Turnaround?")
	assert.Contains(t, out, "Discarded unsaved row new-1")
	assert.Contains(t, out, "Item deleted successfully!")

	rows, err := svc.List(ctx, portfolio.CollectionFAQ, portfolio.Query{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestShellSettings(t *testing.T) {
	svc := newMemoryService(t)

	out := runShell(t, svc,
		"settings",
		"setting email hello@example.com",
		"setting show_faq false",
		"whatsapp +55 (11) 98765-4321",
		"save-settings",
	)
	assert.Contains(t, out, "Settings saved successfully!")

	s, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello@example.com", s.Email)
	assert.False(t, s.ShowFAQ)
	assert.True(t, s.ShowShorts)
	assert.Equal(t, "https://wa.me/5511987654321", s.WhatsAppLink)
}

func TestShellStopsAtEOF(t *testing.T) {
	out := runShell(t, newMemoryService(t), "help")
	assert.Contains(t, out, "Available Commands")
	assert.NotContains(t, out, "Goodbye!")
}

func TestCutWord(t *testing.T) {
	tests := []struct {
		in, word, rest string
	}{
		{"", "", ""},
		{"load", "load", ""},
		{"  set  faq_items 0 answer_en two words ", "set", "faq_items 0 answer_en two words"},
		{"a\tb", "a", "b"},
	}
	for _, tt := range tests {
		word, rest := cutWord(tt.in)
		assert.Equal(t, tt.word, word, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}
