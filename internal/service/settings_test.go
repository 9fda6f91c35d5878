package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/finvault/internal/database/repository"
)

func (f fixture) settings() *SettingsService {
	return &SettingsService{Categories: f.cats, Rules: f.rules}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Alimentação":       "alimentacao",
		"Saúde & Bem-estar": "saude_bem_estar",
		"  Pix Recebido  ":  "pix_recebido",
		"__Lazer__":         "lazer",
		"!!!":               "",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	t.Parallel()
	f, ctx := setup(t)
	svc := f.settings()

	c, err := svc.AddCategory(ctx, "Educação", repository.DirectionExpense)
	require.NoError(t, err)
	require.Equal(t, "educacao", c.ID)

	_, err = svc.AddCategory(ctx, "EDUCAÇÃO", repository.DirectionExpense)
	require.True(t, repository.IsDuplicateKey(err))

	_, err = svc.AddCategory(ctx, "Bônus", "other")
	require.Error(t, err)

	rule, err := svc.AddRule(ctx, "escola", "educacao", DefaultRulePriority, true)
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, "educacao")
	require.ErrorIs(t, err, ErrCategoryInUse)

	require.NoError(t, svc.DeleteRule(ctx, rule.ID))
	require.NoError(t, svc.DeleteCategory(ctx, "educacao"))

	var unknown *UnknownCategoryError
	require.ErrorAs(t, svc.DeleteCategory(ctx, "educacao"), &unknown)
}

func TestDeleteCategoryUncategorizesTransactions(t *testing.T) {
	t.Parallel()
	f, ctx := setup(t)

	id := f.insertEncrypted(t, f.sess, "k1", "2025-11-01", "Cinema", ptr("lazer"))
	require.NoError(t, f.settings().DeleteCategory(ctx, "lazer"))

	got, err := f.txns.Get(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got.CategoryID)
}

func TestRulesOrderingAndToggle(t *testing.T) {
	t.Parallel()
	f, ctx := setup(t)
	svc := f.settings()

	low, err := svc.AddRule(ctx, "uber", "transporte", 10, true)
	require.NoError(t, err)
	high, err := svc.AddRule(ctx, "uber eats", "alimentacao", 20, true)
	require.NoError(t, err)

	_, err = svc.AddRule(ctx, "   ", "transporte", 10, true)
	require.Error(t, err)
	_, err = svc.AddRule(ctx, "x", "nope", 10, true)
	var unknown *UnknownCategoryError
	require.ErrorAs(t, err, &unknown)

	list, err := svc.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, high.ID, list[0].ID)
	require.Equal(t, low.ID, list[1].ID)

	require.NoError(t, svc.SetRuleEnabled(ctx, low.ID, false))
	got, err := f.rules.Get(ctx, low.ID)
	require.NoError(t, err)
	require.False(t, got.Enabled)

	require.ErrorIs(t, svc.SetRuleEnabled(ctx, "missing", true), ErrRuleNotFound)
	require.ErrorIs(t, svc.DeleteRule(ctx, "missing"), ErrRuleNotFound)
}

func TestRulesExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	src, ctx := setup(t)
	_, err := src.settings().AddRule(ctx, "ifood", "alimentacao", 50, true)
	require.NoError(t, err)
	_, err = src.settings().AddRule(ctx, "netflix", "assinaturas", 100, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.settings().ExportRules(ctx, &buf))
	require.Contains(t, buf.String(), "pattern: netflix")

	dst, dctx := setup(t)
	res, err := dst.settings().ImportRules(dctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, RulesImport{Added: 2}, res)

	list, err := dst.settings().ListRules(dctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "netflix", list[0].Pattern)
	require.False(t, list[0].Enabled)

	res, err = dst.settings().ImportRules(dctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, RulesImport{Skipped: 2}, res)
}

func TestImportRulesDefaultsAndValidation(t *testing.T) {
	t.Parallel()
	f, ctx := setup(t)
	svc := f.settings()

	res, err := svc.ImportRules(ctx, strings.NewReader("rules:\n  - pattern: spotify\n    category: assinaturas\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)

	list, err := svc.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, DefaultRulePriority, list[0].Priority)
	require.True(t, list[0].Enabled)
	require.NotEmpty(t, list[0].ID)

	_, err = svc.ImportRules(ctx, strings.NewReader("rules:\n  - pattern: a\n    category: assinaturas\n  - pattern: b\n    category: ghost\n"))
	require.Error(t, err)
	list, err = svc.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
