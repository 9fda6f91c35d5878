package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/finvault/internal/session"
)

const mpSample = "RELEASE_DATE;TRANSACTION_TYPE;REFERENCE_ID;TRANSACTION_NET_AMOUNT;PARTIAL_BALANCE\n" +
	"12-11-2025;Pix;ref1;-150,00;850,00\n" +
	"14-11-2025;Rendimentos;ref2;3,21;853,21\n"

// ledgerEnv is an isolated config, database and statement directory.
type ledgerEnv struct {
	dir    string
	config string
	db     string
}

func newLedgerEnv(t *testing.T) ledgerEnv {
	t.Helper()
	dir := t.TempDir()
	env := ledgerEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		db:     filepath.Join(dir, "data", "ledger.db"),
	}
	cfg := fmt.Sprintf(`
[security]
kdf_iterations = 200000

[import]
formats_file = %q

[log]
level = "warn"
`, filepath.Join(dir, "formats.toml"))
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))
	t.Setenv("FINVAULT_PASSWORD", "correct horse")
	return env
}

func (e ledgerEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", e.config, "--db", e.db}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func (e ledgerEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "finvault %s", strings.Join(args, " "))
	return out
}

func (e ledgerEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportRequiresAccount(t *testing.T) {
	env := newLedgerEnv(t)
	statement := env.writeFile(t, "mp.csv", mpSample)

	_, err := env.run(t, "import", statement)
	require.ErrorIs(t, err, session.ErrNoAccount)
}

func TestImportRejectsMistypedAccount(t *testing.T) {
	env := newLedgerEnv(t)
	statement := env.writeFile(t, "mp.csv", mpSample)
	env.mustRun(t, "init")

	_, err := env.run(t, "import", "--account", "mercadopago", statement)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown account")

	out := env.mustRun(t, "import", "--account", "inter_empresas", statement)
	assert.Contains(t, out, "into inter_empresas")
}

func TestInitTwiceFails(t *testing.T) {
	env := newLedgerEnv(t)

	out := env.mustRun(t, "init")
	assert.Contains(t, out, "account created")

	_, err := env.run(t, "init")
	require.ErrorIs(t, err, session.ErrAccountExists)
}

func TestImportListAndSummarize(t *testing.T) {
	env := newLedgerEnv(t)
	statement := env.writeFile(t, "mp.csv", mpSample)

	env.mustRun(t, "init")
	env.mustRun(t, "rules", "add", "pix", "lazer", "--priority", "10")

	preview := env.mustRun(t, "import", "--preview", statement)
	assert.Contains(t, preview, "Rendimentos")

	out := env.mustRun(t, "import", statement)
	assert.Contains(t, out, "Mercado Pago")
	assert.Contains(t, out, "2 inserted")
	assert.Contains(t, out, "1 categorized")

	again := env.mustRun(t, "import", statement)
	assert.Contains(t, again, "0 inserted")
	assert.Contains(t, again, "2 duplicated")

	list := env.mustRun(t, "tx", "list", "--month", "2025-11")
	assert.Contains(t, list, "Pix")
	assert.Contains(t, list, "Rendimentos")
	assert.Contains(t, list, "150,00")
	assert.Contains(t, list, "Lazer")

	env.mustRun(t, "month", "goal", "100", "--month", "2025-11")
	env.mustRun(t, "month", "budget", "lazer", "200,00", "--month", "2025-11")
	summary := env.mustRun(t, "month", "show", "--month", "2025-11")
	assert.Contains(t, summary, "2025-11")
	assert.Contains(t, summary, "Lazer")
	assert.Contains(t, summary, "200,00")
	assert.Contains(t, summary, "1 uncategorized")
}

func TestManualEntryAndCategorize(t *testing.T) {
	env := newLedgerEnv(t)
	env.mustRun(t, "init")

	out := env.mustRun(t, "tx", "add", "--date", "2025-11-10", "--amount=-35,90", "--desc", "Feira do bairro")
	assert.Contains(t, out, "added transaction 1")

	env.mustRun(t, "tx", "categorize", "1", "mercado")
	list := env.mustRun(t, "tx", "list", "--month", "2025-11")
	assert.Contains(t, list, "Feira do bairro")
	assert.Contains(t, list, "Mercado")

	_, err := env.run(t, "tx", "categorize", "1")
	require.Error(t, err)

	env.mustRun(t, "tx", "categorize", "1", "--clear")
	env.mustRun(t, "tx", "delete", "1")
	list = env.mustRun(t, "tx", "list", "--month", "2025-11")
	assert.NotContains(t, list, "Feira do bairro")
}

func TestCategoriesAndRules(t *testing.T) {
	env := newLedgerEnv(t)

	out := env.mustRun(t, "categories", "add", "Cartão Extra")
	assert.Contains(t, out, "cartao_extra")

	cats := env.mustRun(t, "categories", "list")
	assert.Contains(t, cats, "Cartão Extra")
	assert.Contains(t, cats, "salario")

	_, err := env.run(t, "rules", "add", "ifood", "alimentacoa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alimentacao")

	out = env.mustRun(t, "rules", "add", "ifood", "alimentacao")
	id := strings.TrimSpace(strings.TrimPrefix(out, "added rule"))
	require.NotEmpty(t, id)

	env.mustRun(t, "rules", "disable", id)
	exported := env.mustRun(t, "rules", "export")
	assert.Contains(t, exported, "pattern: ifood")
	assert.Contains(t, exported, "enabled: false")

	backup := env.writeFile(t, "rules.yaml", exported)
	imported := env.mustRun(t, "rules", "import", backup)
	assert.Contains(t, imported, "0 rules added, 1 skipped")

	env.mustRun(t, "rules", "delete", id)
	rules := env.mustRun(t, "rules", "list")
	assert.NotContains(t, rules, "ifood")

	env.mustRun(t, "categories", "delete", "cartao_extra")
	cats = env.mustRun(t, "categories", "list")
	assert.NotContains(t, cats, "cartao_extra")
}

func TestResetNeedsConfirmation(t *testing.T) {
	env := newLedgerEnv(t)
	env.mustRun(t, "init")

	_, err := env.run(t, "reset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	env.mustRun(t, "reset", "--yes")
	_, err = env.run(t, "tx", "list")
	require.ErrorIs(t, err, session.ErrNoAccount)

	// reset reseeds on next open, so init works again
	env.mustRun(t, "init")
}

func TestPasswordFromStdin(t *testing.T) {
	env := newLedgerEnv(t)
	t.Setenv("FINVAULT_SECURITY_PASSWORD_ENV", "FINVAULT_TEST_UNSET_PASSWORD")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader("hunter22\n"))
	cmd.SetArgs([]string{"--config", env.config, "--db", env.db, "--password-stdin", "init"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), "account created")

	_, err := env.run(t, "init")
	require.ErrorIs(t, err, session.ErrAccountExists)
}

func TestReclassifyAppliesNewRule(t *testing.T) {
	env := newLedgerEnv(t)
	statement := env.writeFile(t, "mp.csv", mpSample)

	env.mustRun(t, "init")
	out := env.mustRun(t, "import", statement)
	assert.Contains(t, out, "0 categorized")

	env.mustRun(t, "rules", "add", "rendimento", "salario")
	out = env.mustRun(t, "reclassify", "--month", "2025-11")
	assert.Contains(t, out, "2025-11: 2 scanned, 1 updated")

	out = env.mustRun(t, "reclassify", "--month", "2025-11")
	assert.Contains(t, out, "1 scanned, 0 updated")
}
