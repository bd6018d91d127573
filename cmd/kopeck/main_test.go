package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kopeck/internal/common"
)

type cliEnv struct {
	t  *testing.T
	db string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{t: t, db: filepath.Join(t.TempDir(), "kopeck.db")}
}

// run executes the CLI against the env's database with stdin fed from input.
func (e *cliEnv) run(input string, args ...string) (string, error) {
	e.t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--db", e.db, "--log-level", "warn"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, "kopeck %s", strings.Join(args, " "))
	return out
}

// seed creates two accounts and one category of each kind:
// accounts 1 Наличные (cash), 2 Копилка (savings);
// categories 1 Еда (expense), 2 Зарплата (income), 3 Отпуск (savings).
func (e *cliEnv) seed() {
	e.t.Helper()
	e.mustRun("accounts", "add", "Наличные", "--type", "cash")
	e.mustRun("accounts", "add", "Копилка", "--type", "savings")
	e.mustRun("categories", "add", "Еда", "--kind", "expense")
	e.mustRun("categories", "add", "Зарплата", "--kind", "income")
	e.mustRun("categories", "add", "Отпуск", "--kind", "savings")
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	assert.Equal(t, "kopeck dev\n", env.mustRun("version"))
}

func TestAccounts(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("accounts", "add", "Карта")
	assert.Contains(t, out, "Карта (#1, bank)")

	// Same name returns the existing account.
	out = env.mustRun("accounts", "add", "  Карта ")
	assert.Contains(t, out, "#1")

	out = env.mustRun("accounts", "list")
	assert.Contains(t, out, "Карта")

	env.mustRun("accounts", "deactivate", "1")
	out = env.mustRun("accounts", "list")
	assert.Contains(t, out, "No accounts found.")

	out = env.mustRun("accounts", "list", "--all")
	assert.Contains(t, out, "false")

	env.mustRun("accounts", "activate", "1")
	out = env.mustRun("accounts", "list")
	assert.Contains(t, out, "Карта")

	_, err := env.run("", "accounts", "activate", "99")
	require.Error(t, err)
	assert.Equal(t, "account 99 not found", common.UserMessage(err))

	_, err = env.run("", "accounts", "add", "Сейф", "--type", "vault")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "invalid account type")
}

func TestCategories(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("categories", "add", "Продукты")
	assert.Contains(t, out, "expense, produkty")

	out = env.mustRun("categories", "add", "Продукты", "--kind", "savings")
	assert.Contains(t, out, "produkty-2")

	out = env.mustRun("categories", "add", "Овощи", "--parent", "1")
	assert.Contains(t, out, "ovoschi")

	out = env.mustRun("categories", "list", "--kind", "savings")
	assert.Contains(t, out, "produkty-2")
	assert.NotContains(t, out, "ovoschi")

	_, err := env.run("", "categories", "add", "Сирота", "--parent", "42")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "category not found")
}

func TestTransactionsAndReports(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	env.mustRun("tx", "income", "--account", "1", "--category", "2", "--amount", "10 000", "--date", "2024-01-05")
	out := env.mustRun("tx", "expense", "--account", "1", "--category", "1", "--amount", "1 500,50",
		"--date", "2024-01-10", "--note", "Магазин")
	assert.Contains(t, out, "Recorded expense #2")
	assert.Contains(t, out, "1 500,50 ₽")

	out = env.mustRun("tx", "savings", "--from", "1", "--to", "2", "--category", "3", "--amount", "2000",
		"--date", "2024-01-15")
	assert.Contains(t, out, "Recorded transfer #3")

	out = env.mustRun("report", "balances")
	assert.Contains(t, out, "6 499,50 ₽")
	assert.Contains(t, out, "2 000,00 ₽")
	assert.Contains(t, out, "8 499,50 ₽")

	out = env.mustRun("report", "summary", "--month", "2024-01")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "2024-01-31")
	assert.Contains(t, out, "10 000,00 ₽")
	assert.Contains(t, out, "-1 500,50 ₽")
	assert.Contains(t, out, "8 499,50 ₽")

	out = env.mustRun("report", "top", "--month", "2024-01")
	assert.Contains(t, out, "Еда")
	assert.Contains(t, out, "1 500,50 ₽")

	out = env.mustRun("report", "top", "--month", "2024-02")
	assert.Contains(t, out, "No expenses in this period.")

	out = env.mustRun("tx", "list")
	assert.True(t, ContainsInOrder(out, "2024-01-15", "2024-01-10", "2024-01-05"))
	assert.Contains(t, out, "Наличные → Копилка")
	assert.Contains(t, out, "Магазин")

	out = env.mustRun("tx", "list", "--type", "expense")
	assert.Contains(t, out, "Магазин")
	assert.NotContains(t, out, "2024-01-05")

	out = env.mustRun("tx", "edit", "2", "--amount", "500", "--note", "Рынок")
	assert.Contains(t, out, "Updated expense #2")

	out = env.mustRun("report", "balances")
	assert.Contains(t, out, "7 500,00 ₽")

	env.mustRun("tx", "delete", "2")
	_, err := env.run("", "tx", "delete", "2")
	require.Error(t, err)
	assert.Equal(t, "transaction 2 not found", common.UserMessage(err))

	out = env.mustRun("report", "balances")
	assert.Contains(t, out, "8 000,00 ₽")
}

func TestTransactionErrors(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "malformed amount",
			args:    []string{"tx", "expense", "--account", "1", "--category", "1", "--amount", "12,3,4"},
			message: "invalid amount",
		},
		{
			name:    "zero amount",
			args:    []string{"tx", "expense", "--account", "1", "--category", "1", "--amount", "0"},
			message: "amount must be positive",
		},
		{
			name:    "bad date",
			args:    []string{"tx", "income", "--account", "1", "--category", "2", "--amount", "1", "--date", "05.01.2024"},
			message: "invalid date",
		},
		{
			name:    "unknown account",
			args:    []string{"tx", "expense", "--account", "9", "--category", "1", "--amount", "1"},
			message: "account not found",
		},
		{
			name:    "savings into same account",
			args:    []string{"tx", "savings", "--from", "1", "--to", "1", "--category", "3", "--amount", "1"},
			message: "accounts must differ",
		},
		{
			name:    "savings with expense category",
			args:    []string{"tx", "savings", "--from", "1", "--to", "2", "--category", "1", "--amount", "1"},
			message: "not a savings category",
		},
		{
			name:    "invalid id",
			args:    []string{"tx", "delete", "abc"},
			message: "invalid id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run("", tt.args...)
			require.Error(t, err)
			assert.Contains(t, common.UserMessage(err), tt.message)
		})
	}
}

func TestBudgets(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	env.mustRun("tx", "expense", "--account", "1", "--category", "1", "--amount", "2500", "--date", "2024-03-03")
	env.mustRun("tx", "savings", "--from", "1", "--to", "2", "--category", "3", "--amount", "7000", "--date", "2024-03-20")

	out := env.mustRun("budgets", "set", "--month", "2024-03", "--category", "1", "--limit", "3 000")
	assert.Contains(t, out, "Budget #1 for 2024-03")
	env.mustRun("budgets", "set", "--month", "2024-03", "--category", "3", "--limit", "5000")

	// Setting again updates in place.
	out = env.mustRun("budgets", "set", "--month", "2024-03", "--category", "1", "--limit", "2000")
	assert.Contains(t, out, "Budget #1")

	out = env.mustRun("budgets", "list", "--month", "2024-03")
	assert.Contains(t, out, "Еда")
	assert.Contains(t, out, "2 000,00 ₽")

	out = env.mustRun("budgets", "status", "--month", "2024-03")
	assert.Contains(t, out, "125%")
	assert.Contains(t, out, "140%")
	assert.Contains(t, out, "-500,00 ₽")

	out = env.mustRun("budgets", "status", "--month", "2024-04")
	assert.Contains(t, out, "No budgets for this month.")

	env.mustRun("budgets", "delete", "1")
	_, err := env.run("", "budgets", "delete", "1")
	require.Error(t, err)

	_, err = env.run("", "budgets", "set", "--month", "2024-13", "--category", "1", "--limit", "1")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "invalid month")
}

const statementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>RUB
<BANKACCTFROM>
<BANKID>044525225
<ACCTID>40817810000000000001
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>Coffee House
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>2500.125
<FITID>2024013101
<NAME>Payroll
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2474.62
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportOFX(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	statement := filepath.Join(t.TempDir(), "statement.ofx")
	require.NoError(t, os.WriteFile(statement, []byte(statementOFX), 0o600))

	importArgs := []string{"import-ofx", statement, "--account", "1", "--expense-category", "1", "--income-category", "2"}

	out := env.mustRun(append(importArgs, "--dry-run")...)
	assert.Contains(t, out, "2 would be recorded")
	assert.Contains(t, out, "Coffee House")
	assert.Contains(t, env.mustRun("tx", "list"), "No transactions found.")

	out = env.mustRun(importArgs...)
	assert.Contains(t, out, "Checkpoint auto-")
	assert.Contains(t, out, "imported 2, duplicates 0")
	assert.Contains(t, env.mustRun("report", "balances"), "2 474,62 ₽")

	out = env.mustRun(importArgs...)
	assert.Contains(t, out, "imported 0, duplicates 2")

	_, err := env.run("", "import-ofx", filepath.Join(t.TempDir(), "missing-*.ofx"),
		"--account", "1", "--expense-category", "1", "--income-category", "2")
	require.Error(t, err)
	assert.Equal(t, "no files found to import", common.UserMessage(err))
}

func TestCheckpoints(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	env.mustRun("tx", "income", "--account", "1", "--category", "2", "--amount", "100", "--date", "2024-01-05")

	out := env.mustRun("checkpoint", "create", "--tag", "before-cleanup", "--description", "first income")
	assert.Contains(t, out, "Created checkpoint before-cleanup")
	assert.Contains(t, out, "first income")

	out = env.mustRun("checkpoint", "list")
	assert.Contains(t, out, "before-cleanup")
	assert.Contains(t, out, "manual")

	env.mustRun("tx", "delete", "1")
	assert.Contains(t, env.mustRun("tx", "list"), "No transactions found.")

	// Declining the prompt leaves the database alone.
	out, err := env.run("n\n", "checkpoint", "restore", "before-cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "Restore cancelled.")
	assert.Contains(t, env.mustRun("tx", "list"), "No transactions found.")

	out, err = env.run("y\n", "checkpoint", "restore", "before-cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored from checkpoint before-cleanup")
	assert.Contains(t, env.mustRun("tx", "list"), "2024-01-05")

	env.mustRun("checkpoint", "delete", "before-cleanup", "--force")
	assert.Contains(t, env.mustRun("checkpoint", "list"), "No checkpoints found.")

	_, err = env.run("", "checkpoint", "restore", "missing", "--force")
	require.Error(t, err)
}

func TestMigrateStatus(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("migrate", "--status")
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "Latest version:  3")

	out = env.mustRun("migrate")
	assert.Contains(t, out, "version 3")

	out = env.mustRun("migrate", "--status")
	assert.Contains(t, out, "Current version: 3")
}

func TestInvalidConfig(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("", "--log-format", "xml", "version")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestReportWindowFlags(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	env.mustRun("tx", "expense", "--account", "1", "--category", "1", "--amount", "10", "--date", "2024-01-31")
	env.mustRun("tx", "expense", "--account", "1", "--category", "1", "--amount", "20", "--date", "2024-02-01")

	out := env.mustRun("report", "top", "--from-date", "2024-01-31", "--to-date", "2024-02-01")
	assert.Contains(t, out, "30,00 ₽")

	_, err := env.run("", "report", "summary", "--from-date", "2024-02-02", "--to-date", "2024-02-01")
	require.Error(t, err)
}

// ContainsInOrder reports whether every part appears in s after the previous one.
func ContainsInOrder(s string, parts ...string) bool {
	for _, part := range parts {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return true
}

func TestIntegrationsRequireConfig(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"PLAID_CLIENT_ID", "PLAID_SECRET", "PLAID_ACCESS_TOKEN",
	} {
		t.Setenv(key, "")
	}
	env := newCLIEnv(t)

	_, err := env.run("", "export", "sheets")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "Google Sheets is not configured")

	_, err = env.run("", "sync", "plaid")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "Plaid is not configured")

	t.Setenv("KOPECK_PLAID_CLIENT_ID", "client")
	t.Setenv("KOPECK_PLAID_SECRET", "secret")
	t.Setenv("KOPECK_PLAID_ACCESS_TOKEN", "access-sandbox")
	_, err = env.run("", "sync", "plaid")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "categories are required")
}

func TestExportSheets_InvalidServiceAccount(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	keyFile := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(keyFile, []byte("not json"), 0o600))
	t.Setenv("KOPECK_SHEETS_SERVICE_ACCOUNT_PATH", keyFile)

	env := newCLIEnv(t)
	env.seed()

	_, err := env.run("", "export", "sheets", "--month", "2024-01")
	require.Error(t, err)
	assert.Equal(t, "failed to connect to Google Sheets", common.UserMessage(err))
}
