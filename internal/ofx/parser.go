// Package ofx reads OFX/QFX bank and credit card statements and turns their
// transactions into ledger entries.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
)

// ErrAmountOverflow is returned for amounts that do not fit in int64 kopecks.
var ErrAmountOverflow = errors.New("amount out of range")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	hundred       = big.NewInt(100)
)

// Entry is one statement transaction. Amount is signed kopecks: negative
// for money leaving the account.
type Entry struct {
	Posted   time.Time
	FITID    string
	Account  string
	Payee    string
	Type     string
	CheckNum string
	Amount   int64
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of a bare opening tag.
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Parse reads every bank and credit card statement in the file.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		converted, err := p.convertList(ctx, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		entries = append(entries, converted...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		converted, err := p.convertList(ctx, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		entries = append(entries, converted...)
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convertList(ctx context.Context, txns []ofxgo.Transaction, account string) ([]Entry, error) {
	entries := make([]Entry, 0, len(txns))
	for _, ofxTx := range txns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		amount, err := toKopecks(&ofxTx.TrnAmt.Rat)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", ofxTx.FiTID, err)
		}
		entries = append(entries, Entry{
			FITID:    string(ofxTx.FiTID),
			Posted:   ofxTx.DtPosted.Time,
			Account:  account,
			Payee:    p.extractMerchantName(ofxTx),
			Type:     fmt.Sprintf("%v", ofxTx.TrnType),
			CheckNum: string(ofxTx.CheckNum),
			Amount:   amount,
		})
	}
	return entries, nil
}

// toKopecks converts an exact decimal amount to kopecks, dropping anything
// past the second fractional digit.
func toKopecks(amount *big.Rat) (int64, error) {
	scaled := new(big.Int).Mul(amount.Num(), hundred)
	scaled.Quo(scaled, amount.Denom())
	if !scaled.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOverflow, amount.FloatString(2))
	}
	return scaled.Int64(), nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// Accounts returns the sorted, unique statement account ids in the file.
func (p *Parser) Accounts(reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			accountMap[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			accountMap[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
