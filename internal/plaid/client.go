// Package plaid pulls bank transactions from the Plaid API into the ledger.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Veraticus/kopeck/internal/common"
)

const (
	// EnvironmentSandbox is Plaid's test environment.
	EnvironmentSandbox = "sandbox"
	// EnvironmentProduction is Plaid's live environment.
	EnvironmentProduction = "production"

	dateLayout = "2006-01-02"
	pageSize   = int32(500)
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string
	AccessToken string
	// BaseURL overrides the environment's API host.
	BaseURL string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("plaid client ID is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("plaid secret is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("plaid access token is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("plaid environment is required")
	}
	if c.Environment != EnvironmentSandbox && c.Environment != EnvironmentProduction {
		return fmt.Errorf("invalid Plaid environment %q: must be sandbox or production", c.Environment)
	}
	return nil
}

// Client fetches accounts and transactions for one Plaid item.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   common.RetryOptions
	accessToken string
}

// NewClient creates a Plaid client for cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch {
	case cfg.BaseURL != "":
		configuration.UseEnvironment(plaid.Environment(cfg.BaseURL))
	case cfg.Environment == EnvironmentProduction:
		configuration.UseEnvironment(plaid.Production)
	default:
		configuration.UseEnvironment(plaid.Sandbox)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetTransactions fetches every transaction dated within [startDate, endDate].
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]Transaction, error) {
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(dateLayout),
		"end_date", endDate.Format(dateLayout))

	var all []plaid.Transaction
	offset := int32(0)
	for {
		var page []plaid.Transaction
		var total int32

		err := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(c.accessToken, startDate.Format(dateLayout), endDate.Format(dateLayout))
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return classifyError("fetch transactions", err)
			}
			page = resp.GetTransactions()
			total = resp.GetTotalTransactions()
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		c.logger.Debug("Fetched transaction page", "count", len(page), "offset", offset, "total", total)

		if len(page) == 0 || int32(len(all)) >= total {
			break
		}
		offset += int32(len(page))
	}

	transactions := make([]Transaction, 0, len(all))
	for _, pt := range all {
		txn, err := mapTransaction(pt)
		if err != nil {
			c.logger.Warn("Skipping Plaid transaction", "id", pt.GetTransactionId(), "error", err)
			continue
		}
		transactions = append(transactions, txn)
	}

	c.logger.Info("Fetched transactions", "count", len(transactions))
	return transactions, nil
}

// GetAccounts lists the accounts linked to the item.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return classifyError("fetch accounts", err)
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	result := make([]Account, 0, len(accounts))
	for _, acc := range accounts {
		result = append(result, Account{
			ID:   acc.GetAccountId(),
			Name: acc.GetName(),
			Mask: acc.GetMask(),
			Type: string(acc.GetType()),
		})
	}
	return result, nil
}

// classifyError turns API errors into permanent failures, except rate limits
// which are retried after the maximum delay.
func classifyError(action string, err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		return fmt.Errorf("%w: %s", common.ErrRateLimit, plaidErr.ErrorMessage)
	}
	return common.Permanent(fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage))
}

// mapTransaction converts a Plaid transaction. Plaid reports debits as
// positive amounts, so the sign is flipped to make outflows negative.
func mapTransaction(pt plaid.Transaction) (Transaction, error) {
	date, err := time.Parse(dateLayout, pt.GetDate())
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid date %q: %w", pt.GetDate(), err)
	}

	merchant := pt.GetMerchantName()
	if merchant == "" {
		merchant = pt.GetName()
	}

	return Transaction{
		ID:           pt.GetTransactionId(),
		AccountID:    pt.GetAccountId(),
		Date:         date,
		Name:         pt.GetName(),
		MerchantName: cleanMerchantName(merchant),
		Amount:       toMinorUnits(-pt.GetAmount()),
		Pending:      pt.GetPending(),
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// cleanMerchantName title-cases a merchant name and strips trailing
// reference numbers and company suffixes.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !isLetter(runes[j-1]) {
				runes[j] = toUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	// "MERCHANT 123456789": a long numeric tail is a reference, not a name.
	if len(words) > 1 {
		last := words[len(words)-1]
		if len(last) > 5 && isAllDigits(last) {
			words = words[:len(words)-1]
		}
	}
	name = strings.Join(words, " ")

	suffixes := []string{" Llc", " Inc", " Corp", " Corporation", " Company", " Co", " Ltd", " Limited", " Ао", " Ооо"}
	for changed := true; changed; {
		changed = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
}

func toUpper(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 'A'
	case r >= 'а' && r <= 'я':
		return r - 'а' + 'А'
	case r == 'ё':
		return 'Ё'
	}
	return r
}

var _ TransactionFetcher = (*Client)(nil)
