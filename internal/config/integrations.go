package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/plaid"
	"github.com/Veraticus/kopeck/internal/sheets"
)

// Integration keys.
const (
	KeySheetsClientID           = "sheets.client_id"
	KeySheetsClientSecret       = "sheets.client_secret"
	KeySheetsRefreshToken       = "sheets.refresh_token"
	KeySheetsTokenFile          = "sheets.token_file"
	KeySheetsServiceAccountPath = "sheets.service_account_path"
	KeySheetsSpreadsheetID      = "sheets.spreadsheet_id"
	KeySheetsSpreadsheetName    = "sheets.spreadsheet_name"

	KeyPlaidClientID        = "plaid.client_id"
	KeyPlaidSecret          = "plaid.secret"
	KeyPlaidEnvironment     = "plaid.environment"
	KeyPlaidAccessToken     = "plaid.access_token"
	KeyPlaidBaseURL         = "plaid.base_url"
	KeyPlaidAccounts        = "plaid.accounts"
	KeyPlaidExpenseCategory = "plaid.expense_category"
	KeyPlaidIncomeCategory  = "plaid.income_category"
)

// DefaultSheetsTokenFile is where the OAuth token is kept between runs.
const DefaultSheetsTokenFile = "$HOME/.config/kopeck/sheets-token.json"

// LoadSheetsConfig reads the Google Sheets export settings. Values missing
// from v fall back to GOOGLE_SHEETS_* environment variables.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	cfg.ClientID = lookup(v, KeySheetsClientID, "GOOGLE_SHEETS_CLIENT_ID")
	cfg.ClientSecret = lookup(v, KeySheetsClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	cfg.RefreshToken = lookup(v, KeySheetsRefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	cfg.ServiceAccountPath = ExpandPath(lookup(v, KeySheetsServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	cfg.SpreadsheetID = lookup(v, KeySheetsSpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	if name := lookup(v, KeySheetsSpreadsheetName, "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		cfg.SpreadsheetName = name
	}

	cfg.TokenFile = ExpandPath(v.GetString(KeySheetsTokenFile))
	if cfg.TokenFile == "" && cfg.ServiceAccountPath == "" {
		cfg.TokenFile = ExpandPath(DefaultSheetsTokenFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// PlaidSettings is the Plaid client configuration plus how its accounts map
// onto the ledger.
type PlaidSettings struct {
	AccountMap        map[string]int64
	Client            plaid.Config
	ExpenseCategoryID int64
	IncomeCategoryID  int64
}

// LoadPlaidConfig reads the Plaid sync settings. Credentials missing from v
// fall back to PLAID_* environment variables. Accounts are listed as
// "plaid-account-id=ledger-account-id" pairs.
func LoadPlaidConfig(v *viper.Viper) (*PlaidSettings, error) {
	settings := &PlaidSettings{
		Client: plaid.Config{
			ClientID:    lookup(v, KeyPlaidClientID, "PLAID_CLIENT_ID"),
			Secret:      lookup(v, KeyPlaidSecret, "PLAID_SECRET"),
			Environment: lookup(v, KeyPlaidEnvironment, "PLAID_ENV"),
			AccessToken: lookup(v, KeyPlaidAccessToken, "PLAID_ACCESS_TOKEN"),
			BaseURL:     v.GetString(KeyPlaidBaseURL),
		},
		ExpenseCategoryID: v.GetInt64(KeyPlaidExpenseCategory),
		IncomeCategoryID:  v.GetInt64(KeyPlaidIncomeCategory),
	}
	if settings.Client.Environment == "" {
		settings.Client.Environment = plaid.EnvironmentSandbox
	}

	if err := settings.Client.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	accountMap, err := ParseAccountMap(v.GetStringSlice(KeyPlaidAccounts))
	if err != nil {
		return nil, err
	}
	settings.AccountMap = accountMap
	return settings, nil
}

// ParseAccountMap parses "external-id=ledger-id" pairs.
func ParseAccountMap(pairs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(pairs))
	for _, pair := range pairs {
		external, ledgerID, ok := strings.Cut(pair, "=")
		external = strings.TrimSpace(external)
		if !ok || external == "" {
			return nil, fmt.Errorf("%w: %s entry %q is not external-id=ledger-id", common.ErrInvalidConfig, KeyPlaidAccounts, pair)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(ledgerID), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %s entry %q has an invalid account id", common.ErrInvalidConfig, KeyPlaidAccounts, pair)
		}
		result[external] = id
	}
	return result, nil
}

func lookup(v *viper.Viper, key, env string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return os.Getenv(env)
}
