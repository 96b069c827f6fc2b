// Package commands is the named command surface the host talks to.
//
// A command is addressed by name and carries a JSON object payload whose keys
// are lowerCamelCase argument names:
//
//	insert_form_data     {"formData": FormData}                       -> account ULID
//	get_account_summary  {}                                           -> []AccountSummary
//	get_search_results   {"searchCriteria": SearchCriteria}           -> []AccountSummary
//	get_password_info    {"identifierUlid": string}                   -> []PasswordInfo
//	get_account_info     {"accountUlid": string}                      -> AccountInfo
//	update_account_info  {"formData": FormData, "accountInfo": AccountInfo} -> null
//	delete_account       {"accountUlid": string}                      -> null
//
// Failures are returned in-band as a Response carrying the error message.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/dmitrijs2005/jasmify/internal/metrics"
	"github.com/dmitrijs2005/jasmify/internal/models"
	"github.com/google/uuid"
)

const (
	InsertFormData    = "insert_form_data"
	GetAccountSummary = "get_account_summary"
	GetSearchResults  = "get_search_results"
	GetPasswordInfo   = "get_password_info"
	GetAccountInfo    = "get_account_info"
	UpdateAccountInfo = "update_account_info"
	DeleteAccount     = "delete_account"
)

// Vault is the subset of services.Vault the commands call.
type Vault interface {
	InsertNewAccount(ctx context.Context, form models.FormData) (string, error)
	GetAccountSummary(ctx context.Context) ([]models.AccountSummary, error)
	GetSearchResults(ctx context.Context, criteria models.SearchCriteria) ([]models.AccountSummary, error)
	GetPasswordInfo(ctx context.Context, identifierULID string) ([]models.PasswordInfo, error)
	GetAccountInfo(ctx context.Context, accountULID string) (*models.AccountInfo, error)
	UpdateAccountInfo(ctx context.Context, form models.FormData, old models.AccountInfo) error
	DeleteAccount(ctx context.Context, accountULID string) error
	CountAccounts(ctx context.Context) (int64, error)
}

// Response is the outcome of one command.
type Response struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type handler func(ctx context.Context, payload json.RawMessage) (any, error)

type Dispatcher struct {
	vault    Vault
	logger   logging.Logger
	handlers map[string]handler
}

func NewDispatcher(vault Vault, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		vault:  vault,
		logger: logger.With("module", "commands"),
	}
	d.handlers = map[string]handler{
		InsertFormData:    d.insertFormData,
		GetAccountSummary: d.getAccountSummary,
		GetSearchResults:  d.getSearchResults,
		GetPasswordInfo:   d.getPasswordInfo,
		GetAccountInfo:    d.getAccountInfo,
		UpdateAccountInfo: d.updateAccountInfo,
		DeleteAccount:     d.deleteAccount,
	}
	return d
}

// Names lists the registered command names in sorted order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for n := range d.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs command with payload. An empty payload is treated as {}.
// Every record logged under the call carries a fresh request_id.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, payload json.RawMessage) Response {
	requestID := uuid.NewString()
	ctx = logging.ContextWith(ctx, "request_id", requestID)
	log := d.logger.With("command", command)
	timer := metrics.NewTimer()

	result, err := d.run(ctx, command, payload)

	elapsed := timer.Duration()
	if err != nil {
		kind := common.Classify(err)
		metrics.ObserveCommand(command, kind, elapsed)
		log.Error(ctx, "command failed", "kind", kind, "error", err, "elapsed", elapsed)
		return Response{OK: false, Error: err.Error()}
	}

	metrics.ObserveCommand(command, "ok", elapsed)
	log.Debug(ctx, "command done", "elapsed", elapsed)
	return Response{OK: true, Result: result}
}

func (d *Dispatcher) run(ctx context.Context, command string, payload json.RawMessage) (any, error) {
	h, ok := d.handlers[command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownCommand, command)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage("{}")
	}
	return h(ctx, payload)
}

func decode(payload json.RawMessage, dst any) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBadPayload, err)
	}
	return nil
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", common.ErrBadPayload, name)
	}
	return nil
}

func (d *Dispatcher) insertFormData(ctx context.Context, payload json.RawMessage) (any, error) {
	var args struct {
		FormData *models.FormData `json:"formData"`
	}
	if err := decode(payload, &args); err != nil {
		return nil, err
	}
	if args.FormData == nil {
		return nil, fmt.Errorf("%w: formData is required", common.ErrBadPayload)
	}
	return d.vault.InsertNewAccount(ctx, *args.FormData)
}

func (d *Dispatcher) getAccountSummary(ctx context.Context, _ json.RawMessage) (any, error) {
	rows, err := d.vault.GetAccountSummary(ctx)
	if err != nil {
		return nil, err
	}
	metrics.AccountsTotal.Set(float64(len(rows)))
	return rows, nil
}

func (d *Dispatcher) getSearchResults(ctx context.Context, payload json.RawMessage) (any, error) {
	var args struct {
		SearchCriteria models.SearchCriteria `json:"searchCriteria"`
	}
	if err := decode(payload, &args); err != nil {
		return nil, err
	}
	return d.vault.GetSearchResults(ctx, args.SearchCriteria)
}

func (d *Dispatcher) getPasswordInfo(ctx context.Context, payload json.RawMessage) (any, error) {
	var args struct {
		IdentifierULID string `json:"identifierUlid"`
	}
	if err := decode(payload, &args); err != nil {
		return nil, err
	}
	if err := required("identifierUlid", args.IdentifierULID); err != nil {
		return nil, err
	}
	return d.vault.GetPasswordInfo(ctx, args.IdentifierULID)
}

func (d *Dispatcher) getAccountInfo(ctx context.Context, payload json.RawMessage) (any, error) {
	var args struct {
		AccountULID string `json:"accountUlid"`
	}
	if err := decode(payload, &args); err != nil {
		return nil, err
	}
	if err := required("accountUlid", args.AccountULID); err != nil {
		return nil, err
	}
	return d.vault.GetAccountInfo(ctx, args.AccountULID)
}

func (d *Dispatcher) updateAccountInfo(ctx context.Context, payload json.RawMessage) (any, error) {
	var args struct {
		FormData    *models.FormData    `json:"formData"`
		AccountInfo *models.AccountInfo `json:"accountInfo"`
	}
	if err := decode(payload, &args); err != nil {
		return nil, err
	}
	if args.FormData == nil || args.AccountInfo == nil {
		return nil, fmt.Errorf("%w: formData and accountInfo are required", common.ErrBadPayload)
	}
	if err := required("accountInfo.accountUlid", args.AccountInfo.AccountULID); err != nil {
		return nil, err
	}
	return nil, d.vault.UpdateAccountInfo(ctx, *args.FormData, *args.AccountInfo)
}

func (d *Dispatcher) deleteAccount(ctx context.Context, payload json.RawMessage) (any, error) {
	var args struct {
		AccountULID string `json:"accountUlid"`
	}
	if err := decode(payload, &args); err != nil {
		return nil, err
	}
	if err := required("accountUlid", args.AccountULID); err != nil {
		return nil, err
	}
	if err := d.vault.DeleteAccount(ctx, args.AccountULID); err != nil {
		return nil, err
	}
	if n, err := d.vault.CountAccounts(ctx); err == nil {
		metrics.AccountsTotal.Set(float64(n))
	}
	return nil, nil
}
