package bankfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// FieldPaths locates the statement lines and their fields in a provider
// response. List is evaluated against the whole document, the others against
// each element of the list.
type FieldPaths struct {
	List        string `yaml:"list"`
	ID          string `yaml:"id"`
	Date        string `yaml:"date"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
}

// DefaultFieldPaths matches a response of the form
// {"transactions":[{"id":..,"date":..,"amount":..,"description":..}]}.
func DefaultFieldPaths() FieldPaths {
	return FieldPaths{
		List:        "$.transactions",
		ID:          "$.id",
		Date:        "$.date",
		Amount:      "$.amount",
		Description: "$.description",
	}
}

// HTTPProvider reads a JSON aggregation API:
// GET {BaseURL}/accounts/{ref}/transactions?from=YYYY-MM-DD&to=YYYY-MM-DD
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Paths   FieldPaths
	Client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration, paths FieldPaths) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Paths:   paths,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Fetch(ctx context.Context, externalRef string, from, to time.Time) ([]Transaction, error) {
	q := url.Values{}
	q.Set("from", from.Format(time.DateOnly))
	q.Set("to", to.Format(time.DateOnly))
	addr := fmt.Sprintf("%s/accounts/%s/transactions?%s", p.BaseURL, url.PathEscape(externalRef), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", externalRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetching %s: status %d: %s", externalRef, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding response for %s: %w", externalRef, err)
	}
	return p.extract(doc)
}

func (p *HTTPProvider) extract(doc any) ([]Transaction, error) {
	paths := p.Paths
	if paths.List == "" {
		paths = DefaultFieldPaths()
	}

	raw, err := jsonpath.Get(paths.List, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", paths.List, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("evaluating %q: expected a list, got %T", paths.List, raw)
	}

	txns := make([]Transaction, 0, len(items))
	for i, item := range items {
		txn, err := extractOne(paths, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func extractOne(paths FieldPaths, item any) (Transaction, error) {
	id, err := getString(paths.ID, item)
	if err != nil {
		return Transaction{}, err
	}
	if id == "" {
		return Transaction{}, fmt.Errorf("empty id at %q", paths.ID)
	}

	rawDate, err := getString(paths.Date, item)
	if err != nil {
		return Transaction{}, err
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return Transaction{}, err
	}

	rawAmount, err := getString(paths.Amount, item)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return Transaction{}, fmt.Errorf("parsing amount %q: %w", rawAmount, err)
	}

	desc := ""
	if paths.Description != "" {
		// Description is optional in some feeds.
		desc, _ = getString(paths.Description, item)
	}

	return Transaction{
		ExternalID:  id,
		Date:        date,
		Amount:      amount,
		Description: desc,
	}, nil
}

// getString evaluates path and renders the scalar it finds.
func getString(path string, item any) (string, error) {
	v, err := jsonpath.Get(path, item)
	if err != nil {
		return "", fmt.Errorf("evaluating %q: %w", path, err)
	}
	// jsonpath returns a list for wildcard or filter paths; keep the first match.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return "", fmt.Errorf("evaluating %q: no match", path)
		}
		v = list[0]
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("evaluating %q: null", path)
	default:
		return fmt.Sprint(val), nil
	}
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}
