package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

const systemPrompt = `You read OCR text of purchase receipts for a bookkeeping system.
Return the vendor name, the purchase date as YYYY-MM-DD, the grand total, the tax amount
and the ISO-4217 currency code. Amounts are plain decimal strings without symbols.
Use null for anything the receipt does not show. Never guess.`

// Generator is the part of the GenAI client the extractor needs. client.Models implements it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// LLM asks a Gemini model for the receipt fields as JSON.
type LLM struct {
	gen   Generator
	model string
}

func NewLLM(gen Generator, model string) *LLM {
	return &LLM{gen: gen, model: model}
}

// NewGenAI connects to the Gemini API with apiKey.
func NewGenAI(ctx context.Context, apiKey, model string) (*LLM, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return NewLLM(client.Models, model), nil
}

type llmReceipt struct {
	Vendor    *string             `json:"vendor"`
	Date      *string             `json:"date"`
	Total     decimal.NullDecimal `json:"total"`
	TaxAmount decimal.NullDecimal `json:"tax_amount"`
	Currency  *string             `json:"currency"`
}

func receiptSchema() *genai.Schema {
	nullableString := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Nullable: genai.Ptr(true), Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"vendor":     nullableString("merchant name"),
			"date":       nullableString("purchase date, YYYY-MM-DD"),
			"total":      nullableString("grand total"),
			"tax_amount": nullableString("total tax"),
			"currency":   nullableString("ISO-4217 code"),
		},
		Required: []string{"vendor", "date", "total", "tax_amount", "currency"},
	}
}

func (l *LLM) Extract(ctx context.Context, text string) (*Receipt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("receipt text is empty")
	}
	resp, err := l.gen.GenerateContent(ctx, l.model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		ResponseSchema:    receiptSchema(),
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	})
	if err != nil {
		return nil, fmt.Errorf("GenerateContent: %w", err)
	}
	out := resp.Text()
	if out == "" {
		return nil, errors.New("model returned no content")
	}

	var parsed llmReceipt
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("decoding model output: %w", err)
	}

	r := &Receipt{Source: "llm"}
	if parsed.Vendor != nil {
		r.Vendor = strings.TrimSpace(*parsed.Vendor)
	}
	if parsed.Date != nil {
		if t, err := time.Parse(time.DateOnly, strings.TrimSpace(*parsed.Date)); err == nil {
			r.Date = t
		}
	}
	if parsed.Total.Valid {
		r.Total = parsed.Total.Decimal
	}
	if parsed.TaxAmount.Valid {
		r.TaxAmount = parsed.TaxAmount.Decimal
	}
	if parsed.Currency != nil {
		r.Currency = strings.ToUpper(strings.TrimSpace(*parsed.Currency))
	}
	r.Confidence = confidence(r)
	return r, nil
}
