package ledger

import (
	"github.com/shopspring/decimal"
)

type side int

const (
	debitSide side = iota
	creditSide
)

// draft is a line before rounding.
type draft struct {
	account     Account
	side        side
	amount      decimal.Decimal
	description string
}

// Builder turns source documents into balanced journal entries.
type Builder struct {
	currency string
	places   int32
}

// NewBuilder returns a Builder rounding to the precision of currency.
func NewBuilder(currency string) *Builder {
	return &Builder{currency: currency, places: Places(currency)}
}

// Build maps a source document onto the chart and returns a balanced entry.
// Nothing is persisted; the entry carries no id yet.
func (b *Builder) Build(doc SourceDocument, chart *Chart) (*JournalEntry, error) {
	switch doc.SourceType {
	case SourceInvoice, SourceBill, SourceExpense, SourcePayment:
	default:
		return nil, NewConfigurationError("no posting rule for source type %q", doc.SourceType)
	}
	if err := doc.validate(b.places); err != nil {
		return nil, err
	}

	gross := doc.Amount.Round(b.places)
	net, tax := b.split(doc, gross)
	if !net.Round(b.places).IsPositive() {
		return nil, NewValidationError("tax %s leaves nothing of amount %s", tax.String(), gross.String())
	}

	var drafts []draft
	var err error
	switch doc.SourceType {
	case SourceInvoice:
		drafts, err = invoiceDrafts(doc, chart, gross, net, tax)
	case SourceBill:
		drafts, err = billDrafts(doc, chart, gross, net, tax)
	case SourceExpense:
		drafts, err = expenseDrafts(doc, chart, gross, net, tax)
	case SourcePayment:
		drafts, err = paymentDrafts(doc, chart, gross)
	}
	if err != nil {
		return nil, err
	}

	lines, err := b.finalize(drafts, gross)
	if err != nil {
		return nil, err
	}

	entry := &JournalEntry{
		CompanyID:  doc.CompanyID,
		Date:       doc.Date,
		SourceType: doc.SourceType,
		SourceID:   doc.SourceID,
		Memo:       doc.Memo,
		Currency:   b.currency,
		Lines:      lines,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// BuildManual resolves account codes for a hand-written entry and checks it balances.
func (b *Builder) BuildManual(m ManualEntry, chart *Chart) (*JournalEntry, error) {
	if err := m.validate(b.places); err != nil {
		return nil, err
	}

	entry := &JournalEntry{
		CompanyID:  m.CompanyID,
		Date:       m.Date,
		SourceType: SourceManual,
		SourceID:   m.SourceID,
		Memo:       m.Memo,
		Currency:   b.currency,
		Lines:      make([]Line, len(m.Lines)),
	}
	for i, ml := range m.Lines {
		account, err := chart.resolve(ml.AccountCode)
		if err != nil {
			return nil, err
		}
		entry.Lines[i] = Line{
			LineNo:      i + 1,
			AccountID:   account.ID,
			AccountCode: account.Code,
			Debit:       ml.Debit,
			Credit:      ml.Credit,
			Description: ml.Description,
		}
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// split separates the tax portion from the gross. Results are unrounded.
func (b *Builder) split(doc SourceDocument, gross decimal.Decimal) (net, tax decimal.Decimal) {
	switch {
	case !doc.TaxAmount.IsZero():
		tax = doc.TaxAmount
		net = gross.Sub(tax)
	case !doc.TaxRate.IsZero():
		net = gross.Div(decimal.NewFromInt(1).Add(doc.TaxRate))
		tax = net.Mul(doc.TaxRate)
	default:
		net = gross
		tax = decimal.Zero
	}
	return net, tax
}

// finalize rounds each draft once, absorbs a residual of at most one minor unit
// into the largest line of the affected side and drops zero lines.
func (b *Builder) finalize(drafts []draft, gross decimal.Decimal) ([]Line, error) {
	tolerance := MinorUnit(b.places)
	for i := range drafts {
		drafts[i].amount = drafts[i].amount.Round(b.places)
	}

	for _, s := range []side{debitSide, creditSide} {
		sum := decimal.Zero
		largest := -1
		for i, d := range drafts {
			if d.side != s {
				continue
			}
			sum = sum.Add(d.amount)
			if largest < 0 || d.amount.GreaterThan(drafts[largest].amount) {
				largest = i
			}
		}
		if largest < 0 {
			return nil, NewIntegrityError("posting rule produced no %s lines", sideName(s))
		}
		residual := gross.Sub(sum)
		if residual.IsZero() {
			continue
		}
		if residual.Abs().GreaterThan(tolerance) {
			return nil, NewIntegrityError("%s lines sum to %s, document total is %s",
				sideName(s), sum.String(), gross.String())
		}
		drafts[largest].amount = drafts[largest].amount.Add(residual)
	}

	lines := make([]Line, 0, len(drafts))
	for _, d := range drafts {
		if d.amount.IsZero() {
			continue
		}
		if d.amount.IsNegative() {
			return nil, NewIntegrityError("line for account %s rounded to a negative amount", d.account.Code)
		}
		line := Line{
			LineNo:      len(lines) + 1,
			AccountID:   d.account.ID,
			AccountCode: d.account.Code,
			Description: d.description,
		}
		if d.side == debitSide {
			line.Debit = d.amount
		} else {
			line.Credit = d.amount
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func sideName(s side) string {
	if s == debitSide {
		return "debit"
	}
	return "credit"
}

func codeOr(hint, fallback string) string {
	if hint != "" {
		return hint
	}
	return fallback
}

func invoiceDrafts(doc SourceDocument, chart *Chart, gross, net, tax decimal.Decimal) ([]draft, error) {
	receivable, err := chart.resolve(CodeAccountsReceivable)
	if err != nil {
		return nil, err
	}
	revenue, err := chart.resolve(codeOr(doc.AccountCode, CodeSalesRevenue), AccountTypeRevenue)
	if err != nil {
		return nil, err
	}
	drafts := []draft{
		{account: receivable, side: debitSide, amount: gross, description: "Invoice total"},
		{account: revenue, side: creditSide, amount: net, description: "Invoice revenue"},
	}
	if !tax.IsZero() {
		vat, err := chart.resolve(CodeVATPayable)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft{account: vat, side: creditSide, amount: tax, description: "Output tax"})
	}
	return drafts, nil
}

func billDrafts(doc SourceDocument, chart *Chart, gross, net, tax decimal.Decimal) ([]draft, error) {
	expense, err := chart.resolve(codeOr(doc.AccountCode, CodeGeneralExpenses), AccountTypeExpense, AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	payable, err := chart.resolve(CodeAccountsPayable)
	if err != nil {
		return nil, err
	}
	drafts := []draft{
		{account: expense, side: debitSide, amount: net, description: "Bill net"},
	}
	if !tax.IsZero() {
		vat, err := chart.resolve(CodeVATReceivable)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft{account: vat, side: debitSide, amount: tax, description: "Input tax"})
	}
	drafts = append(drafts, draft{account: payable, side: creditSide, amount: gross, description: "Bill total"})
	return drafts, nil
}

func expenseDrafts(doc SourceDocument, chart *Chart, gross, net, tax decimal.Decimal) ([]draft, error) {
	expense, err := chart.resolve(codeOr(doc.AccountCode, CodeGeneralExpenses), AccountTypeExpense, AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	bank, err := chart.resolve(codeOr(doc.BankAccountCode, CodeCashAtBank), AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	drafts := []draft{
		{account: expense, side: debitSide, amount: net, description: "Expense net"},
	}
	if !tax.IsZero() {
		vat, err := chart.resolve(CodeVATReceivable)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft{account: vat, side: debitSide, amount: tax, description: "Input tax"})
	}
	drafts = append(drafts, draft{account: bank, side: creditSide, amount: gross, description: "Paid"})
	return drafts, nil
}

func paymentDrafts(doc SourceDocument, chart *Chart, gross decimal.Decimal) ([]draft, error) {
	bank, err := chart.resolve(codeOr(doc.BankAccountCode, CodeCashAtBank), AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	if doc.Direction == PaymentReceived {
		counterpart, err := chart.resolve(codeOr(doc.AccountCode, CodeAccountsReceivable), AccountTypeAsset, AccountTypeLiability)
		if err != nil {
			return nil, err
		}
		return []draft{
			{account: bank, side: debitSide, amount: gross, description: "Payment received"},
			{account: counterpart, side: creditSide, amount: gross, description: "Payment received"},
		}, nil
	}
	counterpart, err := chart.resolve(codeOr(doc.AccountCode, CodeAccountsPayable), AccountTypeLiability, AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	return []draft{
		{account: counterpart, side: debitSide, amount: gross, description: "Payment made"},
		{account: bank, side: creditSide, amount: gross, description: "Payment made"},
	}, nil
}
