package scan

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// Extract builds a purchase draft from a processed Document AI document.
// Totals are recomputed from the extracted lines.
func Extract(doc *documentaipb.Document) (*Result, error) {
	const op = "Extract"

	result := &Result{
		Draft: models.PurchaseOrder{
			Items:  []models.InvoiceItem{},
			Status: models.PurchaseReceived,
		},
		DocumentTotal: decimal.Zero,
		Confidence:    make(map[string]float32),
	}

	for _, entity := range doc.GetEntities() {
		value := strings.TrimSpace(entity.GetMentionText())
		result.Confidence[entity.GetType()] = max(result.Confidence[entity.GetType()], entity.GetConfidence())

		switch entity.GetType() {
		case "supplier_name", "vendor_name":
			result.Draft.SupplierName = value
		case "invoice_id", "invoice_number":
			result.InvoiceNumber = value
		case "invoice_date":
			if date, err := extractDate(entity); err == nil {
				result.Draft.Date = date
			}
		case "total_amount", "gross_amount":
			if amount, err := extractMoney(entity); err == nil {
				result.DocumentTotal = amount
			}
		case "line_item":
			if item, ok := extractLine(entity); ok {
				result.Draft.Items = append(result.Draft.Items, item)
			}
		}
	}

	if len(result.Draft.Items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoLineItems)
	}
	result.Draft.TotalAmount = models.ItemsTotal(result.Draft.Items)
	return result, nil
}

// extractLine reads the properties of a line_item entity. A line needs a
// description and at least one of unit price or amount.
func extractLine(entity *documentaipb.Document_Entity) (models.InvoiceItem, bool) {
	var (
		description       string
		quantity          = decimal.NewFromInt(1)
		unitPrice, amount decimal.Decimal
		hasPrice          bool
		hasAmount         bool
	)

	for _, prop := range entity.GetProperties() {
		text := strings.TrimSpace(prop.GetMentionText())
		switch prop.GetType() {
		case "line_item/description", "line_item/product_code":
			if description == "" {
				description = text
			} else {
				description += " " + text
			}
		case "line_item/quantity":
			if q, err := parseAmount(text); err == nil && q.IsPositive() {
				quantity = q
			}
		case "line_item/unit_price":
			if v, err := extractMoney(prop); err == nil {
				unitPrice, hasPrice = v, true
			}
		case "line_item/amount":
			if v, err := extractMoney(prop); err == nil {
				amount, hasAmount = v, true
			}
		}
	}

	if description == "" || (!hasPrice && !hasAmount) {
		return models.InvoiceItem{}, false
	}
	if !hasPrice {
		unitPrice = amount.Div(quantity).Round(2)
	}

	return models.InvoiceItem{
		ProductName: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       quantity.Mul(unitPrice),
	}, true
}

// extractMoney prefers the normalized money value and falls back to the
// printed text.
func extractMoney(entity *documentaipb.Document_Entity) (decimal.Decimal, error) {
	if money := entity.GetNormalizedValue().GetMoneyValue(); money != nil {
		return decimal.New(money.GetUnits(), 0).Add(decimal.New(int64(money.GetNanos()), -9)), nil
	}
	return parseAmount(entity.GetMentionText())
}

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"02.01.2006",
	"02-01-2006",
	"2006/01/02",
	"2 January 2006",
	"2 Jan 2006",
}

// extractDate returns the invoice date as YYYY-MM-DD. Slash dates are read
// day first.
func extractDate(entity *documentaipb.Document_Entity) (string, error) {
	if d := entity.GetNormalizedValue().GetDateValue(); d != nil && d.GetYear() > 0 {
		return fmt.Sprintf("%04d-%02d-%02d", d.GetYear(), d.GetMonth(), d.GetDay()), nil
	}

	text := strings.TrimSpace(entity.GetMentionText())
	if text == "" {
		return "", fmt.Errorf("empty date value")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return "", fmt.Errorf("unable to parse date: %s", text)
}

var currencyMarks = strings.NewReplacer(
	"DZD", "", "DA", "", "EUR", "", "USD", "",
	"€", "", "$", "",
	" ", "", "\u00a0", "", "\u202f", "",
)

// parseAmount reads printed numbers in French, German or English style:
// "8 500,00 DA", "7.303,08", "1,234.50". When both separators appear the
// last one is the decimal mark.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := currencyMarks.Replace(strings.TrimSpace(s))

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		// A single comma followed by one or two digits is a decimal mark;
		// anything else groups thousands.
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", s, cleaned)
	}
	return amount, nil
}
