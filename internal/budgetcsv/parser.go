package budgetcsv

import (
	"encoding/csv"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/shopspring/decimal"
)

// Defaults applied when a cell is blank or not a number.
const (
	DefaultInstallments   = 1
	DefaultWarrantyMonths = 3
	DefaultValidityDays   = 15
)

// maxValidityDays keeps ValidUntil well inside the database timestamp range.
const maxValidityDays = 36500

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCount = decimal.NewFromInt(math.MaxInt32)
	minCount = decimal.NewFromInt(math.MinInt32)

	plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// record is one CSV row with the file line it came from.
type record struct {
	line   int
	fields []string
}

// row maps column keys to cleaned cell values.
type row map[string]string

func (r row) empty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// Parse converts an uploaded CSV into budgets owned by ownerID.
// See ParseAt.
func Parse(input, ownerID string) ([]model.Budget, error) {
	return ParseAt(input, ownerID, time.Now())
}

// ParseAt converts an uploaded CSV into budgets owned by ownerID, computing
// validity windows from now.
//
// The header may be preceded by any number of instruction lines. Parsing is
// all-or-nothing: the first invalid row fails the call and no budgets are
// returned.
func ParseAt(input, ownerID string, now time.Time) ([]model.Budget, error) {
	lines := splitLines(input)

	h := findHeader(lines)
	if h < 0 {
		return nil, headerNotFound()
	}

	header, err := readRecord(lines[h], h+1)
	if err != nil {
		return nil, err
	}
	keys := headerKeys(header.fields)

	var budgets []model.Budget
	dataLines := 0
	for i := h + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		dataLines++

		rec, err := readRecord(lines[i], i+1)
		if err != nil {
			return nil, err
		}
		r := zipRow(keys, rec.fields)
		if r.empty() {
			continue
		}

		b, err := buildBudget(r, rec.line, ownerID, now)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if dataLines == 0 {
		return nil, ErrEmptyFile
	}

	if len(budgets) == 0 {
		return nil, ErrNoValidRecords
	}
	return budgets, nil
}

// splitLines breaks input on LF or CRLF. A record never spans lines, so a
// stray quote can only spoil the line it is on.
func splitLines(input string) []string {
	input = strings.TrimPrefix(input, BOM)
	lines := strings.Split(input, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// findHeader returns the index of the first line that carries every anchor
// column, or -1.
func findHeader(lines []string) int {
	for i, l := range lines {
		if containsAll(NormalizeHeader(l), anchorKeys) {
			return i
		}
	}
	return -1
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// readRecord splits one line on semicolons outside quoted fields. Bare quotes
// inside unquoted cells are kept as text; a quoted field left open fails the
// line.
func readRecord(text string, line int) (record, error) {
	fields, err := readFields(text, false)
	if errors.Is(err, csv.ErrBareQuote) {
		fields, err = readFields(text, true)
	}
	if err != nil {
		return record{}, &RowError{Row: line, Err: ErrMalformedRow}
	}
	return record{line: line, fields: fields}, nil
}

func readFields(text string, lazy bool) ([]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazy
	return r.Read()
}

func headerKeys(fields []string) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = NormalizeHeader(strings.TrimSpace(f))
	}
	return keys
}

// zipRow pairs values with column keys. Missing trailing values are empty
// and the first column wins when a key repeats. Quoting is already decoded,
// so cells are only trimmed.
func zipRow(keys, fields []string) row {
	r := make(row, len(keys))
	for i, k := range keys {
		if k == "" {
			continue
		}
		if _, seen := r[k]; seen {
			continue
		}
		if i < len(fields) {
			r[k] = strings.TrimSpace(fields[i])
		} else {
			r[k] = ""
		}
	}
	return r
}

func buildBudget(r row, line int, ownerID string, now time.Time) (model.Budget, error) {
	rawPrice := r[KeyTotalPrice]
	price, ok := parseAmount(rawPrice)
	total, fits := toCents(price)
	if !ok || !fits || !price.IsPositive() || total < 1 {
		return model.Budget{}, &RowError{
			Row:   line,
			Field: labelFor(KeyTotalPrice),
			Value: rawPrice,
			Err:   ErrInvalidPrice,
		}
	}

	for _, k := range requiredTextKeys {
		if r[k] == "" {
			return model.Budget{}, &RowError{
				Row:   line,
				Field: labelFor(k),
				Err:   ErrMissingRequiredField,
			}
		}
	}

	var installmentPrice *int64
	if d, ok := parseAmount(r[KeyInstallmentPrice]); ok && d.IsPositive() {
		if cents, fits := toCents(d); fits && cents > 0 {
			installmentPrice = &cents
		}
	}

	installments := parseCount(r[KeyInstallments], DefaultInstallments)
	if installments < 1 {
		installments = DefaultInstallments
	}
	warranty := parseCount(r[KeyWarrantyMonths], DefaultWarrantyMonths)
	if warranty < 0 {
		warranty = DefaultWarrantyMonths
	}
	validity := parseCount(r[KeyValidityDays], DefaultValidityDays)
	if validity < 0 || validity > maxValidityDays {
		validity = DefaultValidityDays
	}

	return model.Budget{
		OwnerID:                 ownerID,
		DeviceType:              r[KeyDeviceType],
		DeviceBrand:             optional(r[KeyDeviceBrand]),
		DeviceModel:             r[KeyDeviceModel],
		Issue:                   r[KeyIssue],
		ServiceType:             r[KeyServiceType],
		Notes:                   optional(r[KeyNotes]),
		TotalPriceCents:         total,
		InstallmentPriceCents:   installmentPrice,
		Installments:            installments,
		PaymentCondition:        paymentCondition(r[KeyPaymentCondition], installments, installmentPrice),
		WarrantyMonths:          warranty,
		ValidUntil:              now.AddDate(0, 0, validity),
		IncludesDelivery:        isYes(r[KeyDelivery]),
		IncludesScreenProtector: isYes(r[KeyScreenProtector]),
	}, nil
}

// parseAmount reads a money value written with either decimal separator.
// "R$ 1.234,56", "1234.56" and "150,00" are all accepted; exponents are not.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "R$")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}

	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	s = strings.Replace(s, ",", ".", 1)
	if !plainNumber.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// toCents rounds half away from zero. It reports false when the result does
// not fit in an int64.
func toCents(d decimal.Decimal) (int64, bool) {
	c := d.Mul(hundred).Round(0)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, false
	}
	return c.IntPart(), true
}

// parseCount truncates a numeric cell to an int, or returns def when the
// cell is not a number or does not fit in 32 bits.
func parseCount(s string, def int) int {
	d, ok := parseAmount(s)
	if !ok {
		return def
	}
	n := d.Truncate(0)
	if n.GreaterThan(maxCount) || n.LessThan(minCount) {
		return def
	}
	return int(n.IntPart())
}

func paymentCondition(raw string, installments int, installmentPrice *int64) string {
	switch strings.ToLower(NormalizeData(raw)) {
	case "":
		if installments > 1 && installmentPrice != nil {
			return model.PaymentCreditCard
		}
		return model.PaymentUpfront
	case "cartao de credito":
		return model.PaymentCreditCard
	case "a vista":
		return model.PaymentUpfront
	}
	return raw
}

func isYes(s string) bool {
	return strings.EqualFold(NormalizeData(s), "sim")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
