package budgetcsv

import (
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/shopspring/decimal"
)

// FormatNow renders budgets for export using the current date.
func FormatNow(budgets []model.Budget) string {
	return Format(budgets, time.Now())
}

// Format renders budgets as an import-compatible CSV. The absolute
// expiration date is not written; each row carries the days left until it,
// counted from today and never negative.
func Format(budgets []model.Budget, today time.Time) string {
	var b strings.Builder
	b.WriteString(BOM)
	b.WriteString(HeaderLine())

	for i := range budgets {
		b.WriteByte('\n')
		b.WriteString(formatRow(&budgets[i], today))
	}
	return b.String()
}

func formatRow(bg *model.Budget, today time.Time) string {
	installmentPrice := ""
	if bg.InstallmentPriceCents != nil {
		installmentPrice = formatCents(*bg.InstallmentPriceCents)
	}

	fields := []string{
		bg.DeviceType,
		deref(bg.DeviceBrand),
		bg.DeviceModel,
		bg.Issue,
		bg.ServiceType,
		deref(bg.Notes),
		formatCents(bg.TotalPriceCents),
		installmentPrice,
		strconv.Itoa(bg.Installments),
		bg.PaymentCondition,
		strconv.Itoa(bg.WarrantyMonths),
		strconv.Itoa(ValidityDays(bg.ValidUntil, today)),
		yesNo(bg.IncludesDelivery),
		yesNo(bg.IncludesScreenProtector),
	}

	for i, f := range fields {
		fields[i] = escapeField(lineBreaks.Replace(NormalizeData(f)))
	}
	return strings.Join(fields, Delimiter)
}

// ValidityDays returns the whole days from today until validUntil, comparing
// calendar dates in today's location. Past dates yield 0.
func ValidityDays(validUntil, today time.Time) int {
	days := int(dateOf(validUntil.In(today.Location())).Sub(dateOf(today)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// dateOf drops the clock, keeping the calendar date as UTC midnight so
// daylight saving shifts never change the difference.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// lineBreaks flattens multi-line text; imports read one budget per line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// escapeField quotes values holding the delimiter or quotes.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ";\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func yesNo(v bool) string {
	if v {
		return "sim"
	}
	return "nao"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
