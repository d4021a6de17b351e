package budgetcsv

import (
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestFormat_Layout(t *testing.T) {
	today := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	budgets := []model.Budget{{
		DeviceType:              "Smartphone",
		DeviceBrand:             ptr("Apple"),
		DeviceModel:             "iPhone 12",
		Issue:                   "Tela quebrada",
		ServiceType:             "Troca de tela",
		Notes:                   ptr("Cliente pediu película; urgente"),
		TotalPriceCents:         123456,
		InstallmentPriceCents:   ptr(int64(41152)),
		Installments:            3,
		PaymentCondition:        model.PaymentCreditCard,
		WarrantyMonths:          6,
		ValidUntil:              today.AddDate(0, 0, 10),
		IncludesDelivery:        true,
		IncludesScreenProtector: false,
	}}

	out := Format(budgets, today)
	if !strings.HasPrefix(out, BOM+HeaderLine()+"\n") {
		t.Fatalf("output does not start with BOM and header: %q", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("output should not end with a newline")
	}

	lines := strings.Split(strings.TrimPrefix(out, BOM), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	want := `Smartphone;Apple;iPhone 12;Tela quebrada;Troca de tela;"Cliente pediu pelicula; urgente";1234.56;411.52;3;Cartao de Credito;6;10;sim;nao`
	if lines[1] != want {
		t.Errorf("row =\n%s\nwant\n%s", lines[1], want)
	}
}

func TestFormat_Empty(t *testing.T) {
	if got, want := Format(nil, time.Now()), BOM+HeaderLine(); got != want {
		t.Errorf("Format(nil) = %q, want %q", got, want)
	}
}

func TestFormat_NilOptionals(t *testing.T) {
	today := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := Format([]model.Budget{{
		DeviceType:       "Notebook",
		DeviceModel:      "X1",
		Issue:            "Teclado",
		ServiceType:      "Troca",
		TotalPriceCents:  5,
		Installments:     1,
		PaymentCondition: model.PaymentUpfront,
		ValidUntil:       today,
	}}, today)

	row := strings.Split(out, "\n")[1]
	want := "Notebook;;X1;Teclado;Troca;;0.05;;1;A Vista;0;0;nao;nao"
	if row != want {
		t.Errorf("row = %q, want %q", row, want)
	}
}

func TestEscapeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "a;b", want: `"a;b"`},
		{in: `say "hi"`, want: `"say ""hi"""`},
		{in: `"VIP"`, want: `"""VIP"""`},
	}

	for _, tt := range tests {
		if got := escapeField(tt.in); got != tt.want {
			t.Errorf("escapeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat_FlattensLineBreaks(t *testing.T) {
	today := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	out := Format([]model.Budget{{
		DeviceType:       "Notebook",
		DeviceModel:      "X1",
		Issue:            "Teclado",
		ServiceType:      "Troca",
		Notes:            ptr("linha 1\r\nlinha 2\nlinha 3"),
		TotalPriceCents:  100,
		Installments:     1,
		PaymentCondition: model.PaymentUpfront,
		ValidUntil:       today,
	}}, today)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header and one row:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], ";linha 1 linha 2 linha 3;") {
		t.Errorf("row = %q, want notes on one line", lines[1])
	}

	budgets, err := ParseAt(out, "o", today)
	if err != nil {
		t.Fatalf("ParseAt(Format()) error: %v", err)
	}
	if got := deref(budgets[0].Notes); got != "linha 1 linha 2 linha 3" {
		t.Errorf("Notes = %q", got)
	}
}

func TestValidityDays(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)
	today := time.Date(2026, 5, 4, 22, 0, 0, 0, sp)

	tests := []struct {
		name       string
		validUntil time.Time
		want       int
	}{
		{name: "same day", validUntil: today, want: 0},
		{name: "past", validUntil: today.AddDate(0, 0, -3), want: 0},
		{name: "future", validUntil: today.AddDate(0, 0, 15), want: 15},
		{name: "early next morning counts one day", validUntil: time.Date(2026, 5, 5, 1, 0, 0, 0, sp), want: 1},
		{name: "other zone compared in today's zone", validUntil: time.Date(2026, 5, 5, 2, 0, 0, 0, time.UTC), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidityDays(tt.validUntil, today); got != tt.want {
				t.Errorf("ValidityDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 15, 0, 0, time.UTC)
	original := []model.Budget{
		{
			OwnerID:                 "o",
			DeviceType:              "Smartphone",
			DeviceBrand:             ptr("Samsung"),
			DeviceModel:             "Galaxy; A54",
			Issue:                   `Tela "trincada"`,
			ServiceType:             "Troca de tela",
			Notes:                   ptr(`"VIP"`),
			TotalPriceCents:         35000,
			InstallmentPriceCents:   ptr(int64(18000)),
			Installments:            2,
			PaymentCondition:        model.PaymentCreditCard,
			WarrantyMonths:          3,
			ValidUntil:              now.AddDate(0, 0, 15),
			IncludesDelivery:        true,
			IncludesScreenProtector: false,
		},
		{
			OwnerID:          "o",
			DeviceType:       "Notebook",
			DeviceModel:      "Inspiron",
			Issue:            "Nao liga",
			ServiceType:      "Diagnostico",
			TotalPriceCents:  1,
			Installments:     1,
			PaymentCondition: model.PaymentUpfront,
			WarrantyMonths:   0,
			ValidUntil:       now,
		},
	}

	parsed, err := ParseAt(Format(original, now), "o", now)
	if err != nil {
		t.Fatalf("ParseAt(Format()) error: %v", err)
	}
	if len(parsed) != len(original) {
		t.Fatalf("got %d budgets, want %d", len(parsed), len(original))
	}

	for i := range original {
		want, got := original[i], parsed[i]
		if got.DeviceType != want.DeviceType || got.DeviceModel != want.DeviceModel ||
			got.Issue != want.Issue || got.ServiceType != want.ServiceType {
			t.Errorf("budget %d text fields = %+v, want %+v", i, got, want)
		}
		if deref(got.DeviceBrand) != deref(want.DeviceBrand) || deref(got.Notes) != deref(want.Notes) {
			t.Errorf("budget %d optional text mismatch", i)
		}
		if got.TotalPriceCents != want.TotalPriceCents {
			t.Errorf("budget %d TotalPriceCents = %d, want %d", i, got.TotalPriceCents, want.TotalPriceCents)
		}
		if (got.InstallmentPriceCents == nil) != (want.InstallmentPriceCents == nil) ||
			(got.InstallmentPriceCents != nil && *got.InstallmentPriceCents != *want.InstallmentPriceCents) {
			t.Errorf("budget %d InstallmentPriceCents = %v, want %v", i, got.InstallmentPriceCents, want.InstallmentPriceCents)
		}
		if got.Installments != want.Installments || got.WarrantyMonths != want.WarrantyMonths {
			t.Errorf("budget %d counts = %d/%d, want %d/%d", i, got.Installments, got.WarrantyMonths, want.Installments, want.WarrantyMonths)
		}
		if got.PaymentCondition != want.PaymentCondition {
			t.Errorf("budget %d PaymentCondition = %q, want %q", i, got.PaymentCondition, want.PaymentCondition)
		}
		if !got.ValidUntil.Equal(want.ValidUntil) {
			t.Errorf("budget %d ValidUntil = %v, want %v", i, got.ValidUntil, want.ValidUntil)
		}
		if got.IncludesDelivery != want.IncludesDelivery || got.IncludesScreenProtector != want.IncludesScreenProtector {
			t.Errorf("budget %d booleans mismatch", i)
		}
	}
}
