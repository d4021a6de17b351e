// Package budgetcsv converts budgets to and from the semicolon-separated CSV
// files shops edit in their spreadsheet application.
//
// The exchange format is UTF-8 with a leading BOM, ";" as field delimiter,
// "\n" between rows and the fourteen Portuguese column labels listed in
// [Columns]. Import accepts "," or "." as decimal separator; export always
// writes two decimals with ".".
package budgetcsv

import "strings"

const (
	// BOM makes spreadsheet applications open the file as UTF-8.
	BOM = "\uFEFF"

	// Delimiter separates fields in every row.
	Delimiter = ";"
)

// Column keys, as produced by NormalizeHeader from the labels.
const (
	KeyDeviceType       = "tipo_aparelho"
	KeyDeviceBrand      = "marca_aparelho"
	KeyDeviceModel      = "modelo_aparelho"
	KeyIssue            = "defeito_ou_problema"
	KeyServiceType      = "servico_realizado"
	KeyNotes            = "observacoes"
	KeyTotalPrice       = "preco_total"
	KeyInstallmentPrice = "preco_parcelado"
	KeyInstallments     = "parcelas"
	KeyPaymentCondition = "condicao_pagamento"
	KeyWarrantyMonths   = "garantia_meses"
	KeyValidityDays     = "validade_dias"
	KeyDelivery         = "inclui_entrega"
	KeyScreenProtector  = "inclui_pelicula"
)

// Column describes one field of the exchange format.
type Column struct {
	Label    string // Header text written to files
	Key      string // NormalizeHeader(Label)
	Required bool   // Row is rejected when the cell is empty
}

// Columns lists the exchange columns in file order.
var Columns = []Column{
	{Label: "Tipo Aparelho (*)", Key: KeyDeviceType, Required: true},
	{Label: "Marca Aparelho", Key: KeyDeviceBrand},
	{Label: "Modelo Aparelho (*)", Key: KeyDeviceModel, Required: true},
	{Label: "Defeito ou Problema (*)", Key: KeyIssue, Required: true},
	{Label: "Serviço Realizado (*)", Key: KeyServiceType, Required: true},
	{Label: "Observações", Key: KeyNotes},
	{Label: "Preço Total (*)", Key: KeyTotalPrice, Required: true},
	{Label: "Preço Parcelado", Key: KeyInstallmentPrice},
	{Label: "Parcelas", Key: KeyInstallments},
	{Label: "Condição Pagamento", Key: KeyPaymentCondition},
	{Label: "Garantia (meses)", Key: KeyWarrantyMonths},
	{Label: "Validade (dias)", Key: KeyValidityDays},
	{Label: "Inclui Entrega", Key: KeyDelivery},
	{Label: "Inclui Película", Key: KeyScreenProtector},
}

// anchorKeys locate the header row among instruction lines.
var anchorKeys = []string{KeyDeviceType, KeyDeviceModel, KeyTotalPrice}

// requiredTextKeys must be non-empty in every data row.
// Total price is validated separately as a number.
var requiredTextKeys = []string{KeyDeviceType, KeyDeviceModel, KeyIssue, KeyServiceType}

// HeaderLine returns the header row shared by the template and exports.
func HeaderLine() string {
	labels := make([]string, len(Columns))
	for i, c := range Columns {
		labels[i] = c.Label
	}
	return strings.Join(labels, Delimiter)
}

// labelFor returns the file label of a column key, without the required marker.
func labelFor(key string) string {
	for _, c := range Columns {
		if c.Key == key {
			return strings.TrimSuffix(c.Label, requiredMarker)
		}
	}
	return key
}
