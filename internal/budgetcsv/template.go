package budgetcsv

import "strings"

// instructions precede the header in the downloadable template. The parser
// skips them because none of these lines carries all the anchor columns.
var instructions = []string{
	"MODELO DE IMPORTAÇÃO DE ORÇAMENTOS",
	"==================================",
	"1. Não altere a linha de cabeçalho abaixo destas instruções.",
	"2. Colunas marcadas com (*) são obrigatórias.",
	"3. Valores em reais aceitam vírgula ou ponto como separador decimal (ex: 150,00 ou 150.00).",
	"4. Inclui Entrega e Inclui Película aceitam sim ou nao.",
	"5. Parcelas, Garantia (meses) e Validade (dias) devem ser números inteiros.",
	"6. Cada linha abaixo do cabeçalho vira um orçamento: substitua o exemplo pelos seus dados.",
}

// exampleRow fills every column with plausible values.
var exampleRow = []string{
	"Smartphone",
	"Samsung",
	"Galaxy A54",
	"Tela quebrada",
	"Troca de tela",
	"Cliente retira no balcão",
	"350.00",
	"180.00",
	"2",
	"Cartão de Crédito",
	"3",
	"15",
	"sim",
	"nao",
}

// Template returns the CSV template offered for download: instructions,
// the header line and one example row.
func Template() string {
	lines := make([]string, 0, len(instructions)+2)
	lines = append(lines, instructions...)
	lines = append(lines, HeaderLine())
	lines = append(lines, strings.Join(exampleRow, Delimiter))
	return BOM + strings.Join(lines, "\n")
}
