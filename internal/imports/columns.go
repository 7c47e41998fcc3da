package imports

import "strings"

// Column names as they appear in the legacy spreadsheet exports. The casing
// is inconsistent in the source files themselves, so lookups are always
// case-insensitive.
const (
	colSaleDate         = "Data Venda"
	colOrderID          = "ID Venda"
	colCustomer         = "Cliente"
	colPhone            = "Telefone"
	colOffer            = "Oferta"
	colSaleValue        = "Valor Venda"
	colStatus           = "Status"
	colSaleSituation    = "Situação Venda"
	colReceivedValue    = "Valor Recebido"
	colHistory          = "Historico"
	colLastUpdated      = "Ultima Atualização"
	colTrackingCode     = "Código de Rastreio"
	colCarrierStatus    = "Status Correios"
	colSeller           = "Vendedor"
	colOperator         = "Operador"
	colZap              = "Zap"
	colAddrState        = "ESTADO DO DESTINATÁRIO"
	colAddrCity         = "CIDADE DO DESTINATÁRIO"
	colAddrStreet       = "RUA DO DESTINATÁRIO"
	colAddrZip          = "CEP DO DESTINATÁRIO"
	colAddrComplement   = "COMPLEMENTO DO DESTINATÁRIO"
	colAddrNeighborhood = "BAIRRO DO DESTINATÁRIO"
	colAddrNumber       = "NÚMERO DO ENDEREÇO DO DESTINATÁRIO"
	colEstimatedArrival = "DATA ESTIMADA DE CHEGADA"
	colAffiliateCode    = "CÓDIGO DO AFILIADO"
	colAffiliateName    = "NOME DO AFILIADO"
	colAffiliateEmail   = "E-MAIL DO AFILIADO"
	colAffiliateDoc     = "DOCUMENTO DO AFILIADO"
	colReceiveDate      = "DATA DE RECEBIMENTO"
	colNegotiationDate  = "Data_Negociacao"
	colPaymentMethod    = "FormaPagamento"
	colCustomerDoc      = "DOCUMENTO CLIENTE"
	colPartial          = "Parcial"
	colPartialPayment   = "Pagamento_Parcial"
	colPartialMethod    = "FormaPagamentoParcial"
	colPartialDate      = "DataPagamentoParcial"
)

// requiredColumns is the full header contract of the legacy export. A file
// missing any of these is rejected before any row is processed.
var requiredColumns = []string{
	colSaleDate,
	colOrderID,
	colCustomer,
	colPhone,
	colOffer,
	colSaleValue,
	colStatus,
	colSaleSituation,
	colReceivedValue,
	colHistory,
	colLastUpdated,
	colTrackingCode,
	colCarrierStatus,
	colSeller,
	colOperator,
	colZap,
	colAddrState,
	colAddrCity,
	colAddrStreet,
	colAddrZip,
	colAddrComplement,
	colAddrNeighborhood,
	colAddrNumber,
	colEstimatedArrival,
	colAffiliateCode,
	colAffiliateName,
	colAffiliateEmail,
	colAffiliateDoc,
	colReceiveDate,
	colNegotiationDate,
	colPaymentMethod,
	colCustomerDoc,
	colPartial,
	colPartialPayment,
	colPartialMethod,
	colPartialDate,
}

// requiredRowFields are the per-row fields a row cannot be imported without.
// Rows missing any of them are skipped individually, not fatal to the batch.
var requiredRowFields = []string{colSaleDate, colOrderID, colCustomer, colSaleValue}

// header maps case-folded column names to their position in the file.
type header struct {
	index map[string]int
	width int
}

func newHeader(fields []string) header {
	index := make(map[string]int, len(fields))
	for i, field := range fields {
		key := strings.ToLower(strings.TrimSpace(field))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return header{index: index, width: len(fields)}
}

// missingColumns returns the required column names absent from the file.
func (h header) missingColumns() []string {
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := h.index[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// value returns the named column's cell, empty when the row is short.
func (h header) value(row []string, column string) string {
	i, ok := h.index[strings.ToLower(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
