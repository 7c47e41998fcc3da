package enums

import (
	"fmt"
	"strings"
)

// SaleStatus is the canonical order status. The legacy data carries these as
// free-text Portuguese labels compared case-insensitively all over the place;
// here they are a closed enum with a single transition table.
type SaleStatus string

const (
	SaleStatusLiberacao           SaleStatus = "Liberação"
	SaleStatusEmSeparacao         SaleStatus = "Em Separação"
	SaleStatusEmTransito          SaleStatus = "Em Trânsito"
	SaleStatusEntregue            SaleStatus = "Entregue"
	SaleStatusConfirmarEntrega    SaleStatus = "Confirmar Entrega"
	SaleStatusPagamentoPendente   SaleStatus = "Pagamento Pendente"
	SaleStatusCompleto            SaleStatus = "Completo"
	SaleStatusCancelado           SaleStatus = "Cancelado"
	SaleStatusDeletado            SaleStatus = "Deletado"
	SaleStatusPossiveisDuplicados SaleStatus = "Possíveis Duplicados"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusLiberacao,
	SaleStatusEmSeparacao,
	SaleStatusEmTransito,
	SaleStatusEntregue,
	SaleStatusConfirmarEntrega,
	SaleStatusPagamentoPendente,
	SaleStatusCompleto,
	SaleStatusCancelado,
	SaleStatusDeletado,
	SaleStatusPossiveisDuplicados,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Equals compares against a raw status string the way the legacy data does:
// case-insensitively, ignoring surrounding whitespace.
func (s SaleStatus) Equals(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), string(s))
}

// ParseSaleStatus converts raw input into a canonical SaleStatus,
// case-insensitively.
func ParseSaleStatus(value string) (SaleStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validSaleStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}

// saleStatusTransitions is the only place transition legality is defined.
// Soft deletion (-> Deletado) is permitted from every live state; nothing
// leaves Deletado. Possíveis Duplicados exits only through approval or
// rejection.
var saleStatusTransitions = map[SaleStatus][]SaleStatus{
	SaleStatusLiberacao: {
		SaleStatusEmSeparacao,
		SaleStatusPagamentoPendente,
		SaleStatusCancelado,
		SaleStatusDeletado,
	},
	SaleStatusEmSeparacao: {
		SaleStatusEmTransito,
		SaleStatusPagamentoPendente,
		SaleStatusCancelado,
		SaleStatusDeletado,
	},
	SaleStatusEmTransito: {
		SaleStatusEntregue,
		SaleStatusConfirmarEntrega,
		SaleStatusPagamentoPendente,
		SaleStatusCancelado,
		SaleStatusDeletado,
	},
	SaleStatusEntregue: {
		SaleStatusPagamentoPendente,
		SaleStatusCompleto,
		SaleStatusCancelado,
		SaleStatusDeletado,
	},
	SaleStatusConfirmarEntrega: {
		SaleStatusEntregue,
		SaleStatusPagamentoPendente,
		SaleStatusCompleto,
		SaleStatusCancelado,
		SaleStatusDeletado,
	},
	SaleStatusPagamentoPendente: {
		SaleStatusCompleto,
		SaleStatusCancelado,
		SaleStatusDeletado,
	},
	SaleStatusCompleto: {
		SaleStatusDeletado,
	},
	SaleStatusCancelado: {
		SaleStatusDeletado,
	},
	SaleStatusDeletado: {},
	SaleStatusPossiveisDuplicados: {
		SaleStatusEmSeparacao,
		SaleStatusCancelado,
		SaleStatusDeletado,
	},
}

// CanTransition reports whether moving from s to target is legal.
func (s SaleStatus) CanTransition(target SaleStatus) bool {
	for _, allowed := range saleStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminalForVisibility reports whether the status hides the order from
// non-admin projections.
func (s SaleStatus) IsTerminalForVisibility() bool {
	return s == SaleStatusDeletado
}
