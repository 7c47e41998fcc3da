package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaops/vendaops-backend/internal/orders"
	"github.com/vendaops/vendaops-backend/pkg/enums"
)

func ids(rows []orders.OrderDTO) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.OrderID)
	}
	return out
}

func sampleRows() []orders.OrderDTO {
	return []orders.OrderDTO{
		{OrderID: "V1", SellerName: "Maria Oliveira", OperatorName: "Carlos", SaleStatus: enums.SaleStatusLiberacao, SaleDate: "05/08/2026"},
		{OrderID: "V2", SellerName: "João Souza", OperatorName: "Ana", SaleStatus: enums.SaleStatusEmSeparacao, SaleDate: "03/08/2026"},
		{OrderID: "V3", SellerName: "Maria Oliveira", OperatorName: "Carlos", SaleStatus: enums.SaleStatusDeletado, SaleDate: "01/08/2026"},
		{OrderID: "V4", SellerName: "Pedro Lima", OperatorName: "Ana Paula", SaleStatus: enums.SaleStatusCompleto, SaleDate: ""},
	}
}

func TestMatchesOwner(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		viewer string
		want   bool
	}{
		{"exact", "Maria Oliveira", "Maria Oliveira", true},
		{"viewer is substring", "Maria Oliveira", "maria", true},
		{"owner is substring", "Maria", "maria oliveira", true},
		{"case and whitespace", "  MARIA OLIVEIRA ", "maria oliveira", true},
		{"different person", "Maria Oliveira", "João", false},
		{"empty owner", "", "Maria", false},
		{"empty viewer", "Maria", "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesOwner(tt.owner, tt.viewer))
		})
	}
}

func TestProjectAdminSeesEverything(t *testing.T) {
	got := Project(sampleRows(), orders.Viewer{Role: enums.RoleAdmin, Name: "Root"}, Options{})
	assert.Equal(t, []string{"V1", "V2", "V3", "V4"}, ids(got))
}

func TestProjectSupervisorSeesAllButNotDeleted(t *testing.T) {
	got := Project(sampleRows(), orders.Viewer{Role: enums.RoleSupervisor, Name: "Chefe"}, Options{})
	assert.Equal(t, []string{"V1", "V2", "V4"}, ids(got))
}

func TestProjectSellerFiltersOnSellerName(t *testing.T) {
	viewer := orders.Viewer{Role: enums.RoleSeller, Name: "maria"}
	got := Project(sampleRows(), viewer, Options{})
	// V3 is hers but deleted
	assert.Equal(t, []string{"V1"}, ids(got))
}

func TestProjectCollectorFiltersOnOperatorName(t *testing.T) {
	viewer := orders.Viewer{Role: enums.RoleCollector, Name: "Ana"}
	got := Project(sampleRows(), viewer, Options{})
	assert.Equal(t, []string{"V2", "V4"}, ids(got))
}

func TestProjectExplicitDeletadoFilterShowsDeleted(t *testing.T) {
	viewer := orders.Viewer{Role: enums.RoleSeller, Name: "Maria Oliveira"}
	got := Project(sampleRows(), viewer, Options{Status: "deletado"})
	assert.Equal(t, []string{"V3"}, ids(got))
}

func TestProjectStatusFilterIsCaseInsensitive(t *testing.T) {
	viewer := orders.Viewer{Role: enums.RoleAdmin}
	got := Project(sampleRows(), viewer, Options{Status: "EM SEPARAÇÃO"})
	require.Len(t, got, 1)
	assert.Equal(t, "V2", got[0].OrderID)
}

func TestProjectReceiveTodayFilter(t *testing.T) {
	fixed := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	rows := []orders.OrderDTO{
		{OrderID: "V1", ReceiveDate: "28/08/2026", SaleStatus: enums.SaleStatusPagamentoPendente},
		{OrderID: "V2", ReceiveDate: "27/08/2026", SaleStatus: enums.SaleStatusPagamentoPendente},
		{OrderID: "V3", ReceiveDate: "", SaleStatus: enums.SaleStatusPagamentoPendente},
	}
	got := Project(rows, orders.Viewer{Role: enums.RoleAdmin}, Options{
		ReceiveToday: true,
		now:          func() time.Time { return fixed },
	})
	assert.Equal(t, []string{"V1"}, ids(got))
}

func TestProjectSortsByBrazilianDateEmptiesLast(t *testing.T) {
	rows := []orders.OrderDTO{
		{OrderID: "V1", SaleDate: "05/08/2026", SaleStatus: enums.SaleStatusLiberacao},
		{OrderID: "V2", SaleDate: "", SaleStatus: enums.SaleStatusLiberacao},
		{OrderID: "V3", SaleDate: "01/08/2026 14:30", SaleStatus: enums.SaleStatusLiberacao},
		{OrderID: "V4", SaleDate: "03/08/2026", SaleStatus: enums.SaleStatusLiberacao},
	}
	viewer := orders.Viewer{Role: enums.RoleAdmin}

	asc := Project(rows, viewer, Options{SortField: SortSaleDate})
	assert.Equal(t, []string{"V3", "V4", "V1", "V2"}, ids(asc))

	desc := Project(rows, viewer, Options{SortField: SortSaleDate, Descending: true})
	assert.Equal(t, []string{"V1", "V4", "V3", "V2"}, ids(desc))
}

func TestProjectSortIsStableOnEqualDates(t *testing.T) {
	rows := []orders.OrderDTO{
		{OrderID: "V1", LastUpdatedAt: "10/08/2026", SaleStatus: enums.SaleStatusLiberacao},
		{OrderID: "V2", LastUpdatedAt: "10/08/2026 09:00", SaleStatus: enums.SaleStatusLiberacao},
		{OrderID: "V3", LastUpdatedAt: "10/08/2026 18:00", SaleStatus: enums.SaleStatusLiberacao},
		{OrderID: "V4", LastUpdatedAt: "09/08/2026", SaleStatus: enums.SaleStatusLiberacao},
	}
	got := Project(rows, orders.Viewer{Role: enums.RoleAdmin}, Options{
		SortField:  SortLastUpdatedAt,
		Descending: true,
	})
	// the three 10/08 rows keep their incoming order
	assert.Equal(t, []string{"V1", "V2", "V3", "V4"}, ids(got))
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	_ = Project(rows, orders.Viewer{Role: enums.RoleAdmin}, Options{SortField: SortSaleDate})
	assert.Equal(t, "V1", rows[0].OrderID)
}
