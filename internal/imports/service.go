// Package imports turns legacy CSV/TSV order exports into draft orders fed
// through the regular order-creation path, so imported rows get the same
// validation and duplicate screening as hand-entered ones.
package imports

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/vendaops/vendaops-backend/internal/orders"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/metrics"
	"github.com/vendaops/vendaops-backend/pkg/types"
)

// SkippedRow reports one row that did not make it in, with its 1-based line
// number in the file (header is line 1).
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report summarizes an import run. RowErrors aggregates the per-row failures
// and is informational; a non-empty Skipped list never fails the import.
type Report struct {
	TotalRows int          `json:"total_rows"`
	Imported  int          `json:"imported"`
	Skipped   []SkippedRow `json:"skipped,omitempty"`
	RowErrors error        `json:"-"`
}

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateOrderInput, viewer orders.Viewer) (*orders.OrderDTO, error)
}

// Service imports order files.
type Service interface {
	ImportOrders(ctx context.Context, reader io.Reader, viewer orders.Viewer) (*Report, error)
}

type service struct {
	orders  orderCreator
	logger  *logger.Logger
	metrics *metrics.Metrics
	maxRows int
}

// NewService constructs an import service. maxRows caps the data rows a
// single file may carry.
func NewService(creator orderCreator, logg *logger.Logger, m *metrics.Metrics, maxRows int) (Service, error) {
	if creator == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxRows <= 0 {
		return nil, fmt.Errorf("max rows must be positive")
	}
	return &service{orders: creator, logger: logg, metrics: m, maxRows: maxRows}, nil
}

// ImportOrders parses the file and creates one draft order per valid row.
// Rows missing required fields or rejected by the order service are skipped
// individually and reported; only a malformed header or an oversized file
// fails the whole import.
func (s *service) ImportOrders(ctx context.Context, reader io.Reader, viewer orders.Viewer) (*Report, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading import file")
	}

	lines := nonEmptyLines(string(content))
	if len(lines) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file must contain a header and at least one data row")
	}
	if len(lines)-1 > s.maxRows {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file has %d rows, limit is %d", len(lines)-1, s.maxRows))
	}

	separator := detectSeparator(lines[0])
	head := newHeader(splitFields(lines[0], separator))
	if missing := head.missingColumns(); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"missing required columns: "+strings.Join(missing, ", "))
	}

	report := &Report{}
	for i, line := range lines[1:] {
		lineNo := i + 2
		report.TotalRows++

		row := splitFields(line, separator)
		if reason := missingRowFields(head, row); reason != "" {
			s.skip(report, lineNo, reason)
			continue
		}

		input, err := s.rowToInput(head, row)
		if err != nil {
			s.skip(report, lineNo, err.Error())
			continue
		}

		if _, err := s.orders.Create(ctx, input, viewer); err != nil {
			s.skip(report, lineNo, err.Error())
			continue
		}
		report.Imported++
	}

	s.metrics.IncImportRows("imported", report.Imported)
	s.metrics.IncImportRows("skipped", len(report.Skipped))
	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"imported": report.Imported,
		"skipped":  len(report.Skipped),
	}), "order import finished")
	return report, nil
}

func (s *service) skip(report *Report, lineNo int, reason string) {
	report.Skipped = append(report.Skipped, SkippedRow{Line: lineNo, Reason: reason})
	report.RowErrors = multierr.Append(report.RowErrors, fmt.Errorf("line %d: %s", lineNo, reason))
}

// missingRowFields names the required fields absent from the row, empty when
// the row is complete.
func missingRowFields(head header, row []string) string {
	var missing []string
	for _, column := range requiredRowFields {
		if head.value(row, column) == "" {
			missing = append(missing, column)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing required fields: " + strings.Join(missing, ", ")
}

func (s *service) rowToInput(head header, row []string) (orders.CreateOrderInput, error) {
	saleValue, err := ParseMoney(head.value(row, colSaleValue))
	if err != nil {
		return orders.CreateOrderInput{}, fmt.Errorf("invalid sale value %q", head.value(row, colSaleValue))
	}
	// a garbled received value degrades to zero rather than losing the row
	receivedValue, err := ParseMoney(head.value(row, colReceivedValue))
	if err != nil {
		receivedValue = decimal.Zero
	}

	input := orders.CreateOrderInput{
		OrderID:          head.value(row, colOrderID),
		SaleDate:         head.value(row, colSaleDate),
		CustomerName:     head.value(row, colCustomer),
		Phone:            head.value(row, colPhone),
		CustomerDocument: head.value(row, colCustomerDoc),
		OfferRef:         head.value(row, colOffer),
		SaleValue:        saleValue,
		ReceivedValue:    receivedValue,
		SellerName:       head.value(row, colSeller),
		OperatorName:     head.value(row, colOperator),
		NegotiationDate:  head.value(row, colNegotiationDate),
		ReceiveDate:      head.value(row, colReceiveDate),
		PaymentMethod:    head.value(row, colPaymentMethod),
	}

	address := types.Address{
		State:        head.value(row, colAddrState),
		City:         head.value(row, colAddrCity),
		Street:       head.value(row, colAddrStreet),
		Number:       head.value(row, colAddrNumber),
		Neighborhood: head.value(row, colAddrNeighborhood),
		ZipCode:      head.value(row, colAddrZip),
		Complement:   head.value(row, colAddrComplement),
	}
	if !address.IsZero() {
		input.ShippingAddress = &address
	}
	return input, nil
}
