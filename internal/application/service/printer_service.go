package service

import (
	"context"
	"strings"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/enum"
	"github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/sangkips/pharmapos-api/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	saleRepo    repository.SaleRepository
	settings    SettingsProvider
	printerType string
	charWidth   int
	log         *logrus.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	saleRepo repository.SaleRepository,
	settings SettingsProvider,
	printerType string,
	charWidth int,
	log *logrus.Logger,
) *PrinterService {
	return &PrinterService{
		printer:     p,
		saleRepo:    saleRepo,
		settings:    settings,
		printerType: printerType,
		charWidth:   charWidth,
		log:         log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// ReceiptResult is what a print request returns. The receipt is always
// built so the client can render it even when printing failed.
type ReceiptResult struct {
	Receipt    *entity.Receipt `json:"receipt"`
	Printed    bool            `json:"printed"`
	PrintError string          `json:"print_error,omitempty"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.configured(),
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printerType,
	}
}

// TestPrint sends a sample receipt with the pharmacy header.
func (s *PrinterService) TestPrint(ctx context.Context) (*ReceiptResult, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	receipt := &entity.Receipt{
		Header:      receiptHeader(settings),
		InvoiceNo:   "TEST-001",
		Date:        time.Now().Format("2006-01-02 15:04"),
		PaymentType: enum.PaymentMethodCash.String(),
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: decimal.NewFromInt(10), TaxPercent: decimal.Zero, Total: decimal.NewFromInt(10)},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: decimal.NewFromInt(5), TaxPercent: decimal.Zero, Total: decimal.NewFromInt(10)},
		},
		SubTotal: decimal.NewFromInt(20),
		Discount: decimal.Zero,
		CGST:     decimal.Zero,
		SGST:     decimal.Zero,
		Total:    decimal.NewFromInt(20),
	}
	return s.print(ctx, receipt), nil
}

// PrintSaleReceipt prints the receipt of an existing sale.
func (s *PrinterService) PrintSaleReceipt(ctx context.Context, invoiceNumber string) (*ReceiptResult, error) {
	sale, err := s.saleRepo.GetByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		logger.LogError(s.log, "PrinterService", "PrintSaleReceipt", "load sale", invoiceNumber, err)
		return nil, apperror.ErrInternalServer
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return s.print(ctx, BuildReceipt(sale, settings)), nil
}

func (s *PrinterService) print(ctx context.Context, receipt *entity.Receipt) *ReceiptResult {
	result := &ReceiptResult{Receipt: receipt}
	if !s.configured() {
		return result
	}
	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.charWidth)); err != nil {
		s.log.WithError(err).WithField("invoice", receipt.InvoiceNo).Warn("receipt print failed")
		result.PrintError = err.Error()
		return result
	}
	result.Printed = true
	return result
}

func (s *PrinterService) configured() bool {
	return s.printerType != "none" && s.printerType != ""
}

func receiptHeader(settings *entity.PharmacySettings) entity.ReceiptHeader {
	name := settings.PharmacyName
	if name == "" {
		name = "Pharmacy"
	}
	return entity.ReceiptHeader{
		StoreName: name,
		Address:   settings.PharmacyAddress,
		Phone:     settings.PharmacyPhone,
		GSTIN:     settings.PharmacyGSTNo,
	}
}

// BuildReceipt composes the printable view of sale. The GSTIN comes from
// the sale so reprints show the registration in force when it was billed.
func BuildReceipt(sale *entity.Sale, settings *entity.PharmacySettings) *entity.Receipt {
	header := receiptHeader(settings)
	header.GSTIN = sale.PharmacyGSTNo

	receipt := &entity.Receipt{
		Header:      header,
		InvoiceNo:   sale.InvoiceNumber,
		Date:        sale.CreatedAt.Format("2006-01-02 15:04"),
		Customer:    sale.CustomerName,
		Contact:     sale.CustomerContact,
		PaymentType: sale.PaymentMethod.String(),
		Items:       make([]entity.ReceiptItem, 0, len(sale.Items)),
		SubTotal:    sale.SubTotal,
		Discount:    sale.Discount,
		CGST:        sale.CGSTAmount,
		SGST:        sale.SGSTAmount,
		Total:       sale.TotalAmount,
	}
	for _, item := range sale.Items {
		expiry := ""
		if !item.ExpiryDate.IsZero() {
			expiry = item.ExpiryDate.Format("01/06")
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:        item.Name,
			BatchNumber: item.BatchNumber,
			Expiry:      expiry,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxPercent:  item.TaxPercent,
			Total:       item.LineTotal,
		})
	}
	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Wrap(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.GSTIN != "" {
		doc.TextF("GSTIN: %s", r.Header.GSTIN)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date)
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.Contact != "" {
		doc.KeyValue("Contact:", r.Contact)
	}
	doc.KeyValue("Payment:", r.PaymentType).
		Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total.StringFixed(2))
		var details []string
		if item.BatchNumber != "" {
			details = append(details, "B:"+item.BatchNumber)
		}
		if item.Expiry != "" {
			details = append(details, "Exp:"+item.Expiry)
		}
		if item.Quantity > 1 {
			details = append(details, "@"+item.UnitPrice.StringFixed(2))
		}
		if item.TaxPercent.IsPositive() {
			details = append(details, "GST "+item.TaxPercent.String()+"%")
		}
		if len(details) > 0 {
			doc.Wrap(strings.Join(details, " "))
		}
	}

	doc.Separator('-').
		KeyValue("Subtotal:", r.SubTotal.StringFixed(2))
	if r.CGST.IsPositive() || r.SGST.IsPositive() {
		doc.KeyValue("CGST:", r.CGST.StringFixed(2)).
			KeyValue("SGST:", r.SGST.StringFixed(2))
	}
	if r.Discount.IsPositive() {
		doc.KeyValue("Discount:", "-"+r.Discount.StringFixed(2))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", r.Total.StringFixed(2)).
		SetBold(false).
		Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Get well soon!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
