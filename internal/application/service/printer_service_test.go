package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/pharmapos-api/internal/application/service"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/enum"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/sangkips/pharmapos-api/pkg/printer"
)

// capturePrinter records what it was asked to print.
type capturePrinter struct {
	jobs [][]byte
	err  error
}

func (p *capturePrinter) Print(ctx context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *capturePrinter) Close() error { return nil }

func (p *capturePrinter) IsConnected(ctx context.Context) bool { return p.err == nil }

func receiptSale() *entity.Sale {
	return &entity.Sale{
		InvoiceNumber:   "INV-RCPT-1",
		CustomerName:    "Ravi Kumar",
		CustomerContact: "+918123456789",
		CreatedAt:       time.Date(2026, time.October, 17, 9, 5, 0, 0, time.UTC),
		Items: []entity.SaleItem{{
			Name:        "Paracetamol 500mg",
			BatchNumber: "PCM-7",
			ExpiryDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
			Quantity:    2,
			UnitPrice:   dec("100"),
			TaxPercent:  dec("12"),
			LineTotal:   dec("200"),
		}},
		SubTotal:      dec("200"),
		Discount:      dec("10"),
		CGSTAmount:    dec("12"),
		SGSTAmount:    dec("12"),
		TotalAmount:   dec("214"),
		PaymentMethod: enum.PaymentMethodCard,
		PharmacyGSTNo: "OLDGSTIN",
	}
}

func TestBuildReceipt(t *testing.T) {
	settings := entity.DefaultPharmacySettings()
	settings.PharmacyName = "City Pharmacy"
	settings.PharmacyGSTNo = testGSTIN

	r := service.BuildReceipt(receiptSale(), settings)
	if r.Header.StoreName != "City Pharmacy" {
		t.Fatalf("StoreName = %q", r.Header.StoreName)
	}
	if r.Header.GSTIN != "OLDGSTIN" {
		t.Fatalf("GSTIN = %q, want the one stored on the sale", r.Header.GSTIN)
	}
	if r.Date != "2026-10-17 09:05" || r.PaymentType != "Card" {
		t.Fatalf("receipt = %+v", r)
	}
	if len(r.Items) != 1 || r.Items[0].Expiry != "06/27" {
		t.Fatalf("items = %+v", r.Items)
	}

	unnamed := service.BuildReceipt(receiptSale(), entity.DefaultPharmacySettings())
	if unnamed.Header.StoreName != "Pharmacy" {
		t.Fatalf("fallback StoreName = %q", unnamed.Header.StoreName)
	}
}

func TestFormatReceipt(t *testing.T) {
	settings := entity.DefaultPharmacySettings()
	settings.PharmacyName = "City Pharmacy"
	out := service.FormatReceipt(service.BuildReceipt(receiptSale(), settings), printer.Width80mm)

	for _, want := range []string{
		"City Pharmacy",
		"GSTIN: OLDGSTIN",
		"INV-RCPT-1",
		"2x Paracetamol 500mg",
		"B:PCM-7 Exp:06/27 @100.00 GST 12%",
		"CGST:",
		"Discount:",
		"-10.00",
		"214.00",
		"Get well soon!",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Fatalf("receipt does not contain %q:\n%s", want, out)
		}
	}
	if !bytes.HasSuffix(out, []byte{printer.GS, 'V', 0x01}) {
		t.Fatalf("receipt should end with a partial cut")
	}
}

func TestPrintSaleReceipt(t *testing.T) {
	f := newFixture(t)
	sale := receiptSale()
	if err := f.sales.Create(context.Background(), sale); err != nil {
		t.Fatalf("Create: %v", err)
	}

	p := &capturePrinter{}
	svc := service.NewPrinterService(p, f.sales, f.settings, "network", printer.Width80mm, logger.Discard())

	result, err := svc.PrintSaleReceipt(context.Background(), sale.InvoiceNumber)
	if err != nil {
		t.Fatalf("PrintSaleReceipt: %v", err)
	}
	if !result.Printed || len(p.jobs) != 1 {
		t.Fatalf("printed = %v, jobs = %d", result.Printed, len(p.jobs))
	}

	_, err = svc.PrintSaleReceipt(context.Background(), "INV-NOPE")
	requireAppError(t, err, apperror.TypeNotFound)

	p.err = errors.New("paper out")
	result, err = svc.PrintSaleReceipt(context.Background(), sale.InvoiceNumber)
	if err != nil {
		t.Fatalf("a print failure should still return the receipt: %v", err)
	}
	if result.Printed || result.PrintError != "paper out" || result.Receipt == nil {
		t.Fatalf("result = %+v", result)
	}

	status := svc.GetStatus(context.Background())
	if !status.Configured || status.Connected || status.Type != "network" {
		t.Fatalf("status = %+v", status)
	}
}

func TestTestPrint_DisabledPrinter(t *testing.T) {
	f := newFixture(t)
	svc := service.NewPrinterService(printer.NullPrinter{}, f.sales, f.settings, "none", 0, logger.Discard())

	result, err := svc.TestPrint(context.Background())
	if err != nil {
		t.Fatalf("TestPrint: %v", err)
	}
	if result.Printed || result.Receipt.InvoiceNo != "TEST-001" {
		t.Fatalf("result = %+v", result)
	}
	if svc.GetStatus(context.Background()).Configured {
		t.Fatalf("printer type none should not be configured")
	}
}
