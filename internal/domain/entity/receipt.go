package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the pharmacy header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTIN     string `json:"gstin,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name        string          `json:"name"`
	BatchNumber string          `json:"batch_number,omitempty"`
	Expiry      string          `json:"expiry,omitempty"` // MM/YY
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Total       decimal.Decimal `json:"total"`
}

// Receipt is a printable view of a sale. It is composed at print time and
// never stored.
type Receipt struct {
	Header      ReceiptHeader   `json:"header"`
	InvoiceNo   string          `json:"invoice_no"`
	Date        string          `json:"date"`
	Customer    string          `json:"customer,omitempty"`
	Contact     string          `json:"contact,omitempty"`
	PaymentType string          `json:"payment_type"`
	Items       []ReceiptItem   `json:"items"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	Discount    decimal.Decimal `json:"discount"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	Total       decimal.Decimal `json:"total"`
}
