package client

import (
	"context"
	"net/http"
	"testing"
)

func TestParseHoldings_ExtractsTickerAndName(t *testing.T) {
	text := `Holdings Statement as of 30 June 2026
Symbol Description Quantity Price Value
MAERSK-B.CO A.P. Moller - Maersk 100 1,234.56 $123,456.00
DSV.CO DSV A/S 250 987.65 246,912.50
9101.T Nippon Yusen 1,000 45.20 45,200.00
Total 3 positions $415,568.50`

	rows := parseHoldings(text)
	want := []ImportRow{
		{Ticker: "MAERSK-B.CO", Name: "A.P. Moller - Maersk"},
		{Ticker: "DSV.CO", Name: "DSV A/S"},
		{Ticker: "9101.T", Name: "Nippon Yusen"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}
	for i, w := range want {
		if rows[i] != w {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], w)
		}
	}
}

func TestParseHoldings_SkipsHeaderAndNumericLines(t *testing.T) {
	text := `Symbol Description Quantity
100 1,234.56 45,200.00
ZIM ZIM Integrated Shipping 50 12.34 617.00`

	rows := parseHoldings(text)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}
	if rows[0].Ticker != "ZIM" || rows[0].Name != "ZIM Integrated Shipping" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestParseHoldings_DeduplicatesTickers(t *testing.T) {
	text := `ZIM ZIM Integrated Shipping 50 12.34
ZIM ZIM Integrated Shipping 25 12.40`

	rows := parseHoldings(text)
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1: %+v", len(rows), rows)
	}
}

func TestParseHoldings_RejectsLowercaseAndLongTokens(t *testing.T) {
	text := `maersk lowercase is prose, not a ticker 1 2
VERYLONGTICKER13 Too Long To Be Real 1 2
A Single letter 1 2
FDX FedEx Corporation 10 250.00`

	rows := parseHoldings(text)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}
	if rows[0].Ticker != "FDX" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestParseHoldings_NameStopsAtFirstNumber(t *testing.T) {
	rows := parseHoldings("UPS United Parcel Service 1,500 $180.25 270,375.00")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}
	if rows[0].Name != "United Parcel Service" {
		t.Errorf("name = %q, want %q", rows[0].Name, "United Parcel Service")
	}
}

func TestImportCompaniesPDF_UnknownSegmentSkipsEverything(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued")
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	_, _, err := c.ImportCompaniesPDF(context.Background(), "holdings.pdf", "AEROSPACE")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if b.total() != 0 {
		t.Errorf("expected 0 requests, got %d", b.total())
	}
}

func TestImportCompaniesPDF_MissingFile(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued")
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	_, _, err := c.ImportCompaniesPDF(context.Background(), "/no/such/file.pdf", "SHIPPING")
	if err == nil {
		t.Fatal("expected an open error")
	}
	if b.total() != 0 {
		t.Errorf("expected 0 requests, got %d", b.total())
	}
}
