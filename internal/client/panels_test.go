package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestDashboard_CommitsRenderedTables(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK,
			`{"companies":[{"id":"c-1","name":"Maersk","ticker":"MAERSK-B.CO","segment":"SHIPPING","price":12.5,"revenue":51100000000}]}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	d, err := c.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if len(d.Companies) != 1 {
		t.Fatalf("expected 1 company, got %d", len(d.Companies))
	}

	out := c.State().Output(PanelDashboard)
	for _, want := range []string{"# Dashboard", "## SHIPPING", "MAERSK-B.CO", "51.10B"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel output missing %q:\n%s", want, out)
		}
	}
}

func TestDashboard_FailureLeavesPanelAlone(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail":"Failed to compute dashboard metrics"}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	_, err := c.Dashboard(context.Background())
	if err == nil || err.Error() != "Failed to compute dashboard metrics" {
		t.Errorf("err = %v, want the server detail", err)
	}
	if out := c.State().Output(PanelDashboard); out != "" {
		t.Errorf("failed fetch must not write the panel, got %q", out)
	}
}

func TestCompanyDetail_StaleFetchLoses(t *testing.T) {
	release := make(chan struct{})
	slowEntered := make(chan struct{})
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/companies/slow/detail":
			close(slowEntered)
			<-release
			writeJSON(w, http.StatusOK, `{"info":{"name":"Slow Corp"},"ratios":{}}`)
		case "/companies/fast/detail":
			writeJSON(w, http.StatusOK, `{"info":{"name":"Fast Corp"},"ratios":{}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	slowErr := make(chan error, 1)
	go func() {
		_, err := c.CompanyDetail(context.Background(), "slow")
		slowErr <- err
	}()

	select {
	case <-slowEntered:
	case <-time.After(5 * time.Second):
		t.Fatal("slow fetch never reached the backend")
	}

	// The newer fetch begins while the old one is still blocked.
	if _, err := c.CompanyDetail(context.Background(), "fast"); err != nil {
		t.Fatalf("fast fetch failed: %v", err)
	}
	close(release)

	select {
	case err := <-slowErr:
		if !errors.Is(err, ErrStale) {
			t.Errorf("slow fetch err = %v, want ErrStale", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("slow fetch never finished")
	}

	out := c.State().Output(PanelDetail)
	if !strings.Contains(out, "Fast Corp") {
		t.Errorf("panel should show the newer fetch:\n%s", out)
	}
	if strings.Contains(out, "Slow Corp") {
		t.Errorf("stale fetch leaked into the panel:\n%s", out)
	}
}

func TestSectorAnalytics_ShowsPlaceholderWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, http.StatusOK, `{"text":"Ports throughput is recovering."}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := c.SectorAnalytics(context.Background())
		done <- result{text, err}
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("analytics fetch never reached the backend")
	}
	if out := c.State().Output(PanelSector); out != SectorPlaceholder {
		t.Errorf("mid-flight panel = %q, want the placeholder", out)
	}
	close(release)

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("SectorAnalytics failed: %v", res.err)
		}
		if res.text != "Ports throughput is recovering." {
			t.Errorf("text = %q", res.text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SectorAnalytics never finished")
	}
	if out := c.State().Output(PanelSector); out != "Ports throughput is recovering." {
		t.Errorf("final panel = %q", out)
	}
}

func TestSectorAnalytics_EmptyTextFallsBack(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"text":"  "}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	text, err := c.SectorAnalytics(context.Background())
	if err != nil {
		t.Fatalf("SectorAnalytics failed: %v", err)
	}
	if text != NoAnalysisFallback {
		t.Errorf("text = %q, want the fallback line", text)
	}
	if out := c.State().Output(PanelSector); out != NoAnalysisFallback {
		t.Errorf("panel = %q, want the fallback line", out)
	}
}

func TestSectorAnalytics_UnavailableCommitsDetail(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"detail":"analytics unavailable"}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	_, err := c.SectorAnalytics(context.Background())
	if err == nil || err.Error() != "analytics unavailable" {
		t.Errorf("err = %v, want the server detail", err)
	}
	if out := c.State().Output(PanelSector); out != "analytics unavailable" {
		t.Errorf("panel = %q, want the failure message", out)
	}
}

func TestCompanyAnalytics_CommitsToCompanyPanel(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analytics/company/c-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"text":"Maersk runs a global container network."}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	text, err := c.CompanyAnalytics(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("CompanyAnalytics failed: %v", err)
	}
	if text != "Maersk runs a global container network." {
		t.Errorf("text = %q", text)
	}
	if out := c.State().Output(PanelCompany); out != text {
		t.Errorf("panel = %q", out)
	}
	if out := c.State().Output(PanelSector); out != "" {
		t.Errorf("sector panel must stay untouched, got %q", out)
	}
}

func TestChart_ReturnsPNGBytes(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard/chart" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	data, err := c.Chart(context.Background())
	if err != nil {
		t.Fatalf("Chart failed: %v", err)
	}
	if string(data) != string(png) {
		t.Errorf("chart bytes corrupted: got %v", data)
	}
}

func TestChart_NoData(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"No revenue data available to chart"}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	_, err := c.Chart(context.Background())
	if err == nil || err.Error() != "No revenue data available to chart" {
		t.Errorf("err = %v, want the server detail", err)
	}
}

func TestFullReload_SectorRunsAfterTables(t *testing.T) {
	b := portfolioBackend(t)
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	reload, err := c.FullReload(context.Background())
	if err != nil {
		t.Fatalf("FullReload failed: %v", err)
	}
	if len(reload.Companies) != 1 || reload.Dashboard == nil {
		t.Fatalf("unexpected reload result: %+v", reload)
	}
	if reload.SectorText != "Shipping rates are firming." {
		t.Errorf("SectorText = %q", reload.SectorText)
	}

	sector := b.indexOf("GET /analytics/sector")
	if sector < 0 {
		t.Fatal("sector analytics never requested")
	}
	if list := b.indexOf("GET /companies"); list < 0 || list > sector {
		t.Errorf("company list (index %d) must precede sector analytics (index %d)", list, sector)
	}
	if dash := b.indexOf("GET /dashboard"); dash < 0 || dash > sector {
		t.Errorf("dashboard (index %d) must precede sector analytics (index %d)", dash, sector)
	}
}

func TestFullReload_ListFailureAborts(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/companies":
			writeJSON(w, http.StatusInternalServerError, `{"detail":"Failed to load companies."}`)
		case "/dashboard":
			writeJSON(w, http.StatusOK, `{"companies":[]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	_, err := c.FullReload(context.Background())
	if err == nil || err.Error() != "Failed to load companies." {
		t.Errorf("err = %v, want the list failure", err)
	}
	if n := b.calls("GET /analytics/sector"); n != 0 {
		t.Errorf("sector analytics must not run after a table failure, got %d calls", n)
	}
}

func TestFullReload_SectorFailureDegradesToMessage(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/companies":
			writeJSON(w, http.StatusOK, `[]`)
		case "/dashboard":
			writeJSON(w, http.StatusOK, `{"companies":[]}`)
		case "/analytics/sector":
			writeJSON(w, http.StatusServiceUnavailable, `{"detail":"analytics unavailable"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)

	reload, err := c.FullReload(context.Background())
	if err != nil {
		t.Fatalf("FullReload failed: %v", err)
	}
	if reload.SectorText != "analytics unavailable" {
		t.Errorf("SectorText = %q, want the failure message", reload.SectorText)
	}
}
