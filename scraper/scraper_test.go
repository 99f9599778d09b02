package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unitPage = `<!DOCTYPE html>
<html>
<head><meta property="og:title" content="Meta Title"></head>
<body>
<h2 id="pagetitle">Computational Thinking with Python</h2>
<dl>
  <dt>Credit</dt>
  <dd>6&nbsp;points</dd>
  <dt>Offering</dt>
  <dd>Semester 1</dd>
  <dt>Outcomes</dt>
  <dd>Students are able to:<br>(1) write small programs;<br><br>(2) reason about complexity.</dd>
  <dt>Assessment</dt>
  <dd>Typically this unit is assessed in the following ways: tests and exams.</dd>
  <dt>Contact hours</dt>
  <dd>lectures: 2 hrs per week; labs: 2 hrs per week</dd>
</dl>
</body>
</html>`

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode("  cits1401 ")
	require.NoError(t, err)
	assert.Equal(t, "CITS1401", code)

	for _, bad := range []string{"", "CITS", "1401", "AB1234", "CITS14", "CITS 1401", "DROP;TABLE"} {
		_, err := NormalizeCode(bad)
		var invalid *InvalidCodeError
		assert.ErrorAs(t, err, &invalid, "code %q should be rejected", bad)
	}
}

func TestUnitLevel(t *testing.T) {
	assert.Equal(t, "1", UnitLevel("CITS1401"))
	assert.Equal(t, "5", UnitLevel("GENG5505"))
	assert.Equal(t, "", UnitLevel("1401"))
}

func TestFetchRejectsMalformedCodeWithoutRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 2*time.Second)
	_, err := f.Fetch(context.Background(), "not a code")

	var invalid *InvalidCodeError
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, atomic.LoadInt32(&hits), "malformed codes must never reach the network")
}

func TestFetchParsesUnitPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CITS1401", r.URL.Query().Get("code"))
		w.Write([]byte(unitPage))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 2*time.Second)
	meta, err := f.Fetch(context.Background(), "cits1401")
	require.NoError(t, err)

	assert.Equal(t, "CITS1401", meta.Code)
	assert.Equal(t, "1", meta.UnitLevel)
	assert.Equal(t, "Computational Thinking with Python", meta.UnitName)
	assert.Equal(t, "6", meta.CreditPoints)
	assert.Equal(t, "lectures: 2 hrs per week; labs: 2 hrs per week", meta.ContactHours)
	assert.Equal(t, "Typically this unit is assessed in the following ways: tests and exams.", meta.Assessments)
	assert.Equal(t, srv.URL+"?code=CITS1401", meta.OutlineLink)

	// br runs become single line breaks; blank lines are dropped.
	assert.Equal(t,
		"Students are able to:\n(1) write small programs;\n(2) reason about complexity.",
		meta.Outcomes)
}

func TestFetchTitleFallbacks(t *testing.T) {
	pages := map[string]string{
		"heading": `<html><body><h1> Heading Title </h1></body></html>`,
		"meta":    `<html><head><meta property="og:title" content="Meta Title"></head><body></body></html>`,
	}

	for name, page := range pages {
		body := page
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		f := NewFetcher(srv.URL, 2*time.Second)
		meta, err := f.Fetch(context.Background(), "CITS1401")
		srv.Close()
		require.NoError(t, err, name)

		switch name {
		case "heading":
			assert.Equal(t, "Heading Title", meta.UnitName)
		case "meta":
			assert.Equal(t, "Meta Title", meta.UnitName)
		}
	}
}

func TestFetchMissingLabelsLeaveFieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Bare Unit</h1><dl><dt>Offering</dt><dd>S2</dd></dl></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 2*time.Second)
	meta, err := f.Fetch(context.Background(), "PHYS2001")
	require.NoError(t, err)

	assert.Empty(t, meta.Outcomes)
	assert.Empty(t, meta.Assessments)
	assert.Empty(t, meta.CreditPoints)
	assert.Empty(t, meta.ContactHours)
	assert.Equal(t, srv.URL+"?code=PHYS2001", meta.OutlineLink, "outline link is set even for sparse pages")
}

func TestFetchRepeatedLabelsLastWins(t *testing.T) {
	// Some handbook pages repeat a label per offering block; the final
	// occurrence is the current one.
	page := `<html><body><h1>Dup Unit</h1><dl>
<dt>Credit</dt><dd>6 points</dd>
<dt>Outcomes</dt><dd>old outcomes</dd>
<dt>Credit</dt><dd>12 points</dd>
<dt>Outcomes</dt><dd>current outcomes</dd>
</dl></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 2*time.Second)
	meta, err := f.Fetch(context.Background(), "CITS1401")
	require.NoError(t, err)

	assert.Equal(t, "12", meta.CreditPoints)
	assert.Equal(t, "current outcomes", meta.Outcomes)
}

func TestFetchNon2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 2*time.Second)
	_, err := f.Fetch(context.Background(), "CITS1401")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}
