package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newResolver() *Resolver {
	return NewResolver("en", []string{"en", "de", "es", "fr", "it", "ja", "zh-CN", "zh-TW"})
}

func TestFromCookie(t *testing.T) {
	r := newResolver()

	req := r.FromCookie("", false)
	assert.Equal(t, "en", req.Lang)
	assert.True(t, req.ResetCookie)

	req = r.FromCookie("ja", true)
	assert.Equal(t, "ja", req.Lang)
	assert.False(t, req.ResetCookie)

	req = r.FromCookie("", true)
	assert.Equal(t, "", req.Lang)
	assert.False(t, req.ResetCookie)
}

func TestPreprocess(t *testing.T) {
	cases := []struct {
		in       string
		name     string
		redirect string
		ok       bool
	}{
		{"/", "", "/index.html", false},
		{"", "", "/index.html", false},
		{"/guide", "guide/", "/guide/index.html", false},
		{"/guide/", "guide/", "/guide/index.html", false},
		{"/intl/fr", "intl/fr/", "/intl/fr/index.html", false},
		{"/guide/index.html", "guide/index.html", "", true},
		{"/favicon.ico", "favicon.ico", "", true},
		{"/v1.5/notes", "v1.5/notes/", "/v1.5/notes/index.html", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			name, redirect, ok := Preprocess(tc.in)
			assert.Equal(t, tc.name, name)
			assert.Equal(t, tc.redirect, redirect)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestClassify(t *testing.T) {
	r := newResolver()

	cases := []struct {
		name        string
		path        string
		cookie      string
		present     bool
		decision    Decision
		lang        string
		validIntl   bool
		resetCookie bool
		remainder   string
	}{
		{"default lang is clean", "guide/index.html", "en", true, Clean, "en", false, false, ""},
		{"missing cookie is clean", "guide/index.html", "", false, Clean, "en", false, true, ""},
		{"non html is clean", "images/logo.png", "ja", true, Clean, "ja", false, false, ""},
		{"empty lang is clean", "guide/index.html", "", true, Clean, "", false, false, ""},
		{"html with other lang redirects", "guide/index.html", "ja", true, NeedsRedirect, "ja", false, false, ""},
		{"valid intl same lang", "intl/ja/guide/index.html", "ja", true, Clean, "ja", true, false, "guide/index.html"},
		{"valid intl adopts url lang", "intl/fr/guide/index.html", "en", true, Clean, "fr", true, true, "guide/index.html"},
		{"invalid intl with default cookie is clean", "intl/xx/guide/index.html", "en", true, Clean, "en", false, false, ""},
		{"invalid intl with other cookie", "intl/xx/guide/index.html", "ja", true, InvalidIntl, "ja", false, false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, decision := r.Classify(tc.path, r.FromCookie(tc.cookie, tc.present))
			assert.Equal(t, tc.decision, decision)
			assert.Equal(t, tc.lang, req.Lang)
			assert.Equal(t, tc.validIntl, req.ValidIntl)
			assert.Equal(t, tc.resetCookie, req.ResetCookie)
			assert.Equal(t, tc.remainder, req.Remainder)
			assert.Equal(t, tc.path, req.Path)
			assert.Equal(t, tc.validIntl, req.FromURL)
		})
	}
}

func TestIntlRedirect(t *testing.T) {
	assert.Equal(t, "/intl/ja/guide/index.html?hl=1", IntlRedirect("guide/index.html", "ja", "hl=1"))
	assert.Equal(t, "/intl/ja/guide/index.html", IntlRedirect("guide/index.html", "ja", ""))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "clean", Clean.String())
	assert.Equal(t, "invalid_intl", InvalidIntl.String())
	assert.Equal(t, "needs_redirect", NeedsRedirect.String())
}
