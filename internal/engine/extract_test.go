package engine

import (
	"strings"
	"testing"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// testDocumentBody assembles a document body with the canonical link and a
// flags section. An empty href omits the corresponding construct.
func testDocumentBody(canonicalHref, primaryHref, secondaryHref string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<title>Test</title>\n")
	if canonicalHref != "" {
		sb.WriteString(`<link rel="canonical" href="` + canonicalHref + `" />` + "\n")
	}
	sb.WriteString("</head>\n<body>\n<!-- FLAGS_1 -->\n<ul>\n")
	if primaryHref != "" {
		sb.WriteString(`<li><a cunt_code="+40" href="` + primaryHref + `">RO</a></li>` + "\n")
	}
	if secondaryHref != "" {
		sb.WriteString(`<li><a cunt_code="+1" href="` + secondaryHref + `">EN</a></li>` + "\n")
	}
	sb.WriteString("</ul>\n<!-- FLAGS -->\n<p>Body text.</p>\n</body>\n</html>\n")
	return sb.String()
}

// TestExtractLinks tests extraction of all three categories.
func TestExtractLinks(t *testing.T) {
	t.Parallel()

	e := New("https://example.com", "en")
	body := testDocumentBody(
		"https://example.com/page.html",
		"https://example.com/page.html",
		"https://example.com/en/page.html",
	)

	set := e.ExtractLinks(body)

	if set.Canonical == nil {
		t.Fatal("expected canonical link")
	}
	if set.Canonical.Target != "https://example.com/page.html" {
		t.Errorf("canonical target = %q", set.Canonical.Target)
	}
	if set.FlagPrimary == nil || set.FlagPrimary.Target != "https://example.com/page.html" {
		t.Error("expected primary flag link")
	}
	if set.FlagSecondary == nil || set.FlagSecondary.Target != "https://example.com/en/page.html" {
		t.Error("expected secondary flag link")
	}

	// Spans must point at the href values exactly.
	for _, ref := range []*model.LinkRef{set.Canonical, set.FlagPrimary, set.FlagSecondary} {
		if body[ref.Start:ref.End] != ref.Target {
			t.Errorf("span %q does not match target %q", body[ref.Start:ref.End], ref.Target)
		}
	}
}

// TestExtractTolerantToken tests that escaped and unescaped flag tokens
// are recognized as equivalent matches.
func TestExtractTolerantToken(t *testing.T) {
	t.Parallel()

	e := New("https://example.com", "en")

	plain := testDocumentBody("", "https://example.com/a.html", "")
	escaped := strings.Replace(plain, `cunt_code="+40"`, `cunt_code="\+40"`, 1)

	plainSet := e.ExtractLinks(plain)
	escapedSet := e.ExtractLinks(escaped)

	if plainSet.FlagPrimary == nil || escapedSet.FlagPrimary == nil {
		t.Fatal("expected both forms to match")
	}
	if plainSet.FlagPrimary.Target != escapedSet.FlagPrimary.Target {
		t.Errorf("targets differ: %q vs %q", plainSet.FlagPrimary.Target, escapedSet.FlagPrimary.Target)
	}
}

// TestExtractPartial tests that absent categories yield nil references.
func TestExtractPartial(t *testing.T) {
	t.Parallel()

	e := New("https://example.com", "en")

	t.Run("no flags section", func(t *testing.T) {
		t.Parallel()
		set := e.ExtractLinks(`<html><link rel="canonical" href="https://example.com/a.html" /></html>`)
		if set.Canonical == nil {
			t.Error("expected canonical link")
		}
		if set.FlagPrimary != nil || set.FlagSecondary != nil {
			t.Error("expected no flag links without a flags section")
		}
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		set := e.ExtractLinks("")
		if set.Canonical != nil || set.FlagPrimary != nil || set.FlagSecondary != nil {
			t.Error("expected empty link set")
		}
	})

	t.Run("flag outside section ignored", func(t *testing.T) {
		t.Parallel()
		body := `<html><li><a cunt_code="+40" href="https://example.com/a.html"></li></html>`
		set := e.ExtractLinks(body)
		if set.FlagPrimary != nil {
			t.Error("expected flag markup outside the flags section to be ignored")
		}
	})
}

// TestExtractFirstOccurrence tests that only the first match per category
// is taken.
func TestExtractFirstOccurrence(t *testing.T) {
	t.Parallel()

	e := New("https://example.com", "en")
	body := "<!-- FLAGS_1 -->\n" +
		`<li><a cunt_code="+40" href="https://example.com/first.html">RO</a></li>` + "\n" +
		`<li><a cunt_code="+40" href="https://example.com/second.html">RO</a></li>` + "\n" +
		"<!-- FLAGS -->"

	set := e.ExtractLinks(body)
	if set.FlagPrimary == nil {
		t.Fatal("expected primary flag link")
	}
	if set.FlagPrimary.Target != "https://example.com/first.html" {
		t.Errorf("expected first occurrence, got %q", set.FlagPrimary.Target)
	}
}

// TestExtractCustomTokens tests that flag tokens are caller-configurable.
func TestExtractCustomTokens(t *testing.T) {
	t.Parallel()

	e := New("https://finante.gov.ro", "execution", WithFlagTokens("+40", "+1"))
	body := testDocumentBody("", "https://finante.gov.ro/buget.html", "https://finante.gov.ro/execution/executie.html")

	set := e.ExtractLinks(body)
	if set.FlagPrimary == nil || set.FlagSecondary == nil {
		t.Fatal("expected both flag links")
	}
}
