package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

const testBaseURL = "https://example.com"

// primaryDoc builds a primary-tree document whose flags point at the given
// targets (bare names; full URLs are composed).
func primaryDoc(name, ownTarget, crossTarget string) *model.Document {
	var own, cross string
	if ownTarget != "" {
		own = testBaseURL + "/" + ownTarget
	}
	if crossTarget != "" {
		cross = testBaseURL + "/en/" + crossTarget
	}
	body := testDocumentBody(testBaseURL+"/"+name, own, cross)
	return model.NewDocument(model.TreePrimary, name, body)
}

// secondaryDoc builds a secondary-tree document symmetrically.
func secondaryDoc(name, ownTarget, crossTarget string) *model.Document {
	var own, cross string
	if ownTarget != "" {
		own = testBaseURL + "/en/" + ownTarget
	}
	if crossTarget != "" {
		cross = testBaseURL + "/" + crossTarget
	}
	body := testDocumentBody(testBaseURL+"/en/"+name, cross, own)
	return model.NewDocument(model.TreeSecondary, name, body)
}

// TestResolveStrongMatch tests mutual flag agreement.
func TestResolveStrongMatch(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	a := primaryDoc("report.html", "report.html", "story.html")
	b := secondaryDoc("story.html", "story.html", "report.html")

	res, err := e.Resolve([]*model.Document{a}, []*model.Document{b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Pairings) != 1 {
		t.Fatalf("expected 1 pairing, got %d", len(res.Pairings))
	}
	pair := res.Pairings[0]
	if pair.Strength != model.StrengthStrong {
		t.Errorf("expected strong pairing, got %v", pair.Strength)
	}
	if pair.Primary != a || pair.Secondary != b {
		t.Error("expected the two documents to be paired with each other")
	}
	if len(res.UnmatchedPrimary) != 0 || len(res.UnmatchedSecondary) != 0 {
		t.Error("expected no leftovers")
	}
}

// TestResolvePairingSymmetry tests that a pairing covers both directions:
// the counterpart of each side is the other side.
func TestResolvePairingSymmetry(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	a := primaryDoc("a.html", "a.html", "b.html")
	b := secondaryDoc("b.html", "b.html", "a.html")

	res, err := e.Resolve([]*model.Document{a}, []*model.Document{b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Pairings) != 1 {
		t.Fatalf("expected 1 pairing, got %d", len(res.Pairings))
	}

	pair := res.Pairings[0]
	if pair.Counterpart(a) != b || pair.Counterpart(b) != a {
		t.Error("expected the pairing to be symmetric")
	}
}

// TestResolveWeakMatch tests case-insensitive name fallback when flags
// do not mutually agree.
func TestResolveWeakMatch(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	// Cross flag points at a name that exists nowhere.
	a := primaryDoc("report.html", "report.html", "resultt.html")
	b := secondaryDoc("Report.html", "Report.html", "report.html")

	res, err := e.Resolve([]*model.Document{a}, []*model.Document{b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Pairings) != 1 {
		t.Fatalf("expected 1 pairing, got %d", len(res.Pairings))
	}
	if res.Pairings[0].Strength != model.StrengthWeak {
		t.Errorf("expected weak pairing, got %v", res.Pairings[0].Strength)
	}
	if len(res.UnmatchedPrimary) != 0 || len(res.UnmatchedSecondary) != 0 {
		t.Error("expected no leftovers")
	}
}

// TestResolveUnmatched tests that documents without counterparts are
// surfaced as leftovers in supplied order.
func TestResolveUnmatched(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	a := primaryDoc("alone.html", "alone.html", "nowhere.html")
	b := secondaryDoc("other.html", "other.html", "missing.html")

	res, err := e.Resolve([]*model.Document{a}, []*model.Document{b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Pairings) != 0 {
		t.Fatalf("expected no pairings, got %d", len(res.Pairings))
	}
	if len(res.UnmatchedPrimary) != 1 || res.UnmatchedPrimary[0] != a {
		t.Error("expected the primary document in the leftovers")
	}
	if len(res.UnmatchedSecondary) != 1 || res.UnmatchedSecondary[0] != b {
		t.Error("expected the secondary document in the leftovers")
	}
}

// TestResolveClaimConflict tests the tie-break: when two primary documents
// claim the same secondary counterpart, the first in supplied order wins
// and the conflict is recorded.
func TestResolveClaimConflict(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	first := primaryDoc("first.html", "first.html", "shared.html")
	second := primaryDoc("second.html", "second.html", "shared.html")
	shared := secondaryDoc("shared.html", "shared.html", "first.html")

	res, err := e.Resolve([]*model.Document{first, second}, []*model.Document{shared})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Pairings) != 1 {
		t.Fatalf("expected 1 pairing, got %d", len(res.Pairings))
	}
	if res.Pairings[0].Primary != first {
		t.Error("expected the first document in supplied order to win the claim")
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(res.Conflicts))
	}
	conflict := res.Conflicts[0]
	if conflict.Type != model.IssueMismatchedPair {
		t.Errorf("expected mismatched_pair conflict, got %v", conflict.Type)
	}
	if conflict.Document != "second.html" {
		t.Errorf("expected conflict on second.html, got %q", conflict.Document)
	}
	if len(res.UnmatchedPrimary) != 1 || res.UnmatchedPrimary[0] != second {
		t.Error("expected the losing document in the leftovers")
	}
}

// TestResolveDeterministicOrder tests that pairing follows the supplied
// ordering, not any incidental map order.
func TestResolveDeterministicOrder(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")

	// Two equivalently named candidates; weak matching must take them in
	// supplied order on every run.
	for range 10 {
		p1 := primaryDoc("page.html", "", "")
		s1 := secondaryDoc("Page.html", "", "")
		s2 := secondaryDoc("other.html", "", "")

		res, err := e.Resolve([]*model.Document{p1}, []*model.Document{s1, s2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Pairings) != 1 || res.Pairings[0].Secondary != s1 {
			t.Fatal("expected the first equivalent candidate to be chosen")
		}
	}
}

// TestResolveDuplicateIdentifier tests the fail-fast contract violation.
func TestResolveDuplicateIdentifier(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")

	t.Run("duplicate in primary tree", func(t *testing.T) {
		t.Parallel()
		docs := []*model.Document{
			primaryDoc("dup.html", "", ""),
			primaryDoc("dup.html", "", ""),
		}
		_, err := e.Resolve(docs, nil)
		if !errors.Is(err, ErrDuplicateIdentifier) {
			t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
		}
	})

	t.Run("duplicate in secondary tree", func(t *testing.T) {
		t.Parallel()
		docs := []*model.Document{
			secondaryDoc("dup.html", "", ""),
			secondaryDoc("dup.html", "", ""),
		}
		_, err := e.Resolve(nil, docs)
		if !errors.Is(err, ErrDuplicateIdentifier) {
			t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
		}
	})

	t.Run("error names the identifier", func(t *testing.T) {
		t.Parallel()
		docs := []*model.Document{
			primaryDoc("dup.html", "", ""),
			primaryDoc("dup.html", "", ""),
		}
		_, err := e.Resolve(docs, nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if got := err.Error(); !strings.Contains(got, "dup.html") {
			t.Errorf("expected error to name the identifier, got %q", got)
		}
	})
}
