package css

import "testing"

func TestParseSelector_Simple(t *testing.T) {
	cases := []struct {
		in  string
		tag string
		id  string
	}{
		{"div", "div", ""},
		{"DIV", "div", ""},
		{"*", "", ""},
		{"#main", "", "main"},
		{"p#intro", "p", "intro"},
	}
	for _, tc := range cases {
		sel, err := ParseSelector(tc.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
			continue
		}
		if len(sel.Compounds) != 1 {
			t.Errorf("%q: expected 1 compound, got %d", tc.in, len(sel.Compounds))
			continue
		}
		if sel.Compounds[0].Tag != tc.tag || sel.Compounds[0].ID != tc.id {
			t.Errorf("%q: got tag=%q id=%q", tc.in, sel.Compounds[0].Tag, sel.Compounds[0].ID)
		}
	}
}

func TestParseSelector_Compound(t *testing.T) {
	sel, err := ParseSelector(`div.note.em[role="main"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	comp := sel.Compounds[0]
	if comp.Tag != "div" {
		t.Errorf("expected tag div, got %q", comp.Tag)
	}
	if len(comp.Classes) != 2 || comp.Classes[0] != "note" || comp.Classes[1] != "em" {
		t.Errorf("expected classes [note em], got %v", comp.Classes)
	}
	if len(comp.Attrs) != 1 || comp.Attrs[0].Name != "role" || comp.Attrs[0].Op != AttrEquals || comp.Attrs[0].Value != "main" {
		t.Errorf("expected [role=main], got %+v", comp.Attrs)
	}
}

func TestParseSelector_Combinators(t *testing.T) {
	sel, err := ParseSelector("ul > li a + span ~ em")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sel.Compounds) != 5 {
		t.Fatalf("expected 5 compounds, got %d", len(sel.Compounds))
	}
	want := []Combinator{Child, Descendant, NextSibling, SubsequentSibling}
	for i, comb := range want {
		if sel.Combinators[i] != comb {
			t.Errorf("combinator %d: expected %q, got %q", i, string(comb), string(sel.Combinators[i]))
		}
	}
}

func TestParseSelector_AttrOps(t *testing.T) {
	cases := map[string]AttrOp{
		"[href]":          AttrExists,
		"[href=x]":        AttrEquals,
		"[rel~=nofollow]": AttrIncludes,
		"[href^=http]":    AttrPrefix,
		"[src$=.png]":     AttrSuffix,
		"[href*=example]": AttrSubstring,
		"[lang|=en]":      AttrDashMatch,
	}
	for in, op := range cases {
		sel, err := ParseSelector(in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
			continue
		}
		if sel.Compounds[0].Attrs[0].Op != op {
			t.Errorf("%q: wrong attribute op", in)
		}
	}
}

func TestParseSelector_PseudoClassesParse(t *testing.T) {
	sel, err := ParseSelector("a:hover")
	if err != nil {
		t.Fatalf("expected pseudo-class to parse, got %v", err)
	}
	if len(sel.Compounds[0].Pseudos) != 1 || sel.Compounds[0].Pseudos[0] != "hover" {
		t.Errorf("expected pseudo 'hover', got %v", sel.Compounds[0].Pseudos)
	}
	if _, err := ParseSelector("li:nth-child(2n+1)"); err != nil {
		t.Errorf("expected functional pseudo-class to parse, got %v", err)
	}
}

func TestParseSelector_Errors(t *testing.T) {
	for _, in := range []string{"", "div >", "[", "[foo", ".", "#", "div..x", "[a=]"} {
		if _, err := ParseSelector(in); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}

func TestSpecificity_Ordering(t *testing.T) {
	// id > any number of classes > any number of tags
	id, _ := ParseSelector("#x")
	classes, _ := ParseSelector(".a.b.c.d.e")
	tags, _ := ParseSelector("html body div p span em a")

	if id.Specificity <= classes.Specificity {
		t.Errorf("expected id to beat classes: %d vs %d", id.Specificity, classes.Specificity)
	}
	if classes.Specificity <= tags.Specificity {
		t.Errorf("expected classes to beat tags: %d vs %d", classes.Specificity, tags.Specificity)
	}

	// attribute selectors weigh like classes
	attr, _ := ParseSelector("[role=main]")
	class, _ := ParseSelector(".main")
	if attr.Specificity != class.Specificity {
		t.Errorf("expected [attr] and .class to tie: %d vs %d", attr.Specificity, class.Specificity)
	}
}
