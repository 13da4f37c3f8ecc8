package listing

import (
	"strings"
	"testing"

	"github.com/foodinsight/huginn/internal/pipeline"
	"github.com/google/go-cmp/cmp"
)

const goodListing = `### NOME: Smash Burger Angus com Crosta

### DESCRIÇÃO CURTA:
Blend Angus prensado na chapa, crosta caramelizada e queijo derretido no pão brioche.

### DESCRIÇÃO LONGA:
Dois discos de Angus prensados na chapa quente ganham uma crosta crocante e suculenta,
cobertos por cheddar cremoso e cebola caramelizada no pão brioche amanteigado, e a embalagem
com respiro mantém tudo quente e firme até chegar perfeito na sua mesa.

### HASHTAGS:
- #SmashBurger
- #Angus
- #Delivery
- #Hamburguer
- #Crosta
`

func issueSections(r Report) []string {
	var out []string
	for _, i := range r.Issues {
		out = append(out, i.String())
	}
	return out
}

func TestCheckAcceptsWellFormedListing(t *testing.T) {
	r := Check(goodListing)
	if !r.OK() {
		t.Fatalf("expected no issues, got %v", issueSections(r))
	}
	want := Listing{
		Name:             "Smash Burger Angus com Crosta",
		ShortDescription: "Blend Angus prensado na chapa, crosta caramelizada e queijo derretido no pão brioche.",
		Hashtags:         []string{"#SmashBurger", "#Angus", "#Delivery", "#Hamburguer", "#Crosta"},
	}
	got := r.Listing
	got.LongDescription = ""
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(r.Listing.LongDescription, "embalagem com respiro") {
		t.Fatalf("long description not captured: %q", r.Listing.LongDescription)
	}
}

func TestCheckReportsDeviations(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		section string
	}{
		{
			name:    "short description too long",
			text:    strings.Replace(goodListing, "Blend Angus", strings.Repeat("a", 141), 1),
			section: SectionShort,
		},
		{
			name: "packaging subheading",
			text: strings.Replace(goodListing, "### HASHTAGS:",
				"Segurança da Embalagem:\nCaixa reforçada.\n\n### HASHTAGS:", 1),
			section: SectionLong,
		},
		{
			name:    "two paragraphs",
			text:    strings.Replace(goodListing, "cebola caramelizada", "cebola\n\ncaramelizada", 1),
			section: SectionLong,
		},
		{
			name:    "four hashtags",
			text:    strings.Replace(goodListing, "- #Crosta\n", "", 1),
			section: SectionTags,
		},
		{
			name:    "missing name",
			text:    strings.Replace(goodListing, "### NOME: Smash Burger Angus com Crosta\n", "", 1),
			section: SectionName,
		},
		{
			name:    "preamble",
			text:    "Aqui está a descrição:\n" + goodListing,
			section: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Check(tc.text)
			if r.OK() {
				t.Fatalf("expected issues")
			}
			for _, i := range r.Issues {
				if i.Section == tc.section {
					return
				}
			}
			t.Fatalf("expected an issue for section %q, got %v", tc.section, issueSections(r))
		})
	}
}

func TestCheckDetectsOrder(t *testing.T) {
	parts := strings.SplitN(goodListing, "### HASHTAGS:", 2)
	text := "### HASHTAGS:" + parts[1] + "\n" + parts[0]
	r := Check(text)
	found := false
	for _, i := range r.Issues {
		if strings.HasPrefix(i.Message, "sections out of order") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected order issue, got %v", issueSections(r))
	}
}

func TestStagesPlan(t *testing.T) {
	stages, err := Stages(pipeline.SearchPreferred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pipeline.Validate(stages); err != nil {
		t.Fatalf("plan invalid: %v", err)
	}
	ids := []string{stages[0].ID(), stages[1].ID(), stages[2].ID()}
	if diff := cmp.Diff([]string{StageResearch, StageDesign, StageCopy}, ids); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}
	if stages[0].Search() != pipeline.SearchPreferred || stages[1].Search() != pipeline.SearchNone {
		t.Fatalf("unexpected search modes")
	}
	if !strings.Contains(stages[0].Instruction(), pipeline.TopicPlaceholder) {
		t.Fatalf("research instruction must carry the topic placeholder")
	}
	if !strings.Contains(stages[2].Instruction(), Template) {
		t.Fatalf("copy instruction must embed the template")
	}
	if diff := cmp.Diff([]string{StageDesign}, stages[2].Upstream()); diff != "" {
		t.Fatalf("copy upstream mismatch:\n%s", diff)
	}
}

func TestTemplateHasExpectedShape(t *testing.T) {
	// The placeholder template itself parses cleanly.
	r := Check(Template)
	if !r.OK() {
		t.Fatalf("template does not satisfy its own layout: %v", issueSections(r))
	}
}
