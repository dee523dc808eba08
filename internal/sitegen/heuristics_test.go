package sitegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const bareDoc = "<html><body><h1>Accueil</h1></body></html>"

func TestHeuristicBrandColor(t *testing.T) {
	html := AssembleHTML(core.DefaultBrief())

	out, lines := ApplyHeuristics(html, "Change la couleur principale en #ff0000")
	assert.Contains(t, out, "--brand:#ff0000")
	assert.NotContains(t, out, "--brand:"+core.DefaultBrandColor)
	assert.Equal(t, []string{"✔ Brand color -> #ff0000"}, lines)
}

func TestHeuristicBrandColorReplacesAssembledValue(t *testing.T) {
	for _, brand := range []string{"#12C", "#12C2", "#12C2E9", "#12C2E9FF"} {
		b := core.DefaultBrief()
		b.BrandColors = []string{brand}
		html := AssembleHTML(b)
		require.Contains(t, html, ":root{--brand:"+brand+"}")

		out, lines := ApplyHeuristics(html, "change the color to #abc")
		assert.Contains(t, out, ":root{--brand:#abc}", brand)
		assert.Equal(t, []string{"✔ Brand color -> #abc"}, lines)
	}
}

func TestHeuristicBrandColorNeedsKeywordAndHex(t *testing.T) {
	html := AssembleHTML(core.DefaultBrief())

	out, lines := ApplyHeuristics(html, "mets #ff0000 partout")
	assert.Equal(t, html, out)
	assert.Equal(t, []string{NothingDetectedLog}, lines)

	out, lines = ApplyHeuristics(html, "une autre couleur svp")
	assert.Equal(t, html, out)
	assert.Equal(t, []string{NothingDetectedLog}, lines)
}

func TestHeuristicFAQIsIdempotent(t *testing.T) {
	once, lines := ApplyHeuristics(bareDoc, "ajoute une FAQ")
	assert.Equal(t, []string{"✔ FAQ section added"}, lines)
	assert.Contains(t, once, faqSection+"</body>")

	twice, lines := ApplyHeuristics(once, "ajoute une FAQ")
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{NothingDetectedLog}, lines)
}

func TestHeuristicCTAAndStripe(t *testing.T) {
	out, lines := ApplyHeuristics(bareDoc, "Ajoute un CTA et un paiement Stripe")
	assert.Equal(t, []string{"✔ CTA added", "✔ Stripe demo button inserted"}, lines)
	assert.Contains(t, out, ctaMarker)
	assert.Contains(t, out, "fakeCheckout()")
	assert.Less(t, strings.Index(out, ctaMarker), strings.Index(out, "fakeCheckout"))
	assert.True(t, strings.HasSuffix(out, "</body></html>"))

	again, lines := ApplyHeuristics(out, "ajoute stripe et un cta")
	assert.Equal(t, out, again)
	assert.Equal(t, []string{NothingDetectedLog}, lines)
}

func TestHeuristicAssembledPageAlreadyHasSections(t *testing.T) {
	html := AssembleHTML(core.DefaultBrief())
	out, lines := ApplyHeuristics(html, "ajoute une faq et un cta")
	assert.Equal(t, html, out)
	assert.Equal(t, []string{NothingDetectedLog}, lines)
}

func TestHeuristicWithoutBodyAppends(t *testing.T) {
	out, lines := ApplyHeuristics("<h1>fragment</h1>", "faq")
	assert.Equal(t, []string{"✔ FAQ section added"}, lines)
	assert.Equal(t, "<h1>fragment</h1>"+faqSection, out)
}
