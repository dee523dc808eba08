package sitegen

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	faqMarker     = "FAQ"
	ctaMarker     = "Prêt à démarrer"
	paymentVendor = "stripe"

	NothingDetectedLog = "ℹ Nothing specific detected, no major change."
)

const (
	faqSection = `<section class='max-w-5xl mx-auto px-6 pb-12'><h2 class='text-xl font-semibold mb-4'>FAQ</h2><div class='space-y-3'><details class='bg-white rounded-xl p-4 shadow'><summary class='font-medium'>Question 1</summary><p class='text-slate-600 mt-2'>Réponse.</p></details></div></section>`
	ctaSection = `<section class='max-w-5xl mx-auto px-6 py-12 text-center'><h2 class='text-2xl font-semibold'>Prêt à démarrer ?</h2><a class='inline-block mt-4 px-6 py-3 bg-slate-900 text-white rounded-xl'>Nous contacter</a></section>`
	paySection = `<script>function fakeCheckout(){alert('Stripe (démo)')}</script><section class='max-w-5xl mx-auto px-6 py-12 text-center'><button onclick="fakeCheckout()" class='px-6 py-3 bg-emerald-600 text-white rounded-xl'>Payer avec Stripe (démo)</button></section>`
)

var (
	colorKeywords = []string{"couleur", "color", "colour"}
	hexInPromptRe = regexp.MustCompile(`#([0-9a-f]{3,6})`)
	brandVarRe    = regexp.MustCompile(`--brand:\s*#[0-9a-fA-F]{3,8}\b`)
)

// rule inspects the lowered instruction and the current html. It returns the
// new html and a log line, or ok=false when it does not apply.
type rule func(html, instruction string) (out, logLine string, ok bool)

var rules = []rule{brandColorRule, faqRule, ctaRule, paymentRule}

// ApplyHeuristics runs every keyword rule against html in order and returns
// the result with one log line per rule that fired.
func ApplyHeuristics(html, instruction string) (string, []string) {
	low := strings.ToLower(instruction)

	var lines []string
	for _, r := range rules {
		out, line, ok := r(html, low)
		if !ok {
			continue
		}
		html = out
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		lines = append(lines, NothingDetectedLog)
	}
	return html, lines
}

func brandColorRule(html, low string) (string, string, bool) {
	if !containsAny(low, colorKeywords) {
		return "", "", false
	}
	m := hexInPromptRe.FindStringSubmatch(low)
	if m == nil {
		return "", "", false
	}
	hex := "#" + m[1]
	return brandVarRe.ReplaceAllLiteralString(html, "--brand:"+hex), fmt.Sprintf("✔ Brand color -> %s", hex), true
}

func faqRule(html, low string) (string, string, bool) {
	if !strings.Contains(low, "faq") || strings.Contains(html, faqMarker) {
		return "", "", false
	}
	return insertBeforeBodyEnd(html, faqSection), "✔ FAQ section added", true
}

func ctaRule(html, low string) (string, string, bool) {
	if !strings.Contains(low, "cta") || strings.Contains(html, ctaMarker) {
		return "", "", false
	}
	return insertBeforeBodyEnd(html, ctaSection), "✔ CTA added", true
}

func paymentRule(html, low string) (string, string, bool) {
	if !strings.Contains(low, paymentVendor) || strings.Contains(strings.ToLower(html), paymentVendor) {
		return "", "", false
	}
	return insertBeforeBodyEnd(html, paySection), "✔ Stripe demo button inserted", true
}

// insertBeforeBodyEnd places fragment before every closing body tag, or
// appends it when the document has none.
func insertBeforeBodyEnd(html, fragment string) string {
	if !strings.Contains(html, "</body>") {
		return html + fragment
	}
	return strings.ReplaceAll(html, "</body>", fragment+"</body>")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
