package sitegen

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const (
	BookingFeature = "Réservation"
	BookingLabel   = "Réserver"
	ContactLabel   = "Nous contacter"

	emptyListMark = "—"
	gridCardCount = 6
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

const pageTemplate = `{{define "hero"}}<header class='gradient text-white'><div class='max-w-5xl mx-auto px-6 py-12'><h1 class='text-4xl font-bold'>{{.ProjectName}}</h1><p class='mt-2 max-w-2xl text-white/90'>{{.Tone}}</p><div class='mt-6 flex gap-3'><a class='px-5 py-3 bg-white text-slate-900 rounded-xl font-semibold'>{{.HeroLabel}}</a><a class='px-5 py-3 border border-white/50 rounded-xl'>En savoir plus</a></div></div></header>{{end}}
{{- define "grid"}}<section class='max-w-5xl mx-auto px-6 py-12'><h2 class='text-xl font-semibold mb-4'>Nos services</h2><div class='grid grid-cols-1 sm:grid-cols-2 lg:grid-cols-3 gap-6'>{{range .Cards}}<div class='p-5 bg-white rounded-2xl shadow'><div class='h-32 bg-slate-100 rounded-lg mb-3'></div><div class='h-4 bg-slate-200 rounded w-4/5 mb-2'></div><div class='h-4 bg-slate-200 rounded w-2/3'></div></div>{{end}}</div></section>{{end}}
{{- define "faq"}}<section class='max-w-5xl mx-auto px-6 pb-12'><h2 class='text-xl font-semibold mb-4'>FAQ</h2><div class='space-y-3'><details class='bg-white rounded-xl p-4 shadow'><summary class='font-medium'>Question 1</summary><p class='text-slate-600 mt-2'>Réponse.</p></details><details class='bg-white rounded-xl p-4 shadow'><summary class='font-medium'>Question 2</summary><p class='text-slate-600 mt-2'>Réponse.</p></details></div></section>{{end}}
{{- define "cta"}}{{.CTA}}{{end}}
{{- define "footer"}}<footer class='border-t'><div class='max-w-5xl mx-auto px-6 py-8 text-sm text-slate-500'>© Votre marque</div></footer>{{end}}
{{- define "page"}}<!DOCTYPE html><html lang='fr'><head>
<meta charset='utf-8'><meta name='viewport' content='width=device-width, initial-scale=1'>
<link href='https://cdn.jsdelivr.net/npm/tailwindcss@3.4.12/dist/tailwind.min.css' rel='stylesheet'>
<style>:root{--brand:{{.Brand}}} .gradient{background:linear-gradient(135deg,var(--brand) 0%,#7DE3F6 100%)}</style>
<title>{{.ProjectName}}</title>
</head>
<body class='{{.BodyClass}}'>
{{template "hero" .}}{{template "grid" .}}{{template "faq" .}}{{template "cta" .}}{{template "footer" .}}
<section class='max-w-5xl mx-auto px-6 py-12'><h2 class='text-xl font-semibold mb-2'>Infos</h2><p class='text-slate-600'>Pages : {{.Pages}} • Modules : {{.Features}} • Stack : {{.Tech}}</p></section>
</body></html>{{end}}`

var page = template.Must(template.New("site").Parse(pageTemplate))

type pageData struct {
	ProjectName string
	Tone        string
	Brand       template.CSS
	HeroLabel   string
	BodyClass   string
	Cards       []int
	CTA         template.HTML
	Pages       string
	Features    string
	Tech        string
}

// AssembleHTML renders the fixed section list for b into one document. All
// brief text is escaped; a primary color that is not a hex color is replaced
// by the default brand color.
func AssembleHTML(b core.Brief) string {
	data := pageData{
		ProjectName: b.ProjectName,
		Tone:        b.Tone,
		Brand:       template.CSS(brandColor(b)),
		HeroLabel:   heroLabel(b),
		BodyClass:   "bg-slate-50 text-slate-900",
		Cards:       make([]int, gridCardCount),
		CTA:         template.HTML(ctaSection),
		Pages:       joinOrDash(b.Pages),
		Features:    joinOrDash(b.Features),
		Tech:        joinOrDash(b.Tech),
	}
	if b.DarkMode {
		data.BodyClass = "bg-slate-900 text-slate-100"
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "page", data); err != nil {
		// the template is static and data is plain strings
		log.Error().Err(err).Msg("render page template")
		return ""
	}
	return buf.String()
}

// Assemble wraps AssembleHTML into a file set with only index.html populated.
func Assemble(b core.Brief) core.FileSet {
	return core.FileSet{core.IndexFile: AssembleHTML(b)}
}

func brandColor(b core.Brief) string {
	c := strings.TrimSpace(b.PrimaryColor())
	if !hexColorRe.MatchString(c) {
		return core.DefaultBrandColor
	}
	return c
}

func heroLabel(b core.Brief) string {
	if b.HasFeature(BookingFeature) {
		return BookingLabel
	}
	return ContactLabel
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return emptyListMark
	}
	return strings.Join(items, ", ")
}
