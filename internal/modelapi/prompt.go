package modelapi

import (
	"fmt"
	"strings"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const (
	EditSystemPrompt = "Tu es un assistant front-end. Transforme le HTML fourni. Retourne uniquement le HTML final entre balises <HTML_OUTPUT>...</HTML_OUTPUT>."
	SiteSystemPrompt = "Tu es un développeur front-end. Génère un site vitrine statique. Réponds uniquement avec un objet JSON contenant les clés \"index.html\", \"style.css\" et \"script.js\"."
)

// BuildEditPrompt wraps the instruction and the current document the way the
// HTML_OUTPUT protocol expects.
func BuildEditPrompt(instruction, html string) string {
	return fmt.Sprintf("Demande: %s\nHTML:\n<<<HTML\n%s\nHTML>>>", instruction, html)
}

// BuildSitePrompt describes the brief for variant number variant (1-based) of total.
func BuildSitePrompt(b core.Brief, variant, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Projet: %s\n", b.ProjectName)
	fmt.Fprintf(&sb, "Ton: %s\n", b.Tone)
	fmt.Fprintf(&sb, "Couleurs de marque: %s (principale: %s)\n", strings.Join(b.BrandColors, ", "), b.PrimaryColor())
	fmt.Fprintf(&sb, "Pages: %s\n", strings.Join(b.Pages, ", "))
	fmt.Fprintf(&sb, "Modules: %s\n", strings.Join(b.Features, ", "))
	fmt.Fprintf(&sb, "Stack: %s\n", strings.Join(b.Tech, ", "))
	fmt.Fprintf(&sb, "Mode sombre: %t\n", b.DarkMode)
	sb.WriteString("Contraintes: attributs aria et alt sur les éléments interactifs et les images, bon contraste texte/fond, classes Tailwind.\n")
	if total > 1 {
		fmt.Fprintf(&sb, "Variante %d sur %d: propose une mise en page différente des autres variantes.\n", variant, total)
	}
	sb.WriteString(`Format: {"index.html": "...", "style.css": "...", "script.js": "..."}`)
	return sb.String()
}
