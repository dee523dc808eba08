package sitegen

import (
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Mon Site":              "mon-site",
		"  Café   Crème!! ":     "cafe-creme",
		"Déjà-vu -- 2024":       "deja-vu-2024",
		"L'Atelier de Zoë":      "l-atelier-de-zoe",
		"UPPER_case and\ttabs":  "upper-case-and-tabs",
		"":                      FallbackSlug,
		"!!!":                   FallbackSlug,
		"---":                   FallbackSlug,
		"日本語":                   FallbackSlug,
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSlugifyAlwaysProducesAToken(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	alphabet := []rune("aZ9 -_!éÉçß\t.#/日")
	rng := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		runes := make([]rune, rng.IntN(24))
		for i := range runes {
			runes[i] = alphabet[rng.IntN(len(alphabet))]
		}
		in := string(runes)
		out := Slugify(in)
		assert.Regexp(t, valid, out, "Slugify(%q)", in)
		assert.Equal(t, out, Slugify(out), "slug of a slug must be stable")
	}
}
