package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shoppit/backend/internal/fuzzy"
	"github.com/shoppit/backend/internal/lexicon"
	"github.com/shoppit/backend/internal/textnorm"
)

const article = `(?:(?:un|una|unos|unas)\s+)?`

// Product phrases, most specific first. Each captures the description.
var productPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:me gustaria|quisiera|me encantaria)\s+(?:ver|comprar)\s+` + article + `(.+)`),
	regexp.MustCompile(`\b(?:quiero ver|muestrame|ensename|mostrame)\s+` + article + `(.+)`),
	regexp.MustCompile(`\b(?:buscame|encuentrame)\s+` + article + `(.+)`),
	regexp.MustCompile(`\b(?:busco|buscando|quiero|necesito|tienen|hay|donde|encuentro|vende|venden|vendes)\s+` + article + `(.+)`),
	regexp.MustCompile(`\b(?:me puedes|puedes|puede|podria|podrias|podrian)\s+(?:mostrar|ensenar|dar|indicar)(?:me)?\s+` + article + `(.+)`),
	regexp.MustCompile(`\bestoy interesad[oa] en\s+` + article + `(.+)`),
	regexp.MustCompile(`\b(?:tienes|tiene)\s+` + article + `(.+)`),
}

// Follow-up references to a product listed in the previous bot turn.
var (
	followUpByIndex = []*regexp.Regexp{
		regexp.MustCompile(`\bmas (?:informacion|detalles|datos)(?: (?:sobre|del|de la|de|acerca del|acerca de))?(?: (?:el|la))?(?: (?:producto|articulo|item|opcion))?(?: numero)? (\d+)\b`),
		regexp.MustCompile(`\b(?:el|la) (?:producto|articulo|item|opcion)(?: numero)? (\d+)\b`),
	}
	followUpByName = []*regexp.Regexp{
		regexp.MustCompile(`\bmas (?:informacion|detalles|datos) (?:sobre|del|de la|acerca del|acerca de) (?:(?:el|la|los|las) )?(.+?)(?: por favor)?$`),
		regexp.MustCompile(`\b(?:hablame|cuentame|dime|explicame|muestrame|quiero saber) mas (?:(?:sobre|del|de la|de|acerca del|acerca de) )?(?:(?:el|la|los|las) )?(.+?)(?: por favor)?$`),
	}
)

// categoryWindow is how many tokens either side of a category hit are kept
// as the approximate query.
const categoryWindow = 3

// FollowUpRef points at a previously suggested product, either by its
// 1-based position in the last listing or by (part of) its name.
type FollowUpRef struct {
	Index int
	Name  string
}

func (r FollowUpRef) ByIndex() bool { return r.Index > 0 }

// Extractor pulls product descriptions out of messages. It is safe for
// concurrent use.
type Extractor struct {
	lex       *lexicon.Lexicon
	corrector *fuzzy.Corrector
}

func NewExtractor(lex *lexicon.Lexicon, corrector *fuzzy.Corrector) *Extractor {
	return &Extractor{lex: lex, corrector: corrector}
}

// ExtractProductQuery returns the product description a message asks for.
// When no product phrase matches, a window around the first category term
// (original or corrected token) is returned instead.
func (e *Extractor) ExtractProductQuery(message string) (string, bool) {
	normalized := textnorm.Normalize(message)
	if normalized == "" {
		return "", false
	}

	for _, p := range productPatterns {
		if m := p.FindStringSubmatch(normalized); m != nil {
			if q := strings.TrimSpace(m[1]); q != "" {
				return q, true
			}
		}
	}

	words := strings.Fields(normalized)
	corrected := e.corrector.CorrectAll(words)

	for _, category := range e.lex.Categories() {
		for _, term := range category.Terms {
			idx := indexOf(corrected, term)
			if idx < 0 {
				idx = indexOf(words, term)
			}
			if idx < 0 {
				continue
			}
			start := max(0, idx-categoryWindow)
			end := min(len(words), idx+categoryWindow+1)
			return strings.Join(words[start:end], " "), true
		}
	}

	return "", false
}

// ExtractFollowUp recognises requests for more detail about a product from
// an earlier listing ("el producto 2", "cuentame mas sobre la camiseta roja").
func (e *Extractor) ExtractFollowUp(message string) (FollowUpRef, bool) {
	normalized := textnorm.Normalize(message)
	if normalized == "" {
		return FollowUpRef{}, false
	}

	for _, p := range followUpByIndex {
		if m := p.FindStringSubmatch(normalized); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				return FollowUpRef{Index: n}, true
			}
		}
	}

	for _, p := range followUpByName {
		if m := p.FindStringSubmatch(normalized); m != nil {
			name := strings.TrimSpace(m[1])
			if len(name) > 2 {
				return FollowUpRef{Name: name}, true
			}
		}
	}

	return FollowUpRef{}, false
}

func indexOf(words []string, target string) int {
	for i, w := range words {
		if w == target {
			return i
		}
	}
	return -1
}
