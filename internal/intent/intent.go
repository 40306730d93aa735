// Package intent classifies chat messages and pulls product descriptions and
// follow-up references out of free text. All rules run against normalized
// text (see textnorm.Normalize), so patterns carry no accents or punctuation.
package intent

import (
	"regexp"

	"github.com/shoppit/backend/internal/textnorm"
)

// Intent is the communicative purpose of a message.
type Intent int

const (
	Unknown Intent = iota
	Greeting
	Farewell
	Gratitude
	Help
	Shipping
	Payment
	Returns
	Account
	// ProductSearch and FollowUp are never returned by Detector; the chatbot
	// pipeline assigns them after query or follow-up extraction succeeds.
	ProductSearch
	FollowUp
	FAQ
)

var intentNames = map[Intent]string{
	Unknown:       "unknown",
	Greeting:      "greeting",
	Farewell:      "farewell",
	Gratitude:     "gratitude",
	Help:          "help",
	Shipping:      "shipping",
	Payment:       "payment",
	Returns:       "returns",
	Account:       "account",
	ProductSearch: "product_search",
	FollowUp:      "follow_up",
	FAQ:           "faq",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// IsConversational reports whether the intent is answered from a fixed
// response pool without consulting the record store.
func (i Intent) IsConversational() bool {
	return i == Greeting || i == Farewell || i == Gratitude || i == Help
}

func (i Intent) IsDomain() bool {
	return i == Shipping || i == Payment || i == Returns || i == Account
}

type rule struct {
	pattern *regexp.Regexp
	intent  Intent
}

// defaultRules are evaluated in order; the first match wins.
var defaultRules = []rule{
	{regexp.MustCompile(`^(?:hola|holi|buenos dias|buenas tardes|buenas noches|buenas|buen dia|saludos|hey|hi|hello|que tal|como estas)\b`), Greeting},

	{regexp.MustCompile(`\b(?:adios|hasta luego|hasta pronto|hasta manana|chao|chau|nos vemos|bye|que tengas|me voy|me retiro)\b`), Farewell},

	{regexp.MustCompile(`\b(?:gracias|te agradezco|agradecido|agradecida|thank you|thanks)\b`), Gratitude},

	{regexp.MustCompile(`\b(?:ayuda|ayudame|puedes ayudarme|que puedes hacer|que sabes hacer|que puedo preguntar|instrucciones|guia|tutorial)\b`), Help},
	// "como funciona" alone asks about the assistant; "como funciona el envio"
	// belongs to the shipping rule.
	{regexp.MustCompile(`\bcomo funciona(?: esto| el (?:chat|chatbot|asistente))?$`), Help},

	{regexp.MustCompile(`\b(?:envio|envios|enviar|envian|shipping|entrega|entregas|llega|llegan)\b`), Shipping},
	{regexp.MustCompile(`\b(?:pago|pagos|pagar|metodos? de pago|tarjeta|tarjetas|paypal|epayco)\b`), Payment},
	{regexp.MustCompile(`\b(?:devolucion|devoluciones|devolver|reembolso|reembolsos|cambio|cambios|garantia)\b`), Returns},
	{regexp.MustCompile(`\b(?:cuenta|perfil|registrar|registrarme|registro|login|iniciar sesion|contrasena)\b`), Account},
}

// Detector is stateless and safe for concurrent use.
type Detector struct {
	rules []rule
}

func NewDetector() *Detector {
	return &Detector{rules: defaultRules}
}

// Detect returns the first matching intent, or Unknown.
func (d *Detector) Detect(message string) Intent {
	return d.DetectNormalized(textnorm.Normalize(message))
}

// DetectNormalized is Detect for text that is already normalized.
func (d *Detector) DetectNormalized(normalized string) Intent {
	if normalized == "" {
		return Unknown
	}
	for _, r := range d.rules {
		if r.pattern.MatchString(normalized) {
			return r.intent
		}
	}
	return Unknown
}
