package chatbot

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shoppit/backend/internal/intent"
	"github.com/shoppit/backend/internal/lexicon"
	"github.com/shoppit/backend/internal/search"
	"github.com/shoppit/backend/internal/storage/models"
)

var greetings = []string{
	"¡Hola! Soy el asistente virtual de Shoppit. ¿En qué puedo ayudarte hoy?",
	"¡Bienvenido/a a Shoppit! Estoy aquí para ayudarte a encontrar lo que necesitas.",
	"Hola, ¿cómo puedo asistirte hoy? Puedes preguntarme sobre productos, pedidos o formas de pago.",
	"¡Saludos! Soy el asistente de Shoppit. ¿Qué estás buscando hoy?",
	"Hola, ¿en qué puedo ayudarte? Puedes buscar productos o hacer preguntas sobre nuestra tienda.",
}

var farewells = []string{
	"¡Hasta pronto! Recuerda que estoy aquí para ayudarte cuando lo necesites.",
	"¡Adiós! Gracias por visitar Shoppit. ¡Te esperamos de nuevo!",
	"¡Que tengas un buen día! Estamos para servirte cuando nos necesites.",
	"¡Hasta luego! No dudes en volver si necesitas más información.",
	"¡Adiós! Ha sido un placer ayudarte. Vuelve pronto a Shoppit.",
}

var gratitudes = []string{
	"¡De nada! Estoy aquí para ayudarte. ¿Necesitas algo más?",
	"¡Es un placer! ¿Hay algo más en lo que pueda asistirte?",
	"No hay de qué. Siempre es un gusto poder ayudarte. ¿Puedo hacer algo más por ti?",
	"Para eso estoy. ¿Hay algo más que quieras saber?",
	"¡Encantado de poder ayudarte! Si tienes más preguntas, no dudes en hacerlas.",
}

var fallbacks = []string{
	"Lo siento, no estoy seguro de entender tu consulta. ¿Podrías reformularla o ser más específico?",
	"No he podido procesar tu solicitud. Puedes preguntarme sobre productos, envíos, pagos o devoluciones.",
	"No he entendido lo que necesitas. ¿Estás buscando algún producto en particular o tienes alguna consulta sobre nuestra tienda?",
	"Disculpa, no he comprendido tu pregunta. ¿Te gustaría buscar algún producto específico?",
	"No estoy seguro de lo que estás preguntando. ¿Puedo ayudarte a encontrar algún producto o responder a alguna consulta sobre la tienda?",
}

const helpMessage = "Puedo ayudarte con varias cosas en Shoppit. Aquí tienes algunos ejemplos de lo que puedes preguntarme:\n\n" +
	"**Búsqueda de productos:**\n" +
	"- Busco una camiseta roja\n" +
	"- ¿Tienes teléfonos Samsung?\n" +
	"- Muéstrame zapatos deportivos\n\n" +
	"**Información general:**\n" +
	"- ¿Cómo funciona el envío?\n" +
	"- ¿Cuáles son las formas de pago?\n" +
	"- ¿Tienen política de devoluciones?\n\n" +
	"- Para consultas más específicas, intenta describir lo que buscas con detalles como color, tamaño, marca o categoría."

// ErrorMessage is returned when the pipeline fails unexpectedly.
const ErrorMessage = "Lo siento, ha ocurrido un error al procesar tu mensaje. Por favor, inténtalo de nuevo en unos momentos."

var domainAnswers = map[intent.Intent]string{
	intent.Shipping: "Realizamos envíos a todo el país con tiempos de entrega de 3-5 días hábiles para la mayoría de las ciudades. " +
		"Para zonas más remotas, el tiempo de entrega puede ser de hasta 7 días. El costo de envío se calcula automáticamente " +
		"al finalizar tu compra y depende de la ubicación y el peso del paquete. Para compras superiores a $50, el envío es gratuito.",
	intent.Payment: "Aceptamos varios métodos de pago para tu comodidad:\n\n" +
		"1. PayPal: para pagos seguros con tu cuenta PayPal o tarjeta\n" +
		"2. ePayco: que acepta tarjetas de crédito y débito de cualquier banco\n\n" +
		"Todas nuestras transacciones están encriptadas y son 100% seguras. Si tienes problemas con tu pago, " +
		"nuestro equipo de atención al cliente está disponible para ayudarte.",
	intent.Returns: "Nuestra política de devoluciones te permite:\n\n" +
		"1. Devolver cualquier producto dentro de los 14 días posteriores a la recepción con reembolso completo\n" +
		"2. Solicitar cambios por talla, color u otro modelo sin costo adicional durante los primeros 30 días\n\n" +
		"El producto debe estar en su embalaje original y en perfectas condiciones. Para iniciar una devolución, " +
		"solo debes ingresar a tu cuenta y seleccionar la opción 'Solicitar Devolución' en tu historial de pedidos.",
	intent.Account: "Para gestionar tu cuenta en Shoppit:\n\n" +
		"1. Para crear una cuenta: haz clic en 'Registrarse' en la esquina superior derecha\n" +
		"2. Para iniciar sesión: utiliza el botón 'Iniciar sesión' con tu nombre de usuario y contraseña\n" +
		"3. Para cambiar tu contraseña: ve a 'Mi Perfil' > 'Cambiar contraseña'\n\n" +
		"Si olvidaste tu contraseña, puedes restablecerla haciendo clic en '¿Olvidaste tu contraseña?' en la página de inicio de sesión.",
}

const (
	detailedListMax   = 3
	perCategoryMax    = 4
	uncategorizedMax  = 5
	shortDescriptionN = 100
)

func price(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatProducts renders a product listing. Short lists get full detail;
// longer ones are grouped by category in first-seen order.
func FormatProducts(products []models.Product) string {
	if len(products) == 0 {
		return "No he encontrado productos que coincidan con tu búsqueda."
	}

	var b strings.Builder

	if len(products) <= detailedListMax {
		b.WriteString("He encontrado los siguientes productos:\n\n")
		for i, p := range products {
			fmt.Fprintf(&b, "**%d. %s**\n", i+1, p.Name)
			fmt.Fprintf(&b, "   Precio: %s\n", price(p.Price))
			if p.Category != "" {
				fmt.Fprintf(&b, "   Categoría: %s\n", p.Category)
			}
			if p.Description != "" {
				fmt.Fprintf(&b, "   Descripción: %s\n", truncate(p.Description, shortDescriptionN))
			}
			b.WriteString("\n")
		}
	} else {
		var order []string
		groups := make(map[string][]models.Product)
		var uncategorized []models.Product

		for _, p := range products {
			if p.Category == "" {
				uncategorized = append(uncategorized, p)
				continue
			}
			if _, ok := groups[p.Category]; !ok {
				order = append(order, p.Category)
			}
			groups[p.Category] = append(groups[p.Category], p)
		}

		if len(order) > 0 {
			b.WriteString("He encontrado productos en las siguientes categorías:\n\n")
			for _, category := range order {
				items := groups[category]
				fmt.Fprintf(&b, "**%s:**\n", capitalize(category))
				for i, p := range items[:min(len(items), perCategoryMax)] {
					fmt.Fprintf(&b, "%d. %s - %s\n", i+1, p.Name, price(p.Price))
				}
				if len(items) > perCategoryMax {
					fmt.Fprintf(&b, "   Y %d productos más en esta categoría.\n", len(items)-perCategoryMax)
				}
				b.WriteString("\n")
			}
		}

		if len(uncategorized) > 0 {
			if len(order) == 0 {
				b.WriteString("He encontrado los siguientes productos:\n\n")
			} else {
				b.WriteString("**Otros productos:**\n")
			}
			for i, p := range uncategorized[:min(len(uncategorized), uncategorizedMax)] {
				fmt.Fprintf(&b, "%d. %s - %s\n", i+1, p.Name, price(p.Price))
			}
			if len(uncategorized) > uncategorizedMax {
				fmt.Fprintf(&b, "Y %d productos más.\n", len(uncategorized)-uncategorizedMax)
			}
		}
	}

	b.WriteString("\n¿Te gustaría más información sobre alguno de estos productos?")
	return b.String()
}

// productResponse answers a product search. With no results it apologizes,
// naming any requested attributes.
func productResponse(products []models.Product, query string, attrs search.Attributes, order []lexicon.AttributeVocabulary) string {
	if len(products) > 0 {
		return FormatProducts(products)
	}

	if attrs.Empty() {
		return fmt.Sprintf("No he encontrado productos que coincidan con '%s'. "+
			"¿Podrías ser más específico o describir lo que buscas de otra manera?", query)
	}

	var parts []string
	for _, vocab := range order {
		values := attrs[vocab.Type]
		if len(values) == 0 {
			continue
		}
		joined := strings.Join(values, ", ")
		switch vocab.Type {
		case lexicon.Colors:
			parts = append(parts, joined)
		case lexicon.Materials:
			parts = append(parts, "de "+joined)
		case lexicon.Sizes:
			parts = append(parts, "talla "+joined)
		case lexicon.Brands:
			parts = append(parts, "marca "+joined)
		}
	}

	return fmt.Sprintf("Lo siento, no encontré productos %s que coincidan con '%s'. "+
		"¿Podrías describir lo que buscas de otra manera o con otros detalles?", strings.Join(parts, " "), query)
}

// detailCard describes one product, listing the rest as similar products.
func detailCard(product models.Product, similar []models.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s**\n\n", product.Name)
	fmt.Fprintf(&b, "**Precio:** %s\n", price(product.Price))
	if product.Description != "" {
		fmt.Fprintf(&b, "**Descripción:** %s\n\n", product.Description)
	}
	if product.Category != "" {
		fmt.Fprintf(&b, "**Categoría:** %s\n", product.Category)
	}

	if len(similar) > 0 {
		b.WriteString("\n**Productos similares:**\n")
		for i, p := range similar {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, p.Name, price(p.Price))
		}
	}

	return b.String()
}

func notExactly(name string, products []models.Product) string {
	return fmt.Sprintf("No encontré exactamente '%s', pero he encontrado estos productos similares:\n\n", name) +
		FormatProducts(products)
}

func productNotFound(name string) string {
	return fmt.Sprintf("Lo siento, no he encontrado información del producto '%s'. ¿Podrías describirlo de otra manera?", name)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func productIDs(products []models.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
