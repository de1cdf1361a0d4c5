package rag

import (
	"fmt"
	"strings"

	"github.com/finaipro/colombiagpt/internal/knowledge"
)

// Fixed answers the model is instructed to return verbatim. Tests check
// these byte-for-byte, so they must never be reworded.
const (
	// RefusalAnswer is returned for questions outside the Colombia domain.
	RefusalAnswer = "Lo siento, solo puedo responder preguntas sobre Colombia. ¿Te gustaría saber algo específico sobre el país?"

	// HonestyAnswer is returned when the retrieved context does not cover
	// the question.
	HonestyAnswer = "No encontré esa información específica en mis fuentes sobre Colombia."
)

// DefaultSeparator joins chunk texts in the context block.
const DefaultSeparator = "\n"

// rule pairs a keyword predicate with the instruction it selects. Rules
// are evaluated in order; the first match wins.
type rule struct {
	keywords []string
	effect   string
}

var personaRules = []rule{
	{
		keywords: []string{"cuándo", "año", "fecha", "época"},
		effect:   "Eres un historiador experto en Colombia. Proporciona fechas exactas, contexto histórico y cronología precisa.",
	},
	{
		keywords: []string{"dónde", "ubicado", "región", "ciudad"},
		effect:   "Eres un geógrafo experto. Describe ubicaciones con precisión, menciona coordenadas si es relevante, y da contexto geográfico.",
	},
	{
		keywords: []string{"cultura", "tradición", "música", "comida"},
		effect:   "Eres un antropólogo cultural. Explica tradiciones, su origen, significado cultural y relevancia actual.",
	},
}

const defaultPersona = "Eres un experto general en Colombia."

var complexityRules = []rule{
	{
		keywords: []string{"explica brevemente", "resumen", "rápido"},
		effect:   "Responde en máximo 3 líneas, directo al grano.",
	},
	{
		keywords: []string{"detalladamente", "completo", "profundidad"},
		effect:   "Proporciona una respuesta completa y detallada con múltiples aspectos y usando listas.",
	},
}

const defaultComplexity = "Proporciona una respuesta balanceada con información suficiente pero concisa."

// classify returns the effect of the first rule whose keywords contain a
// match for question, or fallback when none match. Matching is
// case-insensitive substring containment.
func classify(question string, rules []rule, fallback string) string {
	lowered := strings.ToLower(question)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.effect
			}
		}
	}
	return fallback
}

// Composer builds generation prompts from retrieved chunks. It is a pure
// function of its inputs and configuration; safe for concurrent use.
type Composer struct {
	separator string
}

// NewComposer creates a Composer. An empty separator falls back to
// DefaultSeparator.
func NewComposer(separator string) *Composer {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &Composer{separator: separator}
}

// Compose builds the full generation prompt for question over the given
// retrieval results, ordered by retrieval rank.
func (c *Composer) Compose(question string, results []knowledge.Result) string {
	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Document.Content
	}
	context := strings.Join(texts, c.separator)

	persona := classify(question, personaRules, defaultPersona)
	complexity := classify(question, complexityRules, defaultComplexity)

	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString(" Tu nombre es ColombiaGPT, un asistente que responde preguntas sobre Colombia a partir de sus fuentes.\n\n")

	sb.WriteString("**Misión Principal:**\n")
	sb.WriteString("1. **Validación de Relevancia:** Antes de responder, evalúa si la pregunta es sobre Colombia usando el contexto.\n")
	sb.WriteString("   - **SI ES SOBRE COLOMBIA:** Responde siguiendo el formato estrictamente.\n")
	fmt.Fprintf(&sb, "   - **SI NO ES SOBRE COLOMBIA:** Responde EXACTAMENTE: %q\n", RefusalAnswer)
	fmt.Fprintf(&sb, "2. **Honestidad:** Si la información no está en el contexto, responde EXACTAMENTE: %q No inventes información.\n", HonestyAnswer)
	sb.WriteString("3. **Complejidad:** ")
	sb.WriteString(complexity)
	sb.WriteString("\n\n")

	sb.WriteString("**Contexto Proporcionado:**\n---\n")
	sb.WriteString(context)
	sb.WriteString("\n---\n\n")

	sb.WriteString("**Formato de Respuesta OBLIGATORIO:**\n")
	sb.WriteString("Usa emojis relevantes para cada sección.\n\n")
	sb.WriteString("🇨🇴 **Respuesta Directa**: [Respuesta concisa en 1-2 líneas]\n\n")
	sb.WriteString("📖 **Detalles**:\n- Punto principal 1\n- Punto principal 2\n\n")
	sb.WriteString("🌍 **Contexto Adicional**: [Información relevante extra que enriquezca la respuesta]\n\n")
	fmt.Fprintf(&sb, "**Fuente**: [%s]\n\n", sourceLabel(results))

	sb.WriteString("Pregunta: ")
	sb.WriteString(question)
	return sb.String()
}

// sourceLabel names the Wikipedia section the context came from, falling
// back to a generic label when section metadata is missing.
func sourceLabel(results []knowledge.Result) string {
	for _, res := range results {
		if section := res.Document.Metadata[knowledge.MetaSection]; section != "" {
			return "Sección de Wikipedia: " + section
		}
	}
	return "Wikipedia"
}
