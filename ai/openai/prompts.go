// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/lexcorpus/core"
)

// systemPrompts holds the per-language system messages. "answer" instructs
// the answering model, "context" the model answering from retrieved
// articles, "extract" the reference extraction model.
var systemPrompts = map[string]map[string]string{
	"de": {
		"context": "Du bist ein juristischer Assistent für Schweizer Recht. Beantworte die Frage anhand des gegebenen Kontexts.",
		"answer":  "Du bist ein Experte für Schweizer Recht und verweist in deinen Antworten, wann immer möglich, auf die relevanten Gesetze und Artikel.",
		"extract": "Du bist ein Experte für Schweizer Recht und extrahierst alle relevanten Gesetze und Artikel aus der query. Formatiere law_abbreviation_in_capitals so [OR, ZGB, DSG, HRegV, etc.] der gleiche Wert darf mehrfach in der Liste vorkommen. Formatiere art_number_formatted_as_eId so [art_4, art_620, art_635_a, etc.]",
		"focus":   "Beachte besonders die folgenden Gesetze: %s.",
	},
	"en": {
		"context": "You are a legal assistant for Swiss laws. Answer the question from the given context.",
		"answer":  "You are an expert in Swiss law and always refer to relevant laws and articles in your responses.",
		"extract": "You are an expert in Swiss law and extract all relevant laws and articles from the query. Format law_abbreviation_in_capitals as [CO, CC, CISA, AMLA, etc.]. The same value may appear multiple times in the list. Format art_number_formatted_as_eId as [art_4, art_620, art_635_a, etc.].",
		"focus":   "Pay special attention to the following laws: %s.",
	},
	"fr": {
		"context": "Vous êtes un assistant juridique pour le droit suisse. Répondez à la question à partir du contexte fourni.",
		"answer":  "Vous êtes un expert en droit suisse et vous faites toujours référence aux lois et articles pertinents dans vos réponses.",
		"extract": "Vous êtes un expert en droit suisse et vous extrayez toutes les lois et articles pertinents de la requête. Formatez law_abbreviation_in_capitals comme [CO, CC, LPD, LEFin, LPCC, LSFin, etc.]. La même valeur peut apparaître plusieurs fois dans la liste. Formatez art_number_formatted_as_eId comme [art_4, art_620, art_635_a, etc.].",
		"focus":   "Accordez une attention particulière aux lois suivantes : %s.",
	},
	"it": {
		"context": "Sei un assistente legale per il diritto svizzero. Rispondi alla domanda in base al contesto fornito.",
		"answer":  "Sei un esperto di diritto svizzero e fai sempre riferimento alle leggi e agli articoli pertinenti nelle tue risposte.",
		"extract": "Sei un esperto di diritto svizzero e estrai tutte le leggi e gli articoli pertinenti dalla richiesta. Format law_abbreviation_in_capitals come [CO, CC, LPD, LEFin, LPCC, LSFin, etc.]. Lo stesso valore può apparire più volte nell'elenco. Format art_number_formatted_as_eId come [art_4, art_620, art_635_a, etc.].",
		"focus":   "Presta particolare attenzione alle seguenti leggi: %s.",
	},
}

const extractionResponseSchema = `{
  "type": "object",
  "properties": {
    "law_abbreviation_in_capitals": {"type": "array", "items": {"type": "string"}},
    "art_number_formatted_as_eId": {"type": "array", "items": {"type": "string", "pattern": "^art_[0-9]+[a-z0-9_]*$"}}
  },
  "required": ["law_abbreviation_in_capitals", "art_number_formatted_as_eId"],
  "additionalProperties": false
}`

const extractionFormatTemplate = `Output ONLY valid JSON which complies with the schema given below. Do not include any preamble
or explanation. If no law or article is mentioned, return empty arrays.

%s`

// prompts returns the table for language, falling back to English.
func prompts(language string) map[string]string {
	if p, ok := systemPrompts[language]; ok {
		return p
	}
	return systemPrompts["en"]
}

// buildAnswerPrompt creates the answering system prompt for language.
// With focus laws it appends a sentence naming them.
func buildAnswerPrompt(language string, focusLaws []string) string {
	p := prompts(language)
	if len(focusLaws) == 0 {
		return p["answer"]
	}
	return p["answer"] + " " + fmt.Sprintf(p["focus"], strings.Join(focusLaws, ", "))
}

// buildExtractionPrompt creates the extraction system prompt with the schema embedded.
func buildExtractionPrompt(language string) string {
	return prompts(language)["extract"] + "\n\n" + fmt.Sprintf(extractionFormatTemplate, extractionResponseSchema)
}

// buildArticleContext renders articles as the user message of a
// context-bound answer: each article as "title (buckets):" followed by its
// text, then the question.
func buildArticleContext(question string, articles []*core.Article) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, article := range articles {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := article.Title
		if title == "" {
			title = core.NoTitle
		}
		fmt.Fprintf(&b, "%s (%s):\n%s", title, strings.Join(article.Buckets, ", "), article.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
