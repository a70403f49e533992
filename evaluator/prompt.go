package evaluator

import (
	"fmt"
	"strings"
)

const systemInstruction = "Eres un evaluador de escritura experto."

// Prompt is the ordered message list sent to the model after the system
// instruction.
type Prompt struct {
	System   string
	Messages []Message
}

// BuildEvaluationPrompt builds the three-message evaluation prompt: the
// evaluator instruction, the student's text and the rubric with the answer
// format.
func BuildEvaluationPrompt(text, rubric string) Prompt {
	var sb strings.Builder
	sb.WriteString("Rúbrica de evaluación:\n\n")
	sb.WriteString(rubric)
	sb.WriteString("\n\n")
	sb.WriteString("Devuelve la evaluación en formato JSON con las claves: 'criterio', 'nivel' (1-4) y 'comentario'. ")
	sb.WriteString(`Agrupa los criterios en una lista bajo la clave "evaluacion".`)

	return Prompt{
		System: systemInstruction,
		Messages: []Message{
			{Role: "user", Content: fmt.Sprintf("Texto del estudiante:\n\n%s", text)},
			{Role: "user", Content: sb.String()},
		},
	}
}
