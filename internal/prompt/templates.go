package prompt

const systemTemplate = `You are a rigorous but fair exam grader reviewing a student's written answer.
Always respond in {{.Language}}.

Score the answer against these criteria:
1. Conceptual correctness: are the key concepts stated accurately?
2. Alignment with the point allocation: is the depth proportional to the question's point value?
3. Structural clarity: is the answer organized with a clear line of argument?
4. Use of examples: are claims supported by relevant examples or evidence?

Output rules:
- Reply with a single raw JSON object and nothing else.
- Do not add any prose before or after the JSON.
- Do not wrap the JSON in Markdown code fences.`

const userTemplate = `## Question{{if .Section}} ({{.Section}}){{end}} - {{points .Points}} points
{{.Question}}
{{- if .Topics}}

## Topics
{{range .Topics}}- {{.}}
{{end}}
{{- end}}
{{- if .Elapsed}}

## Time spent
{{.Elapsed}}
{{- end}}

## Student answer
{{.Answer}}
{{- if .Notes}}

## Study notes (for calibration, do not quote verbatim)
{{.Notes}}
{{- end}}
{{- if .Booklist}}

## Booklist references (citable, do not fabricate references beyond this list)
{{.Booklist}}
{{- end}}

## Required output JSON schema
{
  "score": "number between 0 and {{points .Points}}",
  "maxScore": "number, always {{points .Points}}",
  "rationale": "string, concise justification of the score",
  "strengths": ["string, what the answer did well"],
  "missingPoints": ["string, key points the answer missed"],
  "improvements": ["string, concrete ways to improve"],
  "suggestedOutline": ["string, outline of a model answer"],
  "booklistAlignment": {
    "topics": ["string, booklist topics the answer touches"],
    "refsToReview": ["string, booklist references worth reviewing"]
  },
  "nextDrill": {
    "prompt": "string, one short follow-up practice task",
    "timeboxMinutes": "integer between 5 and 120"
  }
}

The score must not exceed {{points .Points}}. If the answer is off-topic or clearly incorrect, say so in the rationale and give the shortest viable remediation in improvements and nextDrill.`
