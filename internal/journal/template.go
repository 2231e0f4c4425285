package journal

import "github.com/silverl/distill/pkg/model"

// promptTemplate renders a model.DailyContext into the journal-synthesis
// prompt. Text execution happens inside the configured llm.Worker's
// Render method, which owns the text/template FuncMap; this package only
// supplies the template body and its data.
const promptTemplate = `You are writing a developer's daily engineering journal entry for {{.Date}} in the "{{.Style}}" voice.

Write a single markdown document starting with a top-level heading. Target length: roughly {{.TargetWordCount}} words.

Sessions worked on today:
{{range .Sessions}}
- {{.Title}} (project: {{if .Project}}{{.Project}}{{else}}unassigned{{end}}, duration: {{.Duration}})
{{- range .Learnings}}
  - learned: {{.}}
{{- end}}
{{- range .Outcomes}}
  - {{.Type}}{{if .Path}}: {{.Path}}{{end}}{{if .Command}}: {{.Command}}{{end}}
{{- end}}
{{- end}}

{{if .ActiveThreads}}Ongoing threads from recent days to weave in where relevant:
{{range .ActiveThreads}}
- {{.Name}} (mentioned {{.MentionCount}} times, last seen {{.LastSeen}})
{{- end}}
{{end}}
{{if .RecentEntities}}Entities mentioned yesterday, for continuity:
{{range .RecentEntities}}
- {{.Name}} ({{.EntityType}})
{{- end}}
{{end}}
{{if .EditorialNotes}}Editorial guidance to honor in this entry:
{{range .EditorialNotes}}
- {{.Text}}
{{- end}}
{{end}}
{{if .UnusedSeeds}}Ideas available to draw on if they fit naturally:
{{range .UnusedSeeds}}
- {{.Text}}
{{- end}}
{{end}}
{{if .ProjectsTouched}}Projects touched today:
{{range .ProjectsTouched}}
- {{.Name}}{{if .Description}}: {{.Description}}{{end}}
{{- end}}
{{end}}
Do not include any text before the first heading. Do not repeat session titles verbatim as a list; synthesize a narrative.
`

// lengthCorrectionData wraps a DailyContext with the prior attempt's word
// count, for the one-shot length-correction re-prompt.
type lengthCorrectionData struct {
	model.DailyContext
	PriorWords int
	Target     int
}

const lengthCorrectionTemplate = `Your previous draft of the {{.Date}} journal entry ran {{.PriorWords}} words against a target of {{.Target}}. Rewrite it to land within that target while keeping the same voice, sessions, and factual content. Respond with the full corrected markdown document, starting with a top-level heading and nothing before it.`
