package blog

const weeklyPromptTemplate = `You are writing a weekly engineering blog post for {{.Context.ISOWeek}}, drawing on {{.Context.JournalCount}} daily journal entries.

Projects touched this week: {{range $p, $_ := .Context.Projects}}{{$p}} {{end}}
Themes active this week: {{range $t, $_ := .Context.Themes}}{{$t}} {{end}}
Recurring sub-topics: {{range .Context.RecurringTopics}}{{.}} {{end}}

Decisions made:
{{range .Context.Decisions}}- {{.}}
{{end}}
Open questions:
{{range .Context.OpenQuestions}}- {{.}}
{{end}}

{{if .EditorialNotes}}Editorial guidance to honor:
{{range .EditorialNotes}}- {{.Text}}
{{end}}{{end}}
{{if .AvoidKeyPoints}}Do not repeat these points, already covered in a recent post:
{{range .AvoidKeyPoints}}- {{.}}
{{end}}{{end}}
{{if .AvoidExamples}}Do not reuse these examples:
{{range .AvoidExamples}}- {{.}}
{{end}}{{end}}

Write a single markdown document with a top-level heading (a compelling title), organized into "## " sections. Synthesize a narrative across the week rather than listing days. Do not include any text before the heading.
`

const thematicPromptTemplate = `You are writing a thematic engineering blog post about "{{.Context.Candidate.Theme}}", a topic that has come up {{.Context.Candidate.MentionCount}} times recently.

Relevant excerpts from journals mentioning this theme:
{{range .Context.Candidate.Excerpts}}- {{.}}
{{end}}

Related entities:
{{range .Context.Candidate.Entities}}- {{.Name}} ({{.EntityType}})
{{end}}

{{if .EditorialNotes}}Editorial guidance to honor:
{{range .EditorialNotes}}- {{.Text}}
{{end}}{{end}}
{{if .AvoidKeyPoints}}Do not repeat these points, already covered in a recent post:
{{range .AvoidKeyPoints}}- {{.}}
{{end}}{{end}}
{{if .AvoidExamples}}Do not reuse these examples:
{{range .AvoidExamples}}- {{.}}
{{end}}{{end}}

Write a single markdown document with a top-level heading (a compelling title), organized into "## " sections. Do not include any text before the heading.
`

const overlapRePromptTemplate = `Your previous draft overlapped too much with already-covered material. The following points and examples are already covered elsewhere and must not reappear, verbatim or closely paraphrased:

{{range .Overlapping}}- {{.}}
{{end}}

Rewrite the full post, replacing any overlapping material with fresh angles or examples. Respond with the complete corrected markdown document, starting with a top-level heading and nothing before it.
`
