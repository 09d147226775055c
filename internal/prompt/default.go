package prompt

// Template names
const (
	Country    = "country"
	Person     = "person"
	Event      = "event"
	Ideology   = "ideology"
	Org        = "org"
	Party      = "party"
	Reader     = "reader"
	Concept    = "concept"
	Discipline = "discipline"
	Generic    = "generic"
	Almanac    = "almanac"
	Quiz       = "quiz"
	Dossier    = "dossier"
)

const jsonRule = `Respond with a single JSON object only. Do not wrap it in markdown.`

// defaults are the built-in templates, keyed by name
var defaults = map[string]string{
	Country: `You are a political science encyclopedia. Write a profile of the country "{{.Name}}".
Return JSON with keys: "name", "official_name", "capital", "government_type", "head_of_state",
"head_of_government", "legislature", "population", "summary", "political_history" (array of
{"year","event"}), "parties" (array of {"name","ideology","position"}), "leaders" (array of
{"name","role","years"}), "related" (array of entity names).
` + jsonRule,

	Person: `You are a political science encyclopedia. Write a biography of "{{.Name}}".
Return JSON with keys: "name", "born", "died", "nationality", "roles" (array of
{"title","years"}), "ideology", "summary", "key_ideas" (array of strings), "legacy",
"related" (array of entity names).
` + jsonRule,

	Ideology: `You are a political science encyclopedia. Explain the ideology "{{.Name}}".
Return JSON with keys: "name", "family", "summary", "core_tenets" (array of strings),
"origins", "thinkers" (array of names), "variants" (array of strings), "criticisms"
(array of strings), "related" (array of entity names).
` + jsonRule,

	Org: `You are a political science encyclopedia. Describe the organization "{{.Name}}".
Return JSON with keys: "name", "acronym", "founded", "headquarters", "purpose", "summary",
"members" (array of country names), "leaders" (array of {"name","role","years"}),
"related" (array of entity names).
` + jsonRule,

	Party: `You are a political science encyclopedia. Describe the political party "{{.Name}}"{{if .Country}} of {{.Country}}{{end}}.
Return JSON with keys: "name", "country", "founded", "ideology", "position", "leader",
"summary", "electoral_history" (array of {"year","result"}), "related" (array of entity names).
` + jsonRule,

	Reader: `You are a political science tutor. Write a reading guide for "{{.Title}}"{{if .Author}} by {{.Author}}{{end}}.
Return JSON with keys: "title", "author", "published", "summary", "key_arguments"
(array of strings), "chapters" (array of {"title","summary"}), "discussion_questions"
(array of strings), "related" (array of entity names).
` + jsonRule,

	Concept: `You are a political science encyclopedia. Explain the concept "{{.Name}}".
Return JSON with keys: "title", "summary", "body", "key_points" (array of strings),
"examples" (array of strings), "related" (array of entity names).
` + jsonRule,

	Discipline: `You are a political science encyclopedia. Introduce the field of study "{{.Name}}".
Return JSON with keys: "title", "summary", "body", "key_points" (array of strings),
"examples" (array of notable scholars or works), "related" (array of entity names).
` + jsonRule,

	Event: `You are a political science encyclopedia. Describe the historical event "{{.Name}}".
Return JSON with keys: "title", "date", "summary", "body", "key_points" (array of causes
and consequences), "examples" (array of key participants), "related" (array of entity names).
` + jsonRule,

	Generic: `You are a political science encyclopedia. Write an entry about "{{.Name}}".
Return JSON with keys: "title", "summary", "body", "key_points" (array of strings),
"examples" (array of strings), "related" (array of entity names).
` + jsonRule,

	Almanac: `You are a political almanac. List notable political events that happened on {{.Date}} in past years.
Return JSON with keys: "date", "events" (array of {"year","title","description","country"}).
` + jsonRule,

	Quiz: `You are a political science instructor. Write {{.Count}} multiple choice questions about "{{.Topic}}".
Return JSON with keys: "topic", "questions" (array of {"question","options" (4 strings),
"answer" (index of the correct option),"explanation"}).
` + jsonRule,

	Dossier: `You are an intelligence analyst. Prepare a briefing dossier on "{{.Subject}}".
Return JSON with keys: "subject", "classification", "summary", "background", "key_actors"
(array of {"name","role"}), "assessments" (array of strings), "outlook", "sources" (array of strings).
` + jsonRule,
}

// Names returns every built-in template name
func Names() []string {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	return names
}
