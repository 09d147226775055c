package encyclopedia

// Status tells the surface which visual state to show
type Status string

const (
	StatusLoaded      Status = "loaded"
	StatusUnavailable Status = "unavailable"
)

// Content is a typed fetch result. Data holds the fallback value when
// Status is StatusUnavailable.
type Content[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
}

// Available reports whether Data came from the generator
func (c Content[T]) Available() bool {
	return c.Status == StatusLoaded
}

type Milestone struct {
	Year  string `json:"year"`
	Event string `json:"event"`
}

type Leader struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Years string `json:"years,omitempty"`
}

type PartySummary struct {
	Name     string `json:"name"`
	Ideology string `json:"ideology,omitempty"`
	Position string `json:"position,omitempty"`
}

// CountryProfile is the Country overlay content
type CountryProfile struct {
	Name             string         `json:"name"`
	OfficialName     string         `json:"official_name,omitempty"`
	Capital          string         `json:"capital,omitempty"`
	GovernmentType   string         `json:"government_type,omitempty"`
	HeadOfState      string         `json:"head_of_state,omitempty"`
	HeadOfGovernment string         `json:"head_of_government,omitempty"`
	Legislature      string         `json:"legislature,omitempty"`
	Population       string         `json:"population,omitempty"`
	Summary          string         `json:"summary"`
	PoliticalHistory []Milestone    `json:"political_history"`
	Parties          []PartySummary `json:"parties"`
	Leaders          []Leader       `json:"leaders"`
	Related          []string       `json:"related"`
}

type Role struct {
	Title string `json:"title"`
	Years string `json:"years,omitempty"`
}

// PersonProfile is the Person overlay content
type PersonProfile struct {
	Name        string   `json:"name"`
	Born        string   `json:"born,omitempty"`
	Died        string   `json:"died,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Roles       []Role   `json:"roles"`
	Ideology    string   `json:"ideology,omitempty"`
	Summary     string   `json:"summary"`
	KeyIdeas    []string `json:"key_ideas"`
	Legacy      string   `json:"legacy,omitempty"`
	Related     []string `json:"related"`
}

// IdeologyProfile is the Ideology overlay content
type IdeologyProfile struct {
	Name       string   `json:"name"`
	Family     string   `json:"family,omitempty"`
	Summary    string   `json:"summary"`
	CoreTenets []string `json:"core_tenets"`
	Origins    string   `json:"origins,omitempty"`
	Thinkers   []string `json:"thinkers"`
	Variants   []string `json:"variants"`
	Criticisms []string `json:"criticisms"`
	Related    []string `json:"related"`
}

// OrgProfile is the Org overlay content
type OrgProfile struct {
	Name         string   `json:"name"`
	Acronym      string   `json:"acronym,omitempty"`
	Founded      string   `json:"founded,omitempty"`
	Headquarters string   `json:"headquarters,omitempty"`
	Purpose      string   `json:"purpose,omitempty"`
	Summary      string   `json:"summary"`
	Members      []string `json:"members"`
	Leaders      []Leader `json:"leaders"`
	Related      []string `json:"related"`
}

type ElectionResult struct {
	Year   string `json:"year"`
	Result string `json:"result"`
}

// PartyProfile is the Party overlay content
type PartyProfile struct {
	Name             string           `json:"name"`
	Country          string           `json:"country"`
	Founded          string           `json:"founded,omitempty"`
	Ideology         string           `json:"ideology,omitempty"`
	Position         string           `json:"position,omitempty"`
	Leader           string           `json:"leader,omitempty"`
	Summary          string           `json:"summary"`
	ElectoralHistory []ElectionResult `json:"electoral_history"`
	Related          []string         `json:"related"`
}

type Chapter struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// ReaderGuide is the Reader overlay content
type ReaderGuide struct {
	Title               string    `json:"title"`
	Author              string    `json:"author"`
	Published           string    `json:"published,omitempty"`
	Summary             string    `json:"summary"`
	KeyArguments        []string  `json:"key_arguments"`
	Chapters            []Chapter `json:"chapters"`
	DiscussionQuestions []string  `json:"discussion_questions"`
	Related             []string  `json:"related"`
}

// Brief is the shared shape of Concept, Discipline, Event and Generic
// overlays
type Brief struct {
	Title     string   `json:"title"`
	Date      string   `json:"date,omitempty"`
	Summary   string   `json:"summary"`
	Body      string   `json:"body,omitempty"`
	KeyPoints []string `json:"key_points"`
	Examples  []string `json:"examples"`
	Related   []string `json:"related"`
}

type AlmanacEvent struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Country     string `json:"country,omitempty"`
}

// AlmanacEntry lists political events on a calendar day
type AlmanacEntry struct {
	Date   string         `json:"date"`
	Events []AlmanacEvent `json:"events"`
}

type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Quiz is a multiple choice quiz on one topic
type Quiz struct {
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// Dossier is an analyst style briefing on a subject
type Dossier struct {
	Subject        string   `json:"subject"`
	Classification string   `json:"classification,omitempty"`
	Summary        string   `json:"summary"`
	Background     string   `json:"background,omitempty"`
	KeyActors      []Leader `json:"key_actors"`
	Assessments    []string `json:"assessments"`
	Outlook        string   `json:"outlook,omitempty"`
	Sources        []string `json:"sources"`
}

// normalizer fills nil list fields so clients always see arrays
type normalizer interface {
	normalize()
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (p *CountryProfile) normalize() {
	p.PoliticalHistory = orEmpty(p.PoliticalHistory)
	p.Parties = orEmpty(p.Parties)
	p.Leaders = orEmpty(p.Leaders)
	p.Related = orEmpty(p.Related)
}

func (p *PersonProfile) normalize() {
	p.Roles = orEmpty(p.Roles)
	p.KeyIdeas = orEmpty(p.KeyIdeas)
	p.Related = orEmpty(p.Related)
}

func (p *IdeologyProfile) normalize() {
	p.CoreTenets = orEmpty(p.CoreTenets)
	p.Thinkers = orEmpty(p.Thinkers)
	p.Variants = orEmpty(p.Variants)
	p.Criticisms = orEmpty(p.Criticisms)
	p.Related = orEmpty(p.Related)
}

func (p *OrgProfile) normalize() {
	p.Members = orEmpty(p.Members)
	p.Leaders = orEmpty(p.Leaders)
	p.Related = orEmpty(p.Related)
}

func (p *PartyProfile) normalize() {
	p.ElectoralHistory = orEmpty(p.ElectoralHistory)
	p.Related = orEmpty(p.Related)
}

func (g *ReaderGuide) normalize() {
	g.KeyArguments = orEmpty(g.KeyArguments)
	g.Chapters = orEmpty(g.Chapters)
	g.DiscussionQuestions = orEmpty(g.DiscussionQuestions)
	g.Related = orEmpty(g.Related)
}

func (b *Brief) normalize() {
	b.KeyPoints = orEmpty(b.KeyPoints)
	b.Examples = orEmpty(b.Examples)
	b.Related = orEmpty(b.Related)
}

func (a *AlmanacEntry) normalize() {
	a.Events = orEmpty(a.Events)
}

func (q *Quiz) normalize() {
	q.Questions = orEmpty(q.Questions)
	for i := range q.Questions {
		q.Questions[i].Options = orEmpty(q.Questions[i].Options)
	}
}

func (d *Dossier) normalize() {
	d.KeyActors = orEmpty(d.KeyActors)
	d.Assessments = orEmpty(d.Assessments)
	d.Sources = orEmpty(d.Sources)
}
