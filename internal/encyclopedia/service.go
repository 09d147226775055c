package encyclopedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/briangreenhill/polisci/cache"
	"github.com/briangreenhill/polisci/internal/llm"
	"github.com/briangreenhill/polisci/internal/navigation"
	"github.com/briangreenhill/polisci/internal/prompt"
	"github.com/rs/zerolog"
)

// Envelope is the cached form of a generated entry. Data is the raw JSON
// the generator returned, or the encoded fallback.
type Envelope struct {
	Status Status          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Loaded reports whether the envelope holds generated content
func (e Envelope) Loaded() bool {
	return e.Status == StatusLoaded
}

const (
	DefaultQuizSize = 5
	MaxQuizSize     = 20
)

// Options tune the generation requests the service issues
type Options struct {
	Model           string
	MaxOutputTokens int32

	// Search enables web search grounding for time sensitive content
	Search bool
}

// Service fetches typed encyclopedia content through the cache
type Service struct {
	retrier  *llm.Retrier
	prompts  *prompt.Library
	memo     *cache.Memoizer[Envelope]
	opts     Options
	registry *Registry
}

// NewService builds a Service. Unavailable results are never stored, so a
// later request retries the generator.
func NewService(retrier *llm.Retrier, prompts *prompt.Library, store cache.Store[Envelope], opts Options, memoOpts ...cache.MemoOption[Envelope]) *Service {
	memoOpts = append(memoOpts, cache.WithKeep(Envelope.Loaded))
	s := &Service{
		retrier: retrier,
		prompts: prompts,
		memo:    cache.NewMemoizer(store, memoOpts...),
		opts:    opts,
	}
	s.registry = s.defaultRegistry()
	return s
}

// Registry exposes the per-kind resolvers
func (s *Service) Registry() *Registry {
	return s.registry
}

// Lookup resolves the overlay content for kind and payload
func (s *Service) Lookup(ctx context.Context, kind navigation.Kind, p navigation.Payload) (Result, error) {
	res, ok := s.registry.Get(kind)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if !navigation.Accepts(kind, p) {
		return Result{}, fmt.Errorf("%w: %s does not take %T", navigation.ErrBadPayload, kind, p)
	}
	return res.Resolve(ctx, p)
}

// EntityKey is the cache key for an overlay entity
func EntityKey(kind navigation.Kind, p navigation.Payload) string {
	return cache.KeyParts(kind.Namespace(), p.IDs()...)
}

func (s *Service) Country(ctx context.Context, name string) (Content[CountryProfile], error) {
	fb := CountryProfile{Name: name}
	return fetch(ctx, s, cache.Key("country", name), prompt.Country, nameVars{Name: name}, fb, false)
}

func (s *Service) Person(ctx context.Context, name string) (Content[PersonProfile], error) {
	fb := PersonProfile{Name: name}
	return fetch(ctx, s, cache.Key("person", name), prompt.Person, nameVars{Name: name}, fb, false)
}

func (s *Service) Ideology(ctx context.Context, name string) (Content[IdeologyProfile], error) {
	fb := IdeologyProfile{Name: name}
	return fetch(ctx, s, cache.Key("ideology", name), prompt.Ideology, nameVars{Name: name}, fb, false)
}

func (s *Service) Org(ctx context.Context, name string) (Content[OrgProfile], error) {
	fb := OrgProfile{Name: name}
	return fetch(ctx, s, cache.Key("org", name), prompt.Org, nameVars{Name: name}, fb, false)
}

// Party takes the country as part of the key, so same-named parties in
// different countries do not collide.
func (s *Service) Party(ctx context.Context, ref navigation.PartyRef) (Content[PartyProfile], error) {
	fb := PartyProfile{Name: ref.Name, Country: ref.Country}
	key := EntityKey(navigation.KindParty, ref)
	return fetch(ctx, s, key, prompt.Party, ref, fb, false)
}

func (s *Service) Reader(ctx context.Context, ref navigation.ReaderRef) (Content[ReaderGuide], error) {
	fb := ReaderGuide{Title: ref.Title, Author: ref.Author}
	key := EntityKey(navigation.KindReader, ref)
	return fetch(ctx, s, key, prompt.Reader, ref, fb, false)
}

// Brief serves the Concept, Discipline, Event and Generic kinds
func (s *Service) Brief(ctx context.Context, kind navigation.Kind, name string) (Content[Brief], error) {
	var tmpl string
	switch kind {
	case navigation.KindConcept:
		tmpl = prompt.Concept
	case navigation.KindDiscipline:
		tmpl = prompt.Discipline
	case navigation.KindEvent:
		tmpl = prompt.Event
	case navigation.KindGeneric:
		tmpl = prompt.Generic
	default:
		return Content[Brief]{}, fmt.Errorf("%w: %s has no brief", ErrUnknownKind, kind)
	}
	fb := Brief{Title: name}
	return fetch(ctx, s, cache.Key(kind.Namespace(), name), tmpl, nameVars{Name: name}, fb, false)
}

// Almanac lists political events that happened on the day and month of
// date in past years.
func (s *Service) Almanac(ctx context.Context, date time.Time) (Content[AlmanacEntry], error) {
	day := date.Format("January 2")
	fb := AlmanacEntry{Date: day}
	key := cache.Key("almanac", date.Format("01-02"))
	return fetch(ctx, s, key, prompt.Almanac, almanacVars{Date: day}, fb, s.opts.Search)
}

// ErrBadDate is returned by ParseDay for input it cannot read
var ErrBadDate = errors.New("date must be today, YYYY-MM-DD or MM-DD")

// ParseDay reads an almanac day: "today" (or empty) yields now, otherwise
// YYYY-MM-DD or MM-DD. Only month and day matter to Almanac.
func ParseDay(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "today" {
		return now, nil
	}
	for _, layout := range []string{time.DateOnly, "01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, v)
}

// Quiz builds an n question quiz on topic. n is clamped to
// [1, MaxQuizSize]; zero selects DefaultQuizSize.
func (s *Service) Quiz(ctx context.Context, topic string, n int) (Content[Quiz], error) {
	switch {
	case n <= 0:
		n = DefaultQuizSize
	case n > MaxQuizSize:
		n = MaxQuizSize
	}
	fb := Quiz{Topic: topic}
	key := cache.KeyParts("quiz", topic, strconv.Itoa(n))
	return fetch(ctx, s, key, prompt.Quiz, quizVars{Topic: topic, Count: n}, fb, false)
}

func (s *Service) Dossier(ctx context.Context, subject string) (Content[Dossier], error) {
	fb := Dossier{Subject: subject}
	return fetch(ctx, s, cache.Key("dossier", subject), prompt.Dossier, dossierVars{Subject: subject}, fb, s.opts.Search)
}

type nameVars struct {
	Name string
}

type almanacVars struct {
	Date string
}

type quizVars struct {
	Topic string
	Count int
}

type dossierVars struct {
	Subject string
}

func (s *Service) request(contents string, search bool) llm.Request {
	req := llm.Request{
		Model:    s.opts.Model,
		Contents: contents,
		Config: llm.Config{
			MaxOutputTokens:  s.opts.MaxOutputTokens,
			ResponseMIMEType: llm.MIMEJSON,
		},
	}
	if search {
		req.Config.Tools = []llm.Tool{llm.ToolGoogleSearch}
	}
	return req
}

// fetch is the cache, retry and parse pipeline shared by every content
// kind. It only fails when the prompt cannot be rendered.
func fetch[T any](ctx context.Context, s *Service, key, tmpl string, vars any, fallback T, search bool) (Content[T], error) {
	env, err := s.memo.Do(ctx, key, func(ctx context.Context) (Envelope, error) {
		contents, err := s.prompts.Build(tmpl, vars)
		if err != nil {
			return Envelope{}, fmt.Errorf("build %s prompt: %w", tmpl, err)
		}

		resp := s.retrier.GenerateWithFallback(ctx, s.request(contents, search), fallback)
		text := strings.TrimSpace(resp.Text)
		if resp.Fallback {
			return Envelope{Status: StatusUnavailable, Data: json.RawMessage(text)}, nil
		}
		if _, err := llm.Parse[T](text); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("generator returned malformed content")
			return Envelope{Status: StatusUnavailable}, nil
		}
		return Envelope{Status: StatusLoaded, Data: json.RawMessage(text)}, nil
	})
	if err != nil {
		return Content[T]{}, err
	}

	data := llm.SafeParse(string(env.Data), fallback)
	if n, ok := any(&data).(normalizer); ok {
		n.normalize()
	}
	return Content[T]{Status: env.Status, Data: data}, nil
}

func result[T any](kind navigation.Kind, c Content[T], err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: kind, Status: c.Status, Data: c.Data}, nil
}

func (s *Service) defaultRegistry() *Registry {
	r := NewRegistry()

	named := map[navigation.Kind]func(ctx context.Context, name string) (Result, error){
		navigation.KindCountry: func(ctx context.Context, name string) (Result, error) {
			c, err := s.Country(ctx, name)
			return result(navigation.KindCountry, c, err)
		},
		navigation.KindPerson: func(ctx context.Context, name string) (Result, error) {
			c, err := s.Person(ctx, name)
			return result(navigation.KindPerson, c, err)
		},
		navigation.KindIdeology: func(ctx context.Context, name string) (Result, error) {
			c, err := s.Ideology(ctx, name)
			return result(navigation.KindIdeology, c, err)
		},
		navigation.KindOrg: func(ctx context.Context, name string) (Result, error) {
			c, err := s.Org(ctx, name)
			return result(navigation.KindOrg, c, err)
		},
	}
	for _, k := range []navigation.Kind{navigation.KindConcept, navigation.KindDiscipline, navigation.KindEvent, navigation.KindGeneric} {
		named[k] = func(ctx context.Context, name string) (Result, error) {
			c, err := s.Brief(ctx, k, name)
			return result(k, c, err)
		}
	}

	for kind, fn := range named {
		r.Register(ResolverFunc{K: kind, Fn: func(ctx context.Context, p navigation.Payload) (Result, error) {
			name, ok := p.(navigation.Name)
			if !ok {
				return Result{}, fmt.Errorf("%w: %s wants a name", navigation.ErrBadPayload, kind)
			}
			return fn(ctx, string(name))
		}})
	}

	r.Register(ResolverFunc{K: navigation.KindParty, Fn: func(ctx context.Context, p navigation.Payload) (Result, error) {
		ref, ok := p.(navigation.PartyRef)
		if !ok {
			return Result{}, fmt.Errorf("%w: Party wants a party reference", navigation.ErrBadPayload)
		}
		c, err := s.Party(ctx, ref)
		return result(navigation.KindParty, c, err)
	}})

	r.Register(ResolverFunc{K: navigation.KindReader, Fn: func(ctx context.Context, p navigation.Payload) (Result, error) {
		ref, ok := p.(navigation.ReaderRef)
		if !ok {
			return Result{}, fmt.Errorf("%w: Reader wants a title and author", navigation.ErrBadPayload)
		}
		c, err := s.Reader(ctx, ref)
		return result(navigation.KindReader, c, err)
	}})

	return r
}
