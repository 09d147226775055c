package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/polisci/internal/app"
	"github.com/briangreenhill/polisci/internal/config"
	"github.com/briangreenhill/polisci/internal/encyclopedia"
	"github.com/briangreenhill/polisci/internal/navigation"
)

const version = "polisci v0.1.0"

// Content is what the CLI looks things up with
type Content interface {
	Lookup(ctx context.Context, kind navigation.Kind, p navigation.Payload) (encyclopedia.Result, error)
	Almanac(ctx context.Context, date time.Time) (encyclopedia.Content[encyclopedia.AlmanacEntry], error)
	Quiz(ctx context.Context, topic string, n int) (encyclopedia.Content[encyclopedia.Quiz], error)
	Dossier(ctx context.Context, subject string) (encyclopedia.Content[encyclopedia.Dossier], error)
}

// newContent builds the content service; tests replace it
var newContent = func(ctx context.Context) (Content, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if os.Getenv("CACHE_BACKEND") == "" {
		cfg.Cache.Backend = "file"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := app.NewLogger(os.Stderr, cfg.LogLevel)
	gen, err := app.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	var rdb redis.UniversalClient
	if cfg.Cache.Backend == "redis" {
		rdb = app.NewRedis(cfg.Redis)
	}
	store, err := app.NewContentStore(cfg.Cache, rdb, logger)
	if err != nil {
		return nil, err
	}
	return app.NewService(cfg, gen, store, logger)
}

func main() {
	if err := runCLI(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: polisci <command> [arguments]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  country|person|event|ideology|org|concept|discipline|generic <name>")
	fmt.Fprintln(w, "  party <name> [country]")
	fmt.Fprintln(w, "  reader <title> [author]")
	fmt.Fprintln(w, "  almanac [today|YYYY-MM-DD|MM-DD]")
	fmt.Fprintln(w, "  quiz <topic> [questions]")
	fmt.Fprintln(w, "  dossier <subject>")
	fmt.Fprintln(w, "  help, version")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  LLM_PROVIDER        gemini (default) or openai")
	fmt.Fprintln(w, "  LLM_API_KEY         API key for the provider")
	fmt.Fprintln(w, "  LLM_MODEL           Model name")
	fmt.Fprintln(w, "  CACHE_BACKEND       file (default), memory or redis")
	fmt.Fprintln(w, "  CACHE_DIR           Cache directory (default ~/.polisci_cache/content)")
}

func runCLI(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "help", "--help", "-h":
		usage(out)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintln(out, version)
		return nil
	}

	ctx := zerolog.Nop().WithContext(context.Background())
	content, err := newContent(ctx)
	if err != nil {
		return err
	}

	v, err := dispatch(ctx, content, args[0], args[1:], time.Now())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dispatch(ctx context.Context, c Content, cmd string, rest []string, now time.Time) (any, error) {
	switch cmd {
	case "almanac":
		var v string
		if len(rest) > 0 {
			v = rest[0]
		}
		day, err := encyclopedia.ParseDay(v, now)
		if err != nil {
			return nil, err
		}
		return c.Almanac(ctx, day)
	case "quiz":
		if len(rest) == 0 {
			return nil, fmt.Errorf("quiz needs a topic")
		}
		n := 0
		if len(rest) > 1 {
			parsed, err := strconv.Atoi(rest[1])
			if err != nil || parsed < 1 {
				return nil, fmt.Errorf("question count must be a positive integer: %q", rest[1])
			}
			n = parsed
		}
		return c.Quiz(ctx, rest[0], n)
	case "dossier":
		if len(rest) == 0 {
			return nil, fmt.Errorf("dossier needs a subject")
		}
		return c.Dossier(ctx, strings.Join(rest, " "))
	}

	kind, ok := navigation.ParseKindNamespace(cmd)
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", cmd)
	}
	if len(rest) == 0 {
		return nil, fmt.Errorf("%s needs a name", cmd)
	}

	var p navigation.Payload
	switch kind {
	case navigation.KindParty:
		ref := navigation.PartyRef{Name: rest[0]}
		if len(rest) > 1 {
			ref.Country = strings.Join(rest[1:], " ")
		}
		p = ref
	case navigation.KindReader:
		ref := navigation.ReaderRef{Title: rest[0]}
		if len(rest) > 1 {
			ref.Author = strings.Join(rest[1:], " ")
		}
		p = ref
	default:
		p = navigation.Name(strings.Join(rest, " "))
	}
	return c.Lookup(ctx, kind, p)
}
