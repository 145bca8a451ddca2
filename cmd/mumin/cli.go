package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/logging/logging"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/mumin"
)

const usage = `usage: mumin [flags] <command> [args]

commands:
  collections              list collections
  collection <slug>        show one collection
  hadith <id>              show one hadith
  random                   show a random hadith
  daily                    show the hadith of the day
  list                     list hadiths
  search <text>            full-text search

flags:
`

type options struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	retries int
	verbose bool

	query mumin.Query
}

func newFlagSet(stderr io.Writer, getenv func(string) string, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet("mumin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	baseURL := getenv("MUMIN_BASE_URL")
	if baseURL == "" {
		baseURL = mumin.DefaultBaseURL
	}

	fs.StringVar(&o.apiKey, "key", getenv("MUMIN_API_KEY"), "API key (default $MUMIN_API_KEY)")
	fs.StringVar(&o.baseURL, "base-url", baseURL, "API base URL (default $MUMIN_BASE_URL)")
	fs.DurationVar(&o.timeout, "timeout", mumin.DefaultTimeout, "per-attempt timeout")
	fs.IntVar(&o.retries, "retries", mumin.DefaultRetries, "retries after a failed attempt")
	fs.BoolVar(&o.verbose, "v", false, "log requests to stderr")

	fs.StringVar(&o.query.Lang, "lang", "", "translation language, e.g. en or ru")
	fs.StringVar(&o.query.Collection, "collection", "", "collection slug filter")
	fs.IntVar(&o.query.Book, "book", 0, "book number filter")
	fs.StringVar(&o.query.Grade, "grade", "", "grade filter")
	fs.IntVar(&o.query.Page, "page", 0, "page number")
	fs.IntVar(&o.query.Limit, "limit", 0, "page size")
	return fs
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	var o options
	fs := newFlagSet(stderr, getenv, &o)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	logger := zap.NewNop()
	if o.verbose {
		logger = logging.NewLoggerWith(logging.Options{Env: "dev", Level: "debug"})
		defer logger.Sync()
	}

	// a one-shot process gains nothing from a cache
	client, err := mumin.New(o.apiKey,
		mumin.WithBaseURL(o.baseURL),
		mumin.WithTimeout(o.timeout),
		mumin.WithRetries(o.retries),
		mumin.WithoutCache(),
		mumin.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(stderr, "mumin:", err)
		return 2
	}
	defer client.Close()

	out, err := dispatch(ctx, client, &o, fs.Arg(0), fs.Args()[1:])
	if err != nil {
		fmt.Fprintln(stderr, "mumin:", err)
		var ue usageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, "mumin:", err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func dispatch(ctx context.Context, c *mumin.Client, o *options, cmd string, args []string) (any, error) {
	q := &o.query

	switch cmd {
	case "collections":
		return c.Collections.List(ctx)
	case "collection":
		if len(args) != 1 {
			return nil, usageError("collection takes exactly one slug")
		}
		return c.Collections.Get(ctx, args[0])
	case "hadith":
		if len(args) != 1 {
			return nil, usageError("hadith takes exactly one id")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return nil, usageError(fmt.Sprintf("invalid hadith id %q", args[0]))
		}
		return c.Hadiths.Get(ctx, id, q.Lang)
	case "random":
		return c.Hadiths.Random(ctx, q)
	case "daily":
		return c.Hadiths.Daily(ctx, q.Lang)
	case "list":
		return c.Hadiths.List(ctx, q)
	case "search":
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return nil, usageError("search needs some text")
		}
		return c.Search.Query(ctx, text, q)
	default:
		return nil, usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}
