package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/graphmend/graphmend/internal/eventbus"
	"github.com/graphmend/graphmend/internal/heal"
	"github.com/graphmend/graphmend/internal/introspection"
	"github.com/graphmend/graphmend/internal/language"
	"github.com/graphmend/graphmend/internal/logging"
	"github.com/graphmend/graphmend/internal/mock"
	"github.com/graphmend/graphmend/internal/otel"
	"github.com/graphmend/graphmend/internal/schema"
	"github.com/graphmend/graphmend/internal/server"
)

const rootUsage = `graphmend — GraphQL schema healing & serving tools

USAGE:
  graphmend <command> [flags] <schema.graphql ...>

COMMANDS:
  serve    Serve a schema over HTTP with mocked resolvers
  compile  Merge, validate and heal GraphQL SDL into a single schema
  prune    Drop named types from a schema and heal the result
  help     Show help for any command
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>             HTTP listen address (default: :8080)
  -server.pretty                  Pretty-print JSON responses
  -server.timeout <duration>      Per-request timeout, e.g. 10s (default: 10s)
  -server.forward-header <name>   Forward HTTP header into resolver context. Repeatable
  -server.cors-origin <origin>    Allowed CORS origin. Repeatable; use * for any
  -graphql.introspection <bool>   Enable GraphQL introspection (default: true)
  -graphql.heal <bool>            Heal the schema before serving (default: true)
  -log.level <level>              Log level: debug, info, warn, error (default: info)
  -otel.endpoint <addr>           OTLP collector endpoint
  -otel.service <name>            OpenTelemetry service name (default: graphmend)

Positional arguments are GraphQL SDL files; at least one is required.
Fields without resolvers are served with deterministic mock values.
`

const compileUsage = `compile FLAGS:
  -out <file>     Write compiled SDL to file (default: stdout)
  -heal <bool>    Heal the schema after merging (default: true)

Positional arguments are GraphQL SDL files; at least one is required.
(Validation always runs; exits non-zero on errors)
`

const pruneUsage = `prune FLAGS:
  -drop <type>    Type name to remove before healing. Repeatable
  -out <file>     Write resulting SDL to file (default: stdout)

Positional arguments are GraphQL SDL files; at least one is required.
Dropping a type and healing removes everything only reachable through it.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "graphmend:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphmend", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "compile":
		return cmdCompile(cmdArgs)
	case "prune":
		return cmdPrune(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "compile":
		fmt.Print(compileUsage)
	case "prune":
		fmt.Print(pruneUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// loadSchema reads and merges the given SDL files into a validated schema.
func loadSchema(files []string) (*schema.Schema, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one schema file is required")
	}
	sources := make([]*language.Source, len(files))
	for i, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		sources[i] = &language.Source{Name: file, Input: string(data)}
	}
	s, err := schema.BuildFromSources(sources...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}

func writeSDL(sdl, outFile string) error {
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

func cmdCompile(args []string) error {
	outFile := ""
	doHeal := true
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write compiled SDL to file")
	fs.BoolVar(&doHeal, "heal", doHeal, "Heal the schema after merging")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, compileUsage)
		return err
	}

	s, err := loadSchema(fs.Args())
	if err != nil {
		fmt.Fprint(os.Stderr, compileUsage)
		return err
	}
	if doHeal {
		heal.Heal(s)
	}
	return writeSDL(schema.Render(s), outFile)
}

func cmdPrune(args []string) error {
	outFile := ""
	var drop stringListFlag
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write resulting SDL to file")
	fs.Var(&drop, "drop", "Type name to remove before healing")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, pruneUsage)
		return err
	}

	s, err := loadSchema(fs.Args())
	if err != nil {
		fmt.Fprint(os.Stderr, pruneUsage)
		return err
	}
	for _, name := range drop {
		if _, ok := s.Types[name]; !ok {
			return fmt.Errorf("unknown type %q", name)
		}
		delete(s.Types, name)
	}

	// Healing and stripping dangling members can expose each other's work,
	// so iterate to a fixed point before rendering.
	for {
		heal.Heal(s)
		if !stripDanglingMembers(s) {
			break
		}
	}
	return writeSDL(schema.Render(s), outFile)
}

// stripDanglingMembers removes fields, arguments, input fields and abstract
// memberships that reference types no longer present, so the rendered SDL is
// loadable again. Reports whether anything was removed.
func stripDanglingMembers(s *schema.Schema) bool {
	exists := func(ref *schema.TypeRef) bool {
		_, ok := s.Types[schema.GetNamedType(ref)]
		return ok
	}
	changed := false
	for _, t := range s.Types {
		if t.BuiltIn {
			continue
		}
		var fields []*schema.Field
		for _, f := range t.Fields {
			keep := exists(f.Type)
			for _, arg := range f.Arguments {
				if !exists(arg.Type) {
					keep = false
				}
			}
			if keep {
				fields = append(fields, f)
			} else {
				changed = true
			}
		}
		t.Fields = fields

		var inputs []*schema.InputValue
		for _, v := range t.InputFields {
			if exists(v.Type) {
				inputs = append(inputs, v)
			} else {
				changed = true
			}
		}
		t.InputFields = inputs

		var ifaces []string
		for _, name := range t.Interfaces {
			if _, ok := s.Types[name]; ok {
				ifaces = append(ifaces, name)
			} else {
				changed = true
			}
		}
		t.Interfaces = ifaces

		var possible []string
		for _, name := range t.PossibleTypes {
			if _, ok := s.Types[name]; ok {
				possible = append(possible, name)
			} else {
				changed = true
			}
		}
		t.PossibleTypes = possible

		// A union with no remaining members cannot be rendered.
		if t.Kind == schema.TypeKindUnion && len(t.PossibleTypes) == 0 {
			delete(s.Types, t.Name)
			changed = true
		}
	}
	return changed
}

func cmdServe(args []string) error {
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	enableIntrospection := true
	doHeal := true
	logLevel := "info"
	otelEndpoint := ""
	otelService := "graphmend"
	var forwardHeaders stringListFlag
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Var(&forwardHeaders, "server.forward-header", "Forward HTTP header into resolver context")
	fs.Var(&corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.BoolVar(&enableIntrospection, "graphql.introspection", enableIntrospection, "Enable GraphQL introspection")
	fs.BoolVar(&doHeal, "graphql.heal", doHeal, "Heal the schema before serving")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	eventbus.Use(eventbus.New())
	log := logging.New(os.Stderr, logLevel)
	defer logging.Register(log)()

	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	s, err := loadSchema(fs.Args())
	if err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if doHeal {
		heal.Heal(s)
	}
	mock.Attach(s)
	if enableIntrospection {
		s = introspection.Extend(s)
	}

	sopts := []server.Option{server.WithTimeout(timeout)}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(forwardHeaders) > 0 {
		sopts = append(sopts, server.WithForwardHeaders(forwardHeaders...))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(s, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Info().Str("addr", addr).Msg("GraphQL server listening")
	return http.ListenAndServe(addr, mux)
}
