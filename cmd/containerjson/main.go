package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/containers"
	"github.com/reoring/containerjson/databind"
)

const (
	envSingle = "CONTAINERJSON_ACCEPT_SINGLE_VALUE_AS_ARRAY"
	envConfig = "CONTAINERJSON_CONFIG"
)

var knownTypes = map[string]reflect.Type{
	"list<string>":            reflect.TypeFor[collect.ImmutableList[string]](),
	"list<int>":               reflect.TypeFor[collect.ImmutableList[int]](),
	"list<float64>":           reflect.TypeFor[collect.ImmutableList[float64]](),
	"set<string>":             reflect.TypeFor[collect.ImmutableSet[string]](),
	"set<int>":                reflect.TypeFor[collect.ImmutableSet[int]](),
	"set<float64>":            reflect.TypeFor[collect.ImmutableSet[float64]](),
	"sortedset<string>":       reflect.TypeFor[collect.ImmutableSortedSet[string]](),
	"sortedset<int>":          reflect.TypeFor[collect.ImmutableSortedSet[int]](),
	"sortedset<float64>":      reflect.TypeFor[collect.ImmutableSortedSet[float64]](),
	"multiset<string>":        reflect.TypeFor[collect.Multiset[string]](),
	"multiset<int>":           reflect.TypeFor[collect.Multiset[int]](),
	"multiset<float64>":       reflect.TypeFor[collect.Multiset[float64]](),
	"sortedmultiset<string>":  reflect.TypeFor[collect.SortedMultiset[string]](),
	"sortedmultiset<int>":     reflect.TypeFor[collect.SortedMultiset[int]](),
	"sortedmultiset<float64>": reflect.TypeFor[collect.SortedMultiset[float64]](),
	"rangeset<int>":           reflect.TypeFor[collect.RangeSet[int]](),
	"rangeset<float64>":       reflect.TypeFor[collect.RangeSet[float64]](),
	"rangeset<string>":        reflect.TypeFor[collect.RangeSet[string]](),
	"hostport":                reflect.TypeFor[collect.HostAndPort](),
	"chars":                   reflect.TypeFor[collect.Chars](),
	"ints":                    reflect.TypeFor[collect.Ints](),
	"longs":                   reflect.TypeFor[collect.Longs](),
	"doubles":                 reflect.TypeFor[collect.Doubles](),
	"booleans":                reflect.TypeFor[collect.Booleans](),
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	// A missing .env is fine; explicit environment variables still apply.
	_ = godotenv.Load()

	sub := os.Args[1]
	switch sub {
	case "decode":
		decodeCmd(os.Args[2:])
	case "types":
		typesCmd()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "containerjson CLI\n\nUsage:\n  containerjson decode -type list<string> [-single] [-config cfg.yaml] [-in file] [-yaml] [-format json|yaml] [-dump] [-v]\n  containerjson types\n\nEnvironment (also read from .env):\n  "+envSingle+"  accept a single value as a one-element container\n  "+envConfig+"  default for -config")
}

func typesCmd() {
	names := make([]string, 0, len(knownTypes))
	for name := range knownTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("%-24s %s\n", name, databind.TypeOf(knownTypes[name]))
	}
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var typeName, configPath, in, format string
	var single, yamlIn, dump, verbose bool
	fs.StringVar(&typeName, "type", "", "target type (see `containerjson types`)")
	fs.StringVar(&configPath, "config", os.Getenv(envConfig), "YAML binding configuration")
	fs.StringVar(&in, "in", "", "input file (default stdin)")
	fs.StringVar(&format, "format", "json", "output format: json or yaml")
	fs.BoolVar(&single, "single", false, "accept a single value as a one-element container")
	fs.BoolVar(&yamlIn, "yaml", false, "read the input as YAML")
	fs.BoolVar(&dump, "dump", false, "print the decoded Go value")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if typeName == "" {
		fs.Usage()
		os.Exit(2)
	}
	rt, ok := knownTypes[typeName]
	if !ok {
		fatalf("unknown type %q; run `containerjson types`", typeName)
	}

	logf := func(format string, a ...any) {
		if verbose {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}
	}

	cfg := containerjson.Config{}
	if configPath != "" {
		var err error
		if cfg, err = containerjson.LoadConfigFile(configPath); err != nil {
			fatalf("%v", err)
		}
		logf("loaded config: %s", configPath)
	}
	if v := os.Getenv(envSingle); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			fatalf("%s: %v", envSingle, err)
		}
		if on {
			cfg = cfg.Enable(containerjson.AcceptSingleValueAsArray)
		}
	}
	if single {
		cfg = cfg.Enable(containerjson.AcceptSingleValueAsArray)
	}
	if verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	logf("decode: type=%s features=%b driver=%s", typeName, cfg.Features, containerjson.CurrentDriver().Name())

	data, err := readInput(in)
	if err != nil {
		fatalf("read input: %v", err)
	}
	src := containerjson.JSONBytes(data)
	if yamlIn {
		src = containerjson.YAMLBytes(data)
	}

	m := databind.NewMapper(cfg, containers.NewModule())
	v, err := m.ReadValue(context.Background(), src, databind.TypeOf(rt))
	if err != nil {
		if iss, ok := containerjson.AsIssues(err); ok {
			for _, it := range iss {
				fmt.Fprintf(os.Stderr, "%s at %s: %s\n", it.Code, it.Path, it.Hint)
			}
			os.Exit(1)
		}
		fatalf("decode: %v", err)
	}
	if dump {
		spew.Fdump(os.Stderr, v)
	}

	out, err := m.Marshal(v)
	if err != nil {
		fatalf("encode: %v", err)
	}
	switch format {
	case "json":
	case "yaml":
		if out, err = jsonToYAML(out); err != nil {
			fatalf("encode: %v", err)
		}
	default:
		fatalf("unknown format %q", format)
	}
	os.Stdout.Write(out)
	if !bytes.HasSuffix(out, []byte("\n")) {
		fmt.Println()
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// jsonToYAML re-encodes a JSON document as YAML; JSON is valid YAML input.
func jsonToYAML(b []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

// clearStyle drops the flow style inherited from JSON so the output is block YAML.
func clearStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "containerjson: "+format+"\n", a...)
	os.Exit(1)
}
