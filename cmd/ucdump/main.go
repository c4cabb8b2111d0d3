// ucdump inspects, exports and seeds persisted usecode values.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/usecode/lib/runtime"
	"github.com/chazu/usecode/manifest"
	"github.com/chazu/usecode/vm"
	"github.com/chazu/usecode/vm/dist"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	configDir := flag.String("config", ".", "Directory to search for usecode.toml")
	dbPath := flag.String("db", "", "Value store path (overrides usecode.toml)")
	short := flag.Bool("short", false, "Abbreviate long arrays")
	cborOut := flag.String("cbor", "", "Write the selected values to this file as CBOR")
	set := flag.String("set", "", `Store a value: name=123 or name="text"`)
	verbose := flag.Int("v", -1, "Log verbosity (overrides usecode.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ucdump [options] [names...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints usecode values from the value store (all of them when no names are given).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ucdump                       # Print every stored value\n")
		fmt.Fprintf(os.Stderr, "  ucdump -short party gold     # Print selected values\n")
		fmt.Fprintf(os.Stderr, "  ucdump -cbor out.cbor        # Export everything as CBOR\n")
		fmt.Fprintf(os.Stderr, "  ucdump -set 'gold=100'       # Seed a value\n")
	}
	flag.Parse()

	m, err := manifest.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", manifest.FileName, err)
		os.Exit(1)
	}

	verbosity := 0
	path := "usecode.db"
	if m != nil {
		m.Apply()
		verbosity = m.Runtime.LogVerbosity
		path = m.StorePath()
	}
	if *verbose >= 0 {
		verbosity = *verbose
	}
	if *dbPath != "" {
		path = *dbPath
	}
	commonlog.Configure(verbosity, nil)

	store, err := runtime.OpenStore(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *set != "" {
		if err := setValue(store, *set); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	vals, err := selectValues(store, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *cborOut != "" {
		data, err := dist.MarshalValues(vals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(filepath.Clean(*cborOut), data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s = ", name)
		vals[name].Print(os.Stdout, *short)
		fmt.Println()
	}
}

// selectValues loads the named values, or every value when names is empty.
func selectValues(store *runtime.Store, names []string) (map[string]vm.Value, error) {
	if len(names) == 0 {
		vals, skipped, err := store.LoadAll()
		if err != nil {
			return nil, err
		}
		for _, name := range skipped {
			fmt.Fprintf(os.Stderr, "Warning: %s could not be restored\n", name)
		}
		return vals, nil
	}
	vals := make(map[string]vm.Value, len(names))
	for _, name := range names {
		v, err := store.Get(name)
		if err != nil {
			return nil, err
		}
		vals[name] = v
	}
	return vals, nil
}

// setValue parses name=literal and stores it. A quoted literal is a
// string; anything else must be an integer.
func setValue(store *runtime.Store, assign string) error {
	name, lit, ok := strings.Cut(assign, "=")
	if !ok || name == "" {
		return fmt.Errorf("-set wants name=value, got %q", assign)
	}
	var v vm.Value
	if s, err := strconv.Unquote(lit); err == nil {
		v = vm.FromString(s)
	} else {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return fmt.Errorf("-set %s: %q is neither an integer nor a quoted string", name, lit)
		}
		v = vm.FromInt(n)
	}
	return store.Put(name, v)
}
