package clumper

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/signadot/recs/keyspec"
)

// Constructor builds a Clumper from the positional arguments of a spec.
type Constructor func(cache *keyspec.Cache, args ...string) (Clumper, error)

// Entry describes a named clumper.
type Entry struct {
	Name      string
	Aliases   []string
	ArgCounts []int
	Short     string
	Long      string
	New       Constructor
}

func (e *Entry) names() []string {
	return append([]string{e.Name}, e.Aliases...)
}

// Registry maps clumper names and aliases to entries.
type Registry struct {
	mu sync.RWMutex
	d  map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{d: map[string]*Entry{}}
}

// Default holds the built in clumpers.
var Default = NewRegistry()

func init() {
	for _, e := range []*Entry{
		keyEntry(),
		keyLRUEntry(),
		keyPerfectEntry(),
		cubeKeyPerfectEntry(),
		windowEntry(),
	} {
		if err := Default.Register(e); err != nil {
			panic(err)
		}
	}
}

// Register adds e under its name and aliases.
func (r *Registry) Register(e *Entry) error {
	names := e.names()
	for _, name := range names {
		if name == "" || strings.Contains(name, ",") {
			return fmt.Errorf("clumper name %q must be non-empty and must not contain ','", name)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, present := r.d[name]; present {
			return fmt.Errorf("%s: %w", name, ErrEntryExists)
		}
	}
	for _, name := range names {
		r.d[name] = e
	}
	return nil
}

func (r *Registry) Lookup(name string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.d[name]
}

// Names returns every registered name and alias, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]string, 0, len(r.d))
	for name := range r.d {
		res = append(res, name)
	}
	slices.Sort(res)
	return res
}

// Parse builds the clumper described by spec, "name,arg1,arg2,...".
func (r *Registry) Parse(cache *keyspec.Cache, spec string) (Clumper, error) {
	parts := strings.Split(spec, ",")
	if parts[0] == "" {
		return nil, fmt.Errorf("%w spec: %s", ErrBadClumper, spec)
	}
	name, args := parts[0], parts[1:]
	e := r.Lookup(name)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadClumper, name)
	}
	if !slices.Contains(e.ArgCounts, len(args)) {
		counts := make([]string, len(e.ArgCounts))
		for i, n := range e.ArgCounts {
			counts[i] = strconv.Itoa(n)
		}
		return nil, fmt.Errorf("%w: wrong number of arguments for clumper %s: expected %s, got %d\n%s",
			ErrBadClumper, name, strings.Join(counts, " or "), len(args), e.Long)
	}
	return e.New(cache, args...)
}

// List renders one line per entry, "names: short usage", each line
// starting with prefix.
func (r *Registry) List(prefix string) string {
	var (
		entries []*Entry
		byEntry = map[*Entry][]string{}
	)
	for _, name := range r.Names() {
		e := r.Lookup(name)
		if _, ok := byEntry[e]; !ok {
			entries = append(entries, e)
		}
		byEntry[e] = append(byEntry[e], name)
	}
	sb := &strings.Builder{}
	for _, e := range entries {
		fmt.Fprintf(sb, "%s%s: %s\n", prefix, strings.Join(byEntry[e], ", "), e.Short)
	}
	return sb.String()
}

// Show returns the long usage of name.
func (r *Registry) Show(name string) string {
	e := r.Lookup(name)
	if e == nil {
		return fmt.Sprintf("%s: %s\n", ErrBadClumper, name)
	}
	return e.Long
}

// Parse builds a clumper from spec using Default.
func Parse(cache *keyspec.Cache, spec string) (Clumper, error) {
	return Default.Parse(cache, spec)
}

func parseSize(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s size must be a positive integer, got %q", ErrBadClumper, name, arg)
	}
	return n, nil
}
