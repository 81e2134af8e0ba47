package roster

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/troxeldj/greek-god-arena/pkg/logger"
)

//go:embed roster.yaml
var defaultRoster []byte

// document mirrors the roster file layout.
type document struct {
	Contestants []rawContestant `koanf:"contestants"`
}

type rawContestant struct {
	ID         string         `koanf:"id"`
	Name       string         `koanf:"name"`
	Image      string         `koanf:"image"`
	Attributes map[string]any `koanf:"attributes"`
}

// embedded serves the built-in roster to koanf.
type embedded []byte

func (e embedded) ReadBytes() ([]byte, error) { return e, nil }

func (e embedded) Read() (map[string]any, error) {
	return nil, errors.New("embedded roster provider does not support Read")
}

// Load reads the roster at path, or the embedded roster when path is empty.
// Skipped entries are logged through log when it is not nil.
func Load(ctx context.Context, path string, log logger.Logger) (*Roster, error) {
	var provider koanf.Provider = embedded(defaultRoster)
	source := "embedded"
	if path != "" {
		provider = file.Provider(path)
		source = path
	}

	r, skipped, err := load(provider)
	LogSkipped(ctx, log, skipped)
	if err != nil {
		return nil, fmt.Errorf("load roster %s: %w", source, err)
	}
	if log != nil {
		log.Info(ctx, "roster loaded",
			logger.String("source", source),
			logger.Int("contestants", r.Len()),
			logger.Int("skipped", len(skipped)),
		)
	}
	return r, nil
}

// Parse builds a Roster from YAML bytes.
func Parse(data []byte) (*Roster, []Skipped, error) {
	return load(embedded(data))
}

func load(p koanf.Provider) (*Roster, []Skipped, error) {
	k := koanf.New(".")
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, nil, err
	}
	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, nil, err
	}

	var (
		skipped []Skipped
		entries = make([]Contestant, 0, len(doc.Contestants))
		origin  = make([]int, 0, len(doc.Contestants))
	)
	for i, raw := range doc.Contestants {
		c, err := raw.contestant()
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, ID: raw.ID, Err: err})
			continue
		}
		entries = append(entries, c)
		origin = append(origin, i)
	}

	r, rejected, err := New(entries)
	for _, s := range rejected {
		s.Index = origin[s.Index]
		skipped = append(skipped, s)
	}
	return r, skipped, err
}

func (raw rawContestant) contestant() (Contestant, error) {
	c := Contestant{
		ID:         raw.ID,
		Name:       raw.Name,
		Image:      raw.Image,
		Attributes: make(map[string]float64, len(raw.Attributes)),
	}
	for name, v := range raw.Attributes {
		f, ok := toFloat(v)
		if !ok {
			return Contestant{}, fmt.Errorf("%w: %s: attribute %s is not a number", ErrInvalidContestant, raw.ID, name)
		}
		c.Attributes[name] = f
	}
	return c, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
