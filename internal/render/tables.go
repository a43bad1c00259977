package render

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed assets
var assets embed.FS

const flagBase = 127397

// ErrInvalidTable reports a lookup table with an unexpected shape.
var ErrInvalidTable = errors.New("invalid lookup table")

// TablePaths points at user supplied lookup tables. Empty paths use the bundled tables.
type TablePaths struct {
	Experience string
	People     string
	Index      string
}

// Threshold maps a minimum competition count to an emoji.
type Threshold struct {
	Min   int
	Emoji string
}

// Tables holds the emoji lookup tables used on tags.
type Tables struct {
	Experience []Threshold
	People     map[string]string
	Index      []string
}

// LoadTables reads the three lookup tables. Files may be JSON or YAML.
func LoadTables(paths TablePaths) (Tables, error) {
	var out Tables

	node, err := loadNode(paths.Experience, "assets/experience_emoji.json")
	if err != nil {
		return Tables{}, err
	}
	if out.Experience, err = parseThresholds(node); err != nil {
		return Tables{}, fmt.Errorf("experience table: %w", err)
	}

	node, err = loadNode(paths.People, "assets/people_emoji.json")
	if err != nil {
		return Tables{}, err
	}
	if out.People, err = parsePeople(node); err != nil {
		return Tables{}, fmt.Errorf("people table: %w", err)
	}

	node, err = loadNode(paths.Index, "assets/index_emoji.json")
	if err != nil {
		return Tables{}, err
	}
	if out.Index, err = parseValues(node); err != nil {
		return Tables{}, fmt.Errorf("index table: %w", err)
	}
	return out, nil
}

// ExperienceEmoji returns the emoji of the last threshold not above count, in file order.
func (t Tables) ExperienceEmoji(count int) string {
	emoji := ""
	for _, th := range t.Experience {
		if count >= th.Min {
			emoji = th.Emoji
		}
	}
	return emoji
}

// IndexEmoji picks an emoji by roster index modulo the table size.
func (t Tables) IndexEmoji(index int) string {
	if index < 0 || len(t.Index) == 0 {
		return ""
	}
	return t.Index[index%len(t.Index)]
}

// PersonEmoji returns the emoji assigned to a WCA id.
func (t Tables) PersonEmoji(wcaID string) string {
	if wcaID == "" {
		return ""
	}
	return t.People[wcaID]
}

// FlagEmoji converts an ISO2 code into regional indicator symbols.
func FlagEmoji(iso2 string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(iso2)) {
		b.WriteRune(rune(flagBase) + r)
	}
	return b.String()
}

func loadNode(path, fallback string) (*yaml.Node, error) {
	var (
		data []byte
		err  error
	)
	if strings.TrimSpace(path) == "" {
		data, err = assets.ReadFile(fallback)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read lookup table: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode lookup table %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode}, nil
	}
	return doc.Content[0], nil
}

func parseThresholds(node *yaml.Node) ([]Threshold, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected mapping", ErrInvalidTable)
	}
	out := make([]Threshold, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		minCount, err := strconv.Atoi(strings.TrimSpace(key.Value))
		if err != nil {
			return nil, fmt.Errorf("%w: threshold %q is not an integer", ErrInvalidTable, key.Value)
		}
		out = append(out, Threshold{Min: minCount, Emoji: value.Value})
	}
	return out, nil
}

func parsePeople(node *yaml.Node) (map[string]string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected mapping", ErrInvalidTable)
	}
	out := make(map[string]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out[node.Content[i].Value] = node.Content[i+1].Value
	}
	return out, nil
}

// parseValues accepts a list or the values of a mapping, in order.
func parseValues(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			out = append(out, item.Value)
		}
		return out, nil
	case yaml.MappingNode:
		out := make([]string, 0, len(node.Content)/2)
		for i := 1; i < len(node.Content); i += 2 {
			out = append(out, node.Content[i].Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected list or mapping", ErrInvalidTable)
	}
}
