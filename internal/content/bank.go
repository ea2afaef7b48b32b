package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/abhisek/talkie/internal/mode"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

//go:embed pack.json
var defaultPack []byte

// supportedMajor is the only pack format major version understood.
const supportedMajor = "v1"

// Item is one piece of practice content.
type Item struct {
	ID          string          `json:"id"`
	Category    Category        `json:"category"`
	Difficulty  mode.Difficulty `json:"difficulty"`
	Text        string          `json:"text"`
	Hint        string          `json:"hint,omitempty"`
	Scenario    string          `json:"scenario,omitempty"`
	Options     []string        `json:"options,omitempty"`
	Answer      int             `json:"answer,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
}

// Key identifies the item in anti-repetition histories.
func (it Item) Key() string {
	if it.ID != "" {
		return it.ID
	}
	return strings.ToLower(it.Text)
}

// Pack is the on-disk content format.
type Pack struct {
	Version string `json:"version"`
	Name    string `json:"name,omitempty"`
	Items   []Item `json:"items"`
}

// Bank indexes items by category and difficulty.
type Bank struct {
	Version string
	Name    string
	pools   map[Category]map[mode.Difficulty][]Item
	byID    map[string]Item
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the bank built from the embedded pack.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := Parse(defaultPack)
		if err != nil {
			panic(fmt.Sprintf("content: embedded pack is invalid: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}

// Load reads and validates a pack file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content pack: %w", err)
	}
	return Parse(data)
}

// Parse validates raw pack JSON against the pack schema, checks the
// version, and builds a Bank.
func Parse(data []byte) (*Bank, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile pack schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode content pack: %w", err)
	}
	if !semver.IsValid(p.Version) {
		return nil, fmt.Errorf("content pack version %q is not a semantic version", p.Version)
	}
	if semver.Major(p.Version) != supportedMajor {
		return nil, fmt.Errorf("content pack version %s unsupported, need %s.x", p.Version, supportedMajor)
	}
	return newBank(p)
}

func newBank(p Pack) (*Bank, error) {
	b := &Bank{
		Version: p.Version,
		Name:    p.Name,
		pools:   make(map[Category]map[mode.Difficulty][]Item),
		byID:    make(map[string]Item),
	}
	counts := make(map[string]int)
	for i, it := range p.Items {
		it.Text = strings.TrimSpace(it.Text)
		if it.Category == Grammar && (it.Answer < 0 || it.Answer >= len(it.Options)) {
			return nil, fmt.Errorf("item %d: answer index %d out of range for %d options", i, it.Answer, len(it.Options))
		}
		if it.ID == "" {
			prefix := string(it.Category) + "-" + string(it.Difficulty)
			counts[prefix]++
			it.ID = fmt.Sprintf("%s-%d", prefix, counts[prefix])
		}
		if _, dup := b.byID[it.ID]; dup {
			return nil, fmt.Errorf("item %d: duplicate id %q", i, it.ID)
		}
		b.byID[it.ID] = it
		if b.pools[it.Category] == nil {
			b.pools[it.Category] = make(map[mode.Difficulty][]Item)
		}
		b.pools[it.Category][it.Difficulty] = append(b.pools[it.Category][it.Difficulty], it)
	}
	return b, nil
}

// Pool returns the items for a category at a difficulty. When that
// difficulty has no items, the other difficulties are used, easiest first.
func (b *Bank) Pool(c Category, d mode.Difficulty) []Item {
	byDiff := b.pools[c]
	if items := byDiff[d]; len(items) > 0 {
		return items
	}
	var out []Item
	for _, alt := range mode.AllDifficulties() {
		out = append(out, byDiff[alt]...)
	}
	return out
}

// Item looks up an item by id.
func (b *Bank) Item(id string) (Item, bool) {
	it, ok := b.byID[id]
	return it, ok
}

// Count returns the number of items in a category across difficulties.
func (b *Bank) Count(c Category) int {
	n := 0
	for _, items := range b.pools[c] {
		n += len(items)
	}
	return n
}
