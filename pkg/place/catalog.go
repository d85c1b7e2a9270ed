package place

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type Category struct {
	Name  string
	Count int
}

// Catalog is the read-only set of places the site offers, in catalog order.
type Catalog struct {
	places []Place
	byId   map[int]Place
}

type catalogFile struct {
	Places []Place `yaml:"places"`
}

// LoadCatalog reads the catalog at path, or the built-in catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog %s: %w", path, err)
	}
	catalog, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	log.Infof("Loaded %d places from %s", len(catalog.places), path)
	return catalog, nil
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("could not parse catalog: %w", err)
	}
	return NewCatalog(file.Places)
}

// NewCatalog builds a catalog, rejecting invalid places and duplicate ids.
func NewCatalog(places []Place) (*Catalog, error) {
	byId := make(map[int]Place, len(places))
	for _, p := range places {
		p.Category = strings.ToLower(strings.TrimSpace(p.Category))
		if err := Validate(p); err != nil {
			return nil, err
		}
		if _, exists := byId[p.Id]; exists {
			return nil, fmt.Errorf("duplicate place id %d", p.Id)
		}
		byId[p.Id] = p
	}
	ordered := make([]Place, 0, len(places))
	for _, p := range places {
		ordered = append(ordered, byId[p.Id])
	}
	return &Catalog{places: ordered, byId: byId}, nil
}

func (c *Catalog) All() []Place {
	return append([]Place(nil), c.places...)
}

func (c *Catalog) Get(id int) (Place, error) {
	p, ok := c.byId[id]
	if !ok {
		return Place{}, ErrPlaceNotFound
	}
	return p, nil
}

// ByCategory filters the catalog by category; an empty category or "all" returns every place.
func (c *Catalog) ByCategory(category string) []Place {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == "all" {
		return c.All()
	}
	var result []Place
	for _, p := range c.places {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// Categories lists the categories present in the catalog, sorted by name.
func (c *Catalog) Categories() []Category {
	counts := map[string]int{}
	for _, p := range c.places {
		if p.Category != "" {
			counts[p.Category]++
		}
	}
	categories := make([]Category, 0, len(counts))
	for name, count := range counts {
		categories = append(categories, Category{Name: name, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories
}
