// Package prompt loads the versioned prompt templates and fills them.
//
// Templates are data: YAML records embedded in the binary and overridable
// from a directory. A catalog is validated once at load and is read-only
// afterwards, so it is safe to share across goroutines.
package prompt

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/finchat/internal/model"
)

//go:embed templates/*.yaml
var embeddedTemplates embed.FS

// ErrInvalidCatalog is returned when the template set is incomplete or inconsistent.
var ErrInvalidCatalog = eris.New("invalid template catalog")

// Kind distinguishes answer templates from the two instruction templates.
type Kind string

const (
	KindAnswer         Kind = "answer"
	KindClassification Kind = "classification"
	KindExtraction     Kind = "extraction"
)

// Template is a named, versioned prompt body with declared placeholders.
type Template struct {
	ID       string         `yaml:"id" json:"id"`
	Kind     Kind           `yaml:"kind" json:"kind"`
	Category model.Category `yaml:"category,omitempty" json:"category,omitempty"`
	Tier     model.Tier     `yaml:"tier,omitempty" json:"tier,omitempty"`
	Version  string         `yaml:"version" json:"version"`
	Fields   []string       `yaml:"fields" json:"fields"`
	Body     string         `yaml:"body" json:"-"`
}

// categoryFields is the documented placeholder set of each answer category.
var categoryFields = map[model.Category][]string{
	model.CategoryAccounting: {"context", "question"},
	model.CategoryFinance:    {"resolved_corp_name", "financial_data", "question"},
	model.CategoryBusiness:   {"biz", "question"},
	model.CategoryHybrid:     {"acct", "biz", "fin", "question"},
	model.CategoryElse:       {"question"},
}

var kindFields = map[Kind][]string{
	KindClassification: {"question"},
	KindExtraction:     {"question", "default_years"},
}

// RequiredFields returns the placeholder set every template of category c declares.
func RequiredFields(c model.Category) []string {
	return slices.Clone(categoryFields[c])
}

// DefaultConstants are the load-time constants expanded in template bodies.
var DefaultConstants = map[string]string{
	"money_unit": "억원",
}

type answerKey struct {
	category model.Category
	tier     model.Tier
}

// Catalog is the validated, immutable set of templates.
type Catalog struct {
	answers        map[answerKey]*Template
	fallback       *Template
	classification *Template
	extraction     *Template
	all            []*Template
}

type loadOptions struct {
	constants map[string]string
}

// Option configures catalog loading.
type Option func(*loadOptions)

// WithConstants overrides load-time constants such as money_unit. Keys not
// given keep their DefaultConstants value.
func WithConstants(constants map[string]string) Option {
	return func(o *loadOptions) {
		for k, v := range constants {
			if v == "" {
				continue
			}
			o.constants[k] = v
		}
	}
}

// Default loads the templates embedded in the binary.
func Default(opts ...Option) (*Catalog, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, eris.Wrap(err, "prompt: open embedded templates")
	}
	return Load(sub, opts...)
}

// LoadDir loads templates from a directory on disk.
func LoadDir(dir string, opts ...Option) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "prompt: stat templates dir %s", dir)
	}
	if !info.IsDir() {
		return nil, eris.Errorf("prompt: %s is not a directory", dir)
	}
	return Load(os.DirFS(dir), opts...)
}

// Load reads every *.yaml / *.yml file at the root of fsys and validates
// the resulting catalog.
func Load(fsys fs.FS, opts ...Option) (*Catalog, error) {
	o := loadOptions{constants: make(map[string]string, len(DefaultConstants))}
	for k, v := range DefaultConstants {
		o.constants[k] = v
	}
	for _, opt := range opts {
		opt(&o)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, eris.Wrap(err, "prompt: glob templates")
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, eris.Wrap(ErrInvalidCatalog, "no template files found")
	}
	sort.Strings(files)

	var templates []*Template
	var problems []string
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, eris.Wrapf(err, "prompt: read %s", name)
		}

		var doc struct {
			Templates []*Template `yaml:"templates"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, eris.Wrapf(err, "prompt: parse %s", name)
		}

		for _, t := range doc.Templates {
			body, unknown := expandConstants(t.Body, o.constants)
			for _, u := range unknown {
				problems = append(problems, t.ID+": unknown constant ${"+u+"} in "+path.Base(name))
			}
			t.Body = strings.TrimRight(body, "\n")
			templates = append(templates, t)
		}
	}

	c, more := build(templates)
	problems = append(problems, more...)
	if len(problems) > 0 {
		return nil, eris.Wrapf(ErrInvalidCatalog, "%s", strings.Join(problems, "; "))
	}

	zap.L().Debug("prompt: catalog loaded",
		zap.Int("files", len(files)),
		zap.Int("templates", len(c.all)),
	)
	return c, nil
}

var constantPattern = regexp.MustCompile(`\$\{([a-z_]+)\}`)

func expandConstants(body string, constants map[string]string) (string, []string) {
	var unknown []string
	out := constantPattern.ReplaceAllStringFunc(body, func(m string) string {
		name := m[2 : len(m)-1]
		v, ok := constants[name]
		if !ok {
			unknown = append(unknown, name)
			return m
		}
		return v
	})
	return out, unknown
}

func build(templates []*Template) (*Catalog, []string) {
	c := &Catalog{answers: make(map[answerKey]*Template)}
	var problems []string
	ids := make(map[string]bool, len(templates))

	for _, t := range templates {
		if t.ID == "" {
			problems = append(problems, "template without id")
			continue
		}
		if ids[t.ID] {
			problems = append(problems, t.ID+": duplicate id")
			continue
		}
		ids[t.ID] = true

		if t.Version == "" {
			problems = append(problems, t.ID+": missing version")
		}
		problems = append(problems, checkFields(t)...)

		switch t.Kind {
		case KindAnswer:
			problems = append(problems, c.addAnswer(t)...)
		case KindClassification:
			if c.classification != nil {
				problems = append(problems, t.ID+": duplicate classification template")
				continue
			}
			c.classification = t
		case KindExtraction:
			if c.extraction != nil {
				problems = append(problems, t.ID+": duplicate extraction template")
				continue
			}
			c.extraction = t
		default:
			problems = append(problems, t.ID+": unknown kind "+string(t.Kind))
			continue
		}
		c.all = append(c.all, t)
	}

	// The table must be total.
	for _, cat := range model.AnswerCategories() {
		for _, tier := range model.AllTiers() {
			if _, ok := c.answers[answerKey{cat, tier}]; !ok {
				problems = append(problems, "missing template for "+string(cat)+"/"+tier.String())
			}
		}
	}
	if c.fallback == nil {
		problems = append(problems, "missing template for else")
	}
	if c.classification == nil {
		problems = append(problems, "missing classification template")
	}
	if c.extraction == nil {
		problems = append(problems, "missing extraction template")
	}

	sort.SliceStable(c.all, func(i, j int) bool { return c.all[i].ID < c.all[j].ID })
	return c, problems
}

func (c *Catalog) addAnswer(t *Template) []string {
	if !t.Category.Valid() {
		return []string{t.ID + ": unknown category " + string(t.Category)}
	}
	if !sameSet(t.Fields, categoryFields[t.Category]) {
		return []string{t.ID + ": fields " + strings.Join(t.Fields, ",") +
			" do not match " + string(t.Category) + " fields " + strings.Join(categoryFields[t.Category], ",")}
	}

	if t.Category.TierIndependent() {
		if t.Tier != 0 {
			return []string{t.ID + ": else template must not declare a tier"}
		}
		if c.fallback != nil {
			return []string{t.ID + ": duplicate else template"}
		}
		c.fallback = t
		return nil
	}

	if err := t.Tier.Validate(); err != nil {
		return []string{t.ID + ": " + err.Error()}
	}
	key := answerKey{t.Category, t.Tier}
	if prev, ok := c.answers[key]; ok {
		return []string{t.ID + ": duplicates " + prev.ID}
	}
	c.answers[key] = t
	return nil
}

func checkFields(t *Template) []string {
	var problems []string
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if seen[f] {
			problems = append(problems, t.ID+": field "+f+" declared twice")
		}
		seen[f] = true
	}

	markers := Placeholders(t.Body)
	for _, m := range markers {
		if !seen[m] {
			problems = append(problems, t.ID+": body uses undeclared placeholder {"+m+"}")
		}
	}
	for f := range seen {
		if !slices.Contains(markers, f) {
			problems = append(problems, t.ID+": declared field "+f+" not used in body")
		}
	}

	if want, ok := kindFields[t.Kind]; ok && !sameSet(t.Fields, want) {
		problems = append(problems, t.ID+": "+string(t.Kind)+" template must declare "+strings.Join(want, ","))
	}
	return problems
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}

// Select returns the answer template for (category, tier). The else
// template is returned for every valid tier.
func (c *Catalog) Select(category model.Category, tier model.Tier) (*Template, error) {
	if !category.Valid() {
		return nil, eris.Wrapf(model.ErrUnknownCategory, "category %q", string(category))
	}
	if err := tier.Validate(); err != nil {
		return nil, err
	}
	if category.TierIndependent() {
		return c.fallback, nil
	}
	return c.answers[answerKey{category, tier}], nil
}

// Classification returns the classification instruction template.
func (c *Catalog) Classification() *Template {
	return c.classification
}

// Extraction returns the company/year extraction instruction template.
func (c *Catalog) Extraction() *Template {
	return c.extraction
}

// Templates returns every template ordered by id.
func (c *Catalog) Templates() []*Template {
	return slices.Clone(c.all)
}
