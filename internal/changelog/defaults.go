package changelog

// Sort directions recognized by the "sort" option.
const (
	SortAscending  = "ASC"
	SortDescending = "DESC"
)

// DefaultConfiguration holds the values used for any option left empty.
var DefaultConfiguration = Configuration{
	Sort:          SortDescending,
	Template:      "${{CHANGELOG}}",
	PRTemplate:    "- ${{TITLE}}\n   - PR: #${{NUMBER}}",
	EmptyTemplate: "- no changes",
	Categories: []Category{
		{Title: "## 🚀 Features", Labels: []string{"feature"}},
		{Title: "## 🐛 Fixes", Labels: []string{"fix"}},
		{Title: "## 🧪 Tests", Labels: []string{"test"}},
	},
	IgnoreLabels:         []string{"ignore"},
	LabelExtractors:      []Rule{},
	Transformers:         []Rule{},
	ExcludeMergeBranches: []string{},
	MaxTagsToFetch:       200,
	MaxPullRequests:      200,
	MaxBackTrackTimeDays: 365,
}

// WithDefaults returns a copy of c where every empty option is replaced by its default.
func (c Configuration) WithDefaults() Configuration {
	d := DefaultConfiguration
	if c.Sort == "" {
		c.Sort = d.Sort
	}
	if c.Template == "" {
		c.Template = d.Template
	}
	if c.PRTemplate == "" {
		c.PRTemplate = d.PRTemplate
	}
	if c.EmptyTemplate == "" {
		c.EmptyTemplate = d.EmptyTemplate
	}
	if len(c.Categories) == 0 {
		c.Categories = d.Categories
	}
	if c.IgnoreLabels == nil {
		c.IgnoreLabels = d.IgnoreLabels
	}
	if c.LabelExtractors == nil {
		c.LabelExtractors = d.LabelExtractors
	}
	if c.Transformers == nil {
		c.Transformers = d.Transformers
	}
	if c.ExcludeMergeBranches == nil {
		c.ExcludeMergeBranches = d.ExcludeMergeBranches
	}
	if c.MaxTagsToFetch <= 0 {
		c.MaxTagsToFetch = d.MaxTagsToFetch
	}
	if c.MaxPullRequests <= 0 {
		c.MaxPullRequests = d.MaxPullRequests
	}
	if c.MaxBackTrackTimeDays <= 0 {
		c.MaxBackTrackTimeDays = d.MaxBackTrackTimeDays
	}
	return c
}
