package resource

// Descriptor describes how an admin client renders and manages one resource.
type Descriptor struct {
	Name        string     `json:"name"`
	Endpoint    string     `json:"endpoint"`
	Navigation  Navigation `json:"navigation"`
	Form        []Section  `json:"form"`
	Table       Table      `json:"table"`
	Pages       []Page     `json:"pages"`
	Relations   []string   `json:"relations"`
	RecordTitle string     `json:"record_title"`
}

type Navigation struct {
	Group string `json:"group"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Sort  int    `json:"sort"`
}

type Section struct {
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	Columns     int     `json:"columns"`
	Collapsed   bool    `json:"collapsed"`
	Fields      []Field `json:"fields"`
}

type FieldKind string

const (
	KindText        FieldKind = "text"
	KindSelect      FieldKind = "select"
	KindToggle      FieldKind = "toggle"
	KindTextarea    FieldKind = "textarea"
	KindPlaceholder FieldKind = "placeholder"
)

type Field struct {
	Name         string        `json:"name"`
	Kind         FieldKind     `json:"kind"`
	Label        string        `json:"label"`
	Placeholder  string        `json:"placeholder,omitempty"`
	Required     bool          `json:"required"`
	MaxLength    int           `json:"max_length,omitempty"`
	Unique       bool          `json:"unique"`
	Numeric      bool          `json:"numeric"`
	Prefix       string        `json:"prefix,omitempty"`
	MinValue     *int          `json:"min_value,omitempty"`
	Pattern      string        `json:"pattern,omitempty"`
	Default      any           `json:"default,omitempty"`
	ColumnSpan   string        `json:"column_span,omitempty"` // "2" or "full"
	Rows         int           `json:"rows,omitempty"`
	Relationship *Relationship `json:"relationship,omitempty"`
	// Only shown for an existing record.
	RecordOnly bool `json:"record_only"`
}

// Relationship points a select input at another resource.
type Relationship struct {
	Resource    string `json:"resource"`
	TitleColumn string `json:"title_column"`
	Searchable  bool   `json:"searchable"`
	Preload     bool   `json:"preload"`
}

type Table struct {
	Columns     []Column `json:"columns"`
	DefaultSort Sort     `json:"default_sort"`
	Filters     []Filter `json:"filters"`
	Actions     []string `json:"actions"`
	BulkActions []string `json:"bulk_actions"`
}

type ColumnFormat string

const (
	FormatText     ColumnFormat = "text"
	FormatDateTime ColumnFormat = "datetime"
	FormatSince    ColumnFormat = "since"
	FormatMoney    ColumnFormat = "money"
	FormatBoolean  ColumnFormat = "boolean"
)

type Column struct {
	Name              string       `json:"name"`
	Label             string       `json:"label"`
	Format            ColumnFormat `json:"format"`
	DateFormat        string       `json:"date_format,omitempty"`
	Currency          string       `json:"currency,omitempty"`
	Searchable        bool         `json:"searchable"`
	Sortable          bool         `json:"sortable"`
	Toggleable        bool         `json:"toggleable"`
	HiddenByDefault   bool         `json:"hidden_by_default"`
	Copyable          bool         `json:"copyable"`
	Badge             bool         `json:"badge"`
	DescriptionColumn string       `json:"description_column,omitempty"`
}

type Sort struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

type FilterKind string

const (
	FilterTernary FilterKind = "ternary"
	FilterToggle  FilterKind = "toggle"
)

// Filter maps to a query parameter of the list endpoint.
type Filter struct {
	Name        string     `json:"name"`
	Kind        FilterKind `json:"kind"`
	Label       string     `json:"label"`
	Placeholder string     `json:"placeholder,omitempty"`
	TrueLabel   string     `json:"true_label,omitempty"`
	FalseLabel  string     `json:"false_label,omitempty"`
	Query       string     `json:"query"`
}

type Page struct {
	Name  string `json:"name"`
	Route string `json:"route"`
}

func standardPages() []Page {
	return []Page{
		{Name: "index", Route: "/"},
		{Name: "create", Route: "/create"},
		{Name: "view", Route: "/{record}"},
		{Name: "edit", Route: "/{record}/edit"},
	}
}

func timestampPlaceholders() []Field {
	return []Field{
		{Name: "created_at", Kind: KindPlaceholder, Label: "Created", RecordOnly: true},
		{Name: "updated_at", Kind: KindPlaceholder, Label: "Last Updated", RecordOnly: true},
	}
}

func intPtr(v int) *int { return &v }
