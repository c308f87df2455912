package catalog

// Book formats allowed by the book schema.
var BookFormats = []string{"Hardback", "Paperback", "eBook", "Other"}

// YesNo is the enumeration of "finished" fields.
var YesNo = []string{"Yes", "No"}

func bookLayout() *Layout {
	return &Layout{
		kind: KindBook,
		fields: []Field{
			{Name: "title", Label: "Title", Required: true, Type: "string"},
			{Name: "authors", Item: "author", Label: "Authors", Shape: Wrapped, Required: true, Type: "string"},
			{Name: "category", Label: "Category", Required: true, Type: "string"},
			{Name: "formats", Item: "format", Label: "Formats", Shape: Wrapped, Required: true, Values: BookFormats, Type: "string"},
			{Name: "isbn", Label: "ISBN", Required: true, Type: "integer"},
			{Name: "publicationdate", Label: "Publication date", Type: "date"},
			{Name: "publisher", Label: "Publisher", Type: "string"},
			{Name: "edition", Label: "Edition", Type: "integer"},
			{Name: "pagenumber", Label: "Pages", Type: "integer"},
			{Name: "lastpageread", Label: "Last page read", Type: "integer"},
			{Name: "shop", Label: "Shop", Type: "string"},
			{Name: "finished", Label: "Finished", Required: true, Values: YesNo, Type: "string"},
		},
		config: FieldConfig{
			Type: KindBook,
			Sortable: []SortField{
				{Name: "title", Field: "title", Label: "Title"},
				{Name: "author", Field: "authors", Label: "Author"},
				{Name: "category", Field: "category", Label: "Category"},
				{Name: "format", Field: "formats", Label: "Format"},
				{Name: "isbn", Field: "isbn", Label: "ISBN"},
				{Name: "finished", Field: "finished", Label: "Finished"},
			},
			Key:         "isbn",
			DefaultSort: "title",
		},
		schema: mustSchema(KindBook),
	}
}
