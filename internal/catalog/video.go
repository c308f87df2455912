package catalog

// Video formats allowed by the video schema.
var VideoFormats = []string{"DVD", "MP4", "AVI", "Blu-ray", "Other"}

func videoLayout() *Layout {
	return &Layout{
		kind: KindVideo,
		fields: []Field{
			{Name: "title", Label: "Title", Required: true, Type: "string"},
			{Name: "formats", Item: "format", Label: "Formats", Shape: Wrapped, Required: true, Values: VideoFormats, Type: "string"},
			{Name: "genres", Item: "genre", Label: "Genres", Shape: Wrapped, Type: "string"},
			{Name: "releasedate", Label: "Release date", Type: "date"},
			{Name: "label", Label: "Label", Type: "string"},
			{Name: "shop", Label: "Shop", Type: "string"},
		},
		config: FieldConfig{
			Type: KindVideo,
			Sortable: []SortField{
				{Name: "title", Field: "title", Label: "Title"},
				{Name: "format", Field: "formats", Label: "Format"},
			},
			Key:         "title",
			DefaultSort: "title",
		},
		schema: mustSchema(KindVideo),
	}
}
