package catalog

// Music formats allowed by the music schema.
var MusicFormats = []string{"CD", "Vinyl", "Cassette", "MP3", "FLAC", "Other"}

func musicLayout() *Layout {
	return &Layout{
		kind: KindMusic,
		fields: []Field{
			{Name: "title", Label: "Title", Required: true, Type: "string"},
			{Name: "artist", Label: "Artist", Required: true, Type: "string"},
			{Name: "formats", Item: "format", Label: "Formats", Shape: Wrapped, Required: true, Values: MusicFormats, Type: "string"},
			{Name: "genres", Item: "genre", Label: "Genres", Shape: Wrapped, Type: "string"},
			{Name: "tracks", Item: "track", Label: "Tracks", Shape: Wrapped, Type: "string"},
			{Name: "releasedate", Label: "Release date", Type: "date"},
			{Name: "label", Label: "Label", Type: "string"},
			{Name: "shop", Label: "Shop", Type: "string"},
		},
		config: FieldConfig{
			Type: KindMusic,
			Sortable: []SortField{
				{Name: "title", Field: "title", Label: "Title"},
				{Name: "artist", Field: "artist", Label: "Artist"},
				{Name: "format", Field: "formats", Label: "Format"},
				{Name: "genre", Field: "genres", Label: "Genre"},
			},
			Key:         "title",
			DefaultSort: "title",
		},
		schema: mustSchema(KindMusic),
	}
}
