package catalog

// Installer systems allowed by the game schema.
var Systems = []string{"Linux", "Mac", "Windows", "Other"}

// InstallerFields declares the children of a game installer.
var InstallerFields = []Field{
	{Name: "system", Label: "System", Required: true, Values: Systems, Type: "string"},
	{Name: "lastupdated", Label: "Last updated", Type: "date"},
	{Name: "filename", Label: "Filenames", Shape: Repeated, Required: true, Type: "string"},
}

func gameLayout() *Layout {
	return &Layout{
		kind: KindGame,
		fields: []Field{
			{Name: "title", Label: "Title", Required: true, Type: "string"},
			{Name: "shop", Label: "Shop", Required: true, Type: "string"},
			{Name: "finished", Label: "Finished", Required: true, Values: YesNo, Type: "string"},
			{Name: "installer", Label: "Installers", Shape: Group, Fields: InstallerFields},
		},
		config: FieldConfig{
			Type: KindGame,
			Sortable: []SortField{
				{Name: "title", Field: "title", Label: "Title"},
				{Name: "shop", Field: "shop", Label: "Shop"},
				{Name: "finished", Field: "finished", Label: "Finished"},
			},
			Key:         "title",
			DefaultSort: "title",
		},
		schema: mustSchema(KindGame),
	}
}
