package filterbox

// FormData is the slice configuration a host stores for a filter box.
type FormData struct {
	SliceID          int      `json:"slice_id,omitempty"`
	Groupby          []string `json:"groupby"`
	InstantFiltering *bool    `json:"instant_filtering,omitempty"`
}

// Datasource carries the column metadata used for labels.
type Datasource struct {
	VerboseMap map[string]string `json:"verbose_map,omitempty"`
}

// Props is the widget configuration derived from host inputs.
type Props struct {
	Fields           []FilterField
	Choices          ChoiceSet
	InstantFiltering bool
	InitialFilters   map[string]any
}

// TransformProps derives widget props from the slice form data, the
// datasource, the host's persisted filters and the query payload data.
// Field labels come from the datasource verbose names, falling back to the
// column name. Choice keys not listed in Groupby are ignored when Groupby is
// set. Instant filtering defaults to true.
func TransformProps(form FormData, datasource Datasource, filters map[string]any, payload map[string]any) (Props, error) {
	fields := make([]FilterField, 0, len(form.Groupby))
	for _, key := range form.Groupby {
		label := datasource.VerboseMap[key]
		if label == "" {
			label = key
		}
		fields = append(fields, FilterField{Key: key, Label: label})
	}

	choices := ChoiceSet{}
	if payload != nil {
		decoded, err := DecodeChoiceSet(payload, form.Groupby...)
		if err != nil {
			return Props{}, err
		}
		choices = decoded
	}

	instant := true
	if form.InstantFiltering != nil {
		instant = *form.InstantFiltering
	}
	if filters == nil {
		filters = map[string]any{}
	}

	return Props{
		Fields:           fields,
		Choices:          choices,
		InstantFiltering: instant,
		InitialFilters:   filters,
	}, nil
}

// Options returns the widget options matching p.
func (p Props) Options() []Option {
	return []Option{
		WithFields(p.Fields...),
		WithInstantFiltering(p.InstantFiltering),
		WithInitialFilters(p.InitialFilters),
	}
}
