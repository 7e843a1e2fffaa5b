package filterbox

import (
	"context"
	"time"
)

// FieldView is the render-ready state of one filter field.
type FieldView struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Selected Value           `json:"selected"`
	Options  []DisplayOption `json:"options"`
}

// View is everything a host needs to draw the filter box.
type View struct {
	WidgetID     string      `json:"widget_id"`
	Fields       []FieldView `json:"fields"`
	ShowApply    bool        `json:"show_apply"`
	ApplyEnabled bool        `json:"apply_enabled"`
}

// View runs the choice mutator, reconciles the result against the current
// selections and prepares one FieldView per configured field. Without
// configured fields every key in choices is shown, sorted. A mutator failure
// is logged and the supplied choices are used unchanged.
func (w *Widget) View(_ context.Context, choices ChoiceSet) View {
	selections := w.Selections()

	if w.mutator != nil {
		start := time.Now()
		mutated, err := w.mutator.MutateSet(choices, selections)
		w.logger.LogEvent(LogEvent{
			Op:       OpMutate,
			WidgetID: w.id,
			Count:    len(mutated),
			Duration: time.Since(start),
			Err:      err,
		})
		if mutated != nil {
			choices = mutated
		}
	}

	reconciled := w.Reconcile(choices)

	fields := w.fields
	if len(fields) == 0 {
		for _, key := range reconciled.Keys() {
			fields = append(fields, FilterField{Key: key, Label: key})
		}
	}

	view := View{
		WidgetID:     w.id,
		ShowApply:    !w.instant,
		ApplyEnabled: !w.instant && w.Dirty(),
	}
	for _, field := range fields {
		selected, _ := selections.Get(field.Key)
		options := DisplayOptions(reconciled[field.Key])
		orphans := Orphans(choices, selections, field.Key)
		markSynthetic(options, orphans)
		label := field.Label
		if label == "" {
			label = field.Key
		}
		view.Fields = append(view.Fields, FieldView{
			Key:      field.Key,
			Label:    label,
			Selected: selected,
			Options:  options,
		})
	}
	return view
}

func markSynthetic(options []DisplayOption, orphans []string) {
	if len(orphans) == 0 {
		return
	}
	ids := make(map[string]struct{}, len(orphans))
	for _, id := range orphans {
		ids[id] = struct{}{}
	}
	for i := range options {
		if _, ok := ids[options[i].Value]; ok {
			options[i].Synthetic = true
		}
	}
}
