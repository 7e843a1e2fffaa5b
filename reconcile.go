package filterbox

// Reconcile returns a copy of choices in which every value selected in a
// multi-select filter, but missing from that filter's choices, is
// represented by a synthetic zero-weight Choice. Synthetic choices are
// prepended in selection order and rebuilt on every call, so repeated calls
// with the same inputs return the same result. Keys that have no entry in
// choices are left alone. Neither input is modified.
func Reconcile(choices ChoiceSet, selections *Selections) ChoiceSet {
	out := choices.Clone()
	if out == nil {
		out = ChoiceSet{}
	}
	selections.Each(func(key string, value Value) bool {
		if value.Kind() != KindMulti || value.Len() == 0 {
			return true
		}
		existing, ok := out[key]
		if !ok {
			return true
		}
		synthetic := orphanChoices(key, existing, value.Items())
		if len(synthetic) == 0 {
			return true
		}
		out[key] = append(synthetic, existing...)
		return true
	})
	return out
}

// Orphans lists the selected values of key that have no matching choice.
func Orphans(choices ChoiceSet, selections *Selections, key string) []string {
	value, ok := selections.Get(key)
	if !ok || value.Kind() != KindMulti {
		return nil
	}
	existing, ok := choices[key]
	if !ok {
		return nil
	}
	synthetic := orphanChoices(key, existing, value.Items())
	out := make([]string, len(synthetic))
	for i, choice := range synthetic {
		out[i] = choice.ID
	}
	return out
}

func orphanChoices(key string, existing []Choice, selected []any) []Choice {
	known := make(map[string]struct{}, len(existing)+len(selected))
	for _, choice := range existing {
		known[choice.ID] = struct{}{}
	}
	var synthetic []Choice
	for _, item := range selected {
		id := choiceID(item)
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		synthetic = append(synthetic, Choice{
			ID:     id,
			Label:  id,
			Filter: key,
			Weight: 0,
		})
	}
	return synthetic
}
