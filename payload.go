package filterbox

import (
	"fmt"

	"github.com/goliatone/go-filterbox/internal/hydrate"
)

// DecodeChoiceSet hydrates the data section of a filter query payload, a
// JSON object mapping each filter key to a list of choice records. Entries
// that are not lists are dropped and numeric ids are stringified. When
// fields are given only those keys are kept.
func DecodeChoiceSet(payload map[string]any, fields ...string) (ChoiceSet, error) {
	decoder := hydrate.NewDecoder[ChoiceSet](
		hydrate.WithPreHook[ChoiceSet](restrictFields(fields)),
		hydrate.WithPreHook[ChoiceSet](normalizeChoiceLists),
		hydrate.WithPostHook[ChoiceSet](fillChoiceLabels),
	)
	return decoder.Decode(hydrate.Context{Source: "choices"}, payload)
}

func decodeMutatedChoices(key string, result any) ([]Choice, error) {
	type envelope struct {
		Choices []Choice `json:"choices"`
	}
	decoder := hydrate.NewDecoder[envelope](
		hydrate.WithPreHook[envelope](normalizeChoiceLists),
		hydrate.WithPostHook[envelope](func(ctx hydrate.Context, out *envelope) error {
			set := ChoiceSet{ctx.Key: out.Choices}
			if err := fillChoiceLabels(ctx, &set); err != nil {
				return err
			}
			out.Choices = set[ctx.Key]
			return nil
		}),
	)
	switch result.(type) {
	case []any, []map[string]any, []Choice:
	default:
		return nil, fmt.Errorf("mutator must return a list of choices, got %T", result)
	}
	out, err := decoder.Decode(hydrate.Context{Source: "mutator", Key: key}, map[string]any{"choices": result})
	if err != nil {
		return nil, err
	}
	if out.Choices == nil {
		out.Choices = []Choice{}
	}
	return out.Choices, nil
}

func restrictFields(fields []string) hydrate.PreHook {
	return func(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
		if len(fields) == 0 {
			return payload, nil
		}
		kept := make(map[string]any, len(fields))
		for _, field := range fields {
			if value, ok := payload[field]; ok {
				kept[field] = value
			}
		}
		return kept, nil
	}
}

func normalizeChoiceLists(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	for key, value := range payload {
		records, ok := value.([]any)
		if !ok {
			delete(payload, key)
			continue
		}
		for _, item := range records {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := record["id"]; ok && id != nil {
				record["id"] = choiceID(id)
			}
			if filter, ok := record["filter"]; ok && filter != nil {
				record["filter"] = choiceID(filter)
			}
		}
	}
	return payload, nil
}

func fillChoiceLabels(_ hydrate.Context, set *ChoiceSet) error {
	for key, choices := range *set {
		for i := range choices {
			if choices[i].Label == "" {
				choices[i].Label = choices[i].ID
			}
		}
		(*set)[key] = choices
	}
	return nil
}
