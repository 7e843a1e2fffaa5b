// Package layering merges ordered snapshots where stronger layers override
// weaker ones key by key.
package layering

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Merge composes layers ordered from strongest to weakest. A key present in
// any layer takes the value of the strongest layer holding it. Key order
// follows the weakest layer first, then keys introduced by stronger layers in
// the order they appear there. Nil layers are skipped. The result is a new
// map; inputs are not modified.
func Merge[K comparable, V any](layers ...*orderedmap.OrderedMap[K, V]) *orderedmap.OrderedMap[K, V] {
	merged := orderedmap.New[K, V]()
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		if layer == nil {
			continue
		}
		for pair := layer.Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
	}
	return merged
}

// Source returns the index of the strongest layer holding key, or -1.
func Source[K comparable, V any](key K, layers ...*orderedmap.OrderedMap[K, V]) int {
	for i, layer := range layers {
		if layer == nil {
			continue
		}
		if _, ok := layer.Get(key); ok {
			return i
		}
	}
	return -1
}

// Holders returns the indexes of every layer holding key, strongest first.
func Holders[K comparable, V any](key K, layers ...*orderedmap.OrderedMap[K, V]) []int {
	var out []int
	for i, layer := range layers {
		if layer == nil {
			continue
		}
		if _, ok := layer.Get(key); ok {
			out = append(out, i)
		}
	}
	return out
}
