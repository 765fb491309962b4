// Package weights provides dispatch weights for transform rules.
// Rules with lower weights are tested first; the first matching rule wins.
package weights

import "sort"

// Default weights for the built-in transform rules.
// Lower weights are tested first.
const (
	WeightApp                = 0
	WeightReactNativeModule  = 10
	WeightExpoModule         = 20
	WeightUntranspiledModule = 30
	WeightDefault            = 1000
)

// ruleWeights maps rule name to weight.
var ruleWeights = map[string]int{
	"app":                WeightApp,
	"reactNativeModule":  WeightReactNativeModule,
	"expoModule":         WeightExpoModule,
	"untranspiledModule": WeightUntranspiledModule,
	"passthroughModule":  WeightDefault,
}

// GetWeight returns the weight for a rule name.
// Unknown rules sort with the catch-all.
func GetWeight(rule string) int {
	if weight, ok := ruleWeights[rule]; ok {
		return weight
	}
	return WeightDefault
}

// Sort orders items by the weight of their rule name, keeping the relative
// order of items with equal weight.
func Sort[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return GetWeight(name(items[i])) < GetWeight(name(items[j]))
	})
}
