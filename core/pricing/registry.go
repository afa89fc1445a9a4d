package pricing

// Built-in pricing types.
const (
	TypeFixed    = "fixed"
	TypePerAsset = "per_asset"
	TypePerArea  = "per_area"
)

// builtins is the fixed strategy table, consulted before falling back to the
// configurable strategy. It is compile-time-known and never mutated at
// runtime: extending with a new named strategy means adding an entry here,
// while ad-hoc pricing types need no registry change at all because they flow
// through pricing_config.
var builtins = map[string]Strategy{
	TypeFixed:    fixedStrategy{},
	TypePerAsset: perAssetStrategy{},
	TypePerArea:  perAreaStrategy{},
}

// IsBuiltin reports whether name is a built-in pricing type
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}
