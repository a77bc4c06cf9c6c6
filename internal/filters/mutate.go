package filters

// searchPath is the unscoped listing path.
const searchPath = "/search"

func paramKey(v FilterValue) (string, bool) {
	switch v.Type {
	case FilterTag:
		return ParamTag, true
	case FilterCollection:
		return ParamCollection, true
	case FilterProductType:
		return ParamProductType, true
	case FilterOption:
		if v.Key == "" {
			return "", false
		}
		return ParamOptionPrefix + v.Key, true
	default:
		return "", false
	}
}

// AddFilter returns params with v appended under its key. An identical pair is
// not added twice. Price values are ignored; use SetPriceRange.
func AddFilter(params Params, v FilterValue) Params {
	key, ok := paramKey(v)
	if !ok || params.Contains(key, v.Value) {
		return params.Clone()
	}
	return params.Add(key, v.Value)
}

// RemoveFilter returns params without v. Other values and keys keep their order.
// Removing a price filter drops both bounds.
func RemoveFilter(params Params, v FilterValue) Params {
	if v.Type == FilterPrice {
		return params.Del(ParamMinPrice).Del(ParamMaxPrice)
	}
	key, ok := paramKey(v)
	if !ok {
		return params.Clone()
	}
	return params.Remove(key, v.Value)
}

// ClearAll drops every filter, keeping only the first sort and q values. It also
// returns the path to navigate to, since collection filters live in the path:
// collection-scoped paths fall back to /search.
func ClearAll(params Params, pathname string) (Params, string) {
	var out Params
	if v, ok := params.Lookup(ParamSort); ok {
		out = out.Add(ParamSort, v)
	}
	if v, ok := params.Lookup(ParamQuery); ok {
		out = out.Add(ParamQuery, v)
	}
	if CollectionFromPath(pathname) != "" {
		return out, searchPath
	}
	return out, pathname
}

// SetPriceRange returns params with the price bounds replaced. Nil bounds are removed.
func SetPriceRange(params Params, price PriceRange) Params {
	out := params.Del(ParamMinPrice).Del(ParamMaxPrice)
	if price.Min != nil {
		out = out.Add(ParamMinPrice, price.Min.String())
	}
	if price.Max != nil {
		out = out.Add(ParamMaxPrice, price.Max.String())
	}
	return out
}
