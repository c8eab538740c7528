package catalog

// ResolveVariant finds the variant matching every selected option, in list
// order. A variant matches when its SelectedOptions contains an entry with
// the same name and value for each selection; names are matched exactly as
// provided (callers pass canonical names such as "Color"), values are
// case-sensitive. Variants without options never match a non-empty
// selection. The first satisfying variant wins; nil means the combination
// is unavailable.
func ResolveVariant(variants []Variant, selected []SelectedOption) *Variant {
	for i := range variants {
		if variantMatches(&variants[i], selected) {
			return &variants[i]
		}
	}
	return nil
}

func variantMatches(v *Variant, selected []SelectedOption) bool {
	if len(selected) > 0 && len(v.SelectedOptions) == 0 {
		return false
	}
	for _, sel := range selected {
		if !hasOption(v.SelectedOptions, sel) {
			return false
		}
	}
	return true
}

func hasOption(options []SelectedOption, want SelectedOption) bool {
	for _, opt := range options {
		if opt.Name == want.Name && opt.Value == want.Value {
			return true
		}
	}
	return false
}
