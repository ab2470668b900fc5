package importer

func hasValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case *string:
		return x != nil
	default:
		return true
	}
}

// KeepRow drops rows whose required columns are all blank. A target without
// required columns keeps any row with at least one value.
func KeepRow(row ParsedRow, columns []ColumnSpec) bool {
	anyRequired := false
	for _, c := range columns {
		if !c.Required {
			continue
		}
		anyRequired = true
		if hasValue(row[c.Key]) {
			return true
		}
	}
	if anyRequired {
		return false
	}
	for _, c := range columns {
		if hasValue(row[c.Key]) {
			return true
		}
	}
	return false
}
