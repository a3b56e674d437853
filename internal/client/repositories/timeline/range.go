package timeline

import "github.com/dmitrijs2005/tootcache/internal/client/ids"

// Range predicates over a text id column, ordered by length and then value.

func idBelow(col, id string, inclusive bool) (string, []any) {
	op := "<"
	if inclusive {
		op = "<="
	}
	return "(LENGTH(" + col + ") < LENGTH(?) OR (LENGTH(" + col + ") = LENGTH(?) AND " + col + " " + op + " ?))",
		[]any{id, id, id}
}

func idAbove(col, id string, inclusive bool) (string, []any) {
	op := ">"
	if inclusive {
		op = ">="
	}
	return "(LENGTH(" + col + ") > LENGTH(?) OR (LENGTH(" + col + ") = LENGTH(?) AND " + col + " " + op + " ?))",
		[]any{id, id, id}
}

// idBetween matches lo <= col <= hi after ordering the two bounds.
func idBetween(col, a, b string) (string, []any) {
	lo, hi := a, b
	if ids.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	above, aargs := idAbove(col, lo, true)
	below, bargs := idBelow(col, hi, true)
	return above + " AND " + below, append(aargs, bargs...)
}

func orderNewestFirst(col string) string {
	return "ORDER BY LENGTH(" + col + ") DESC, " + col + " DESC"
}
