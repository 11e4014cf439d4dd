package sqlutil

// Helper functions for converting between Go types and Postgres column types

// ToInt32s converts character ids to the int4[] column representation.
func ToInt32s(ids []int) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

// FromInt32s converts an int4[] column back to ids. A NULL array yields an empty slice.
func FromInt32s(vals []int32) []int {
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out
}
