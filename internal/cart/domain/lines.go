package domain

import (
	"errors"
	"math"
	"time"
)

// ErrLineLimit is returned by Merge when the merged quantity would pass the
// cap or no longer fit in an int32.
var ErrLineLimit = errors.New("quantity exceeds line limit")

// Merge adds qty of (productID, pkg) to lines. A line with the same product
// and package name has its quantity incremented; otherwise a new line built
// with newID is appended. limit caps the resulting line quantity; zero means
// only the int32 range applies. The input slice is not modified.
func Merge(lines []Line, userID, productID string, qty int32, pkg Package, limit int32, newID func() string, now time.Time) ([]Line, error) {
	out := Clone(lines)
	for i := range out {
		if out[i].Matches(productID, pkg.Name) {
			total := int64(out[i].Quantity) + int64(qty)
			if exceeds(total, limit) {
				return lines, ErrLineLimit
			}
			out[i].Quantity = int32(total)
			out[i].UpdatedAt = now
			return out, nil
		}
	}
	if exceeds(int64(qty), limit) {
		return lines, ErrLineLimit
	}
	return append(out, Line{
		ID:        newID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		Package:   pkg,
		AddedAt:   now,
		UpdatedAt: now,
	}), nil
}

func exceeds(total int64, limit int32) bool {
	return total > math.MaxInt32 || (limit > 0 && total > int64(limit))
}

// Without drops the line with lineID. Unknown ids leave lines as they are.
func Without(lines []Line, lineID string) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ID != lineID {
			out = append(out, l)
		}
	}
	return out
}

// SetQuantity replaces the quantity of lineID. ok is false when the line
// does not exist, in which case lines is returned unchanged.
func SetQuantity(lines []Line, lineID string, qty int32, now time.Time) (out []Line, updated Line, ok bool) {
	out = Clone(lines)
	for i := range out {
		if out[i].ID == lineID {
			out[i].Quantity = qty
			out[i].UpdatedAt = now
			return out, out[i], true
		}
	}
	return lines, Line{}, false
}

// Find returns the line with lineID.
func Find(lines []Line, lineID string) (Line, bool) {
	for _, l := range lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return Line{}, false
}

func Clone(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
