package repository

import "time"

// TapeEntry is one computation recorded on the session tape. Operands and the
// result are stored as canonical number strings and formatted when shown.
type TapeEntry struct {
	ID        string
	Seq       int64
	Left      string
	Operator  string
	Right     string
	Result    string
	CreatedAt time.Time
}
