package types

// Standard table names for DataStore.GetTable.
const (
	TripsTable  = "trips"
	OutboxTable = "outbox"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TripsTable,
	OutboxTable,
}

// Trips Fetch filter keys besides the exact-match fields FieldName and
// FieldLocation.
const (
	FilterQuery  = "query"
	FilterLimit  = "limit"
	FilterOffset = "offset"
)
