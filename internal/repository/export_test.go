package repository

var (
	NullableInt64  = nullableInt64
	NullableString = nullableString
	FormatTime     = formatTime
	ParseTime      = parseTime
	FormatBoundary = formatBoundary
	ParseBoundary  = parseBoundary
)
