package smoke

// HTTP status code constants.
const (
	StatusOK = 200
)

// Runner configuration constants.
const (
	DefaultRounds  = 20
	DefaultWorkers = 4
)
