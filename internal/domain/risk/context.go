package risk

// Context is the read-only snapshot the Risk Context Gatherer assembles from
// historical signals before every redemption. It is advisory: it is not
// required to be transactionally consistent with the redeem transaction
// that follows it.
type Context struct {
	Velocity10m       int
	AvgAmount         float64
	FailedAttempts24h int
	LastIP            string
	CurrentAmount     float64
	CurrentIP         string
}
