package redis

import "fmt"

// KeyForIP builds the default unauthenticated rate-limit scope key.
func KeyForIP(ip, route string) string {
	return fmt.Sprintf("rate_limit:%s:%s", ip, route)
}

// KeyForUser builds the authenticated rate-limit scope key.
func KeyForUser(userID, route string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID, route)
}
