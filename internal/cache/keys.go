package cache

import "fmt"

const ns = "gsz:v1"

// KeyQuery is the cache key of one cached listing of a table.
func KeyQuery(table, variant string) string {
	return fmt.Sprintf("%s:q:%s:%s", ns, table, variant)
}

// KeyQueryIndex is the set of every KeyQuery written for a table.
func KeyQueryIndex(table string) string {
	return fmt.Sprintf("%s:qidx:%s", ns, table)
}

func KeyCart(cartID string) string {
	return fmt.Sprintf("%s:cart:%s", ns, cartID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelChanges() string {
	return ns + ":changes"
}
