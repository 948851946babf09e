package bridge

// Rule maps one event type to its cache effects. Insert marks events that
// announce a new entity; only those may add to a cached list, every other
// event only replaces an existing entry.
type Rule struct {
	Kind       string
	Insert     bool
	Aggregates []string
}

// DefaultRules covers the dashboard's domain events: orders, calls, and
// reservations, each with a statistics aggregate that cannot be patched
// incrementally and is invalidated instead.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"order.created":   {Kind: "orders", Insert: true, Aggregates: []string{"order.stats"}},
		"order.updated":   {Kind: "orders", Aggregates: []string{"order.stats"}},
		"order.completed": {Kind: "orders", Aggregates: []string{"order.stats"}},

		"call.started": {Kind: "calls", Insert: true, Aggregates: []string{"call.stats"}},
		"call.ended":   {Kind: "calls", Aggregates: []string{"call.stats"}},

		"reservation.created":   {Kind: "reservations", Insert: true, Aggregates: []string{"reservation.stats"}},
		"reservation.updated":   {Kind: "reservations", Aggregates: []string{"reservation.stats"}},
		"reservation.cancelled": {Kind: "reservations", Aggregates: []string{"reservation.stats"}},
	}
}

// EventTypes returns the rule set's event types, the set the bridge
// subscribes to.
func EventTypes(rules map[string]Rule) []string {
	types := make([]string, 0, len(rules))
	for t := range rules {
		types = append(types, t)
	}
	return types
}
