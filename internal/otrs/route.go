package otrs

import "strings"

// Operation is a logical OTRS generic interface operation.
type Operation string

const (
	OpCreateTicket Operation = "create_ticket"
	OpUpdateTicket Operation = "update_ticket"
	OpGetTicket    Operation = "get_ticket"
	OpSearchTicket Operation = "search_ticket"
)

// EndpointPath is the generic interface prefix placed between the device URL
// and the web service name.
const EndpointPath = "otrs/nph-genericinterface.pl/Webservice"

// DefaultRoutes returns the route segments used by the stock
// GenericTicketConnector web service.
func DefaultRoutes() map[Operation]string {
	return map[Operation]string{
		OpCreateTicket: "TicketCreate",
		OpUpdateTicket: "TicketUpdate",
		OpGetTicket:    "TicketGet",
		OpSearchTicket: "TicketSearch",
	}
}

// RouteMapping resolves operations to route segments. Overrides win over
// defaults. The zero value resolves nothing.
type RouteMapping struct {
	defaults  map[Operation]string
	overrides map[Operation]string
}

// NewRouteMapping copies defaults and overrides so later changes to the
// passed maps do not leak into the mapping.
func NewRouteMapping(defaults, overrides map[Operation]string) RouteMapping {
	return RouteMapping{
		defaults:  copyRoutes(defaults),
		overrides: copyRoutes(overrides),
	}
}

// NewDefaultRouteMapping is NewRouteMapping with DefaultRoutes.
func NewDefaultRouteMapping(overrides map[Operation]string) RouteMapping {
	return NewRouteMapping(DefaultRoutes(), overrides)
}

// Resolve returns the route segment for op without surrounding slashes.
func (m RouteMapping) Resolve(op Operation) (string, error) {
	if seg, ok := m.overrides[op]; ok {
		return strings.Trim(seg, "/"), nil
	}
	if seg, ok := m.defaults[op]; ok {
		return strings.Trim(seg, "/"), nil
	}
	return "", &ConfigurationError{Operation: op, Message: "no route configured"}
}

func copyRoutes(src map[Operation]string) map[Operation]string {
	dst := make(map[Operation]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
