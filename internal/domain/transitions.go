package domain

// Action is a transition trigger named by what the actor does, not by the
// status it lands on.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionAccept  Action = "accept"
	ActionShip    Action = "ship"
	ActionDeliver Action = "deliver"
	ActionCancel  Action = "cancel"
	ActionReject  Action = "reject"
)

func (a Action) Valid() bool {
	_, ok := actionTargets[a]
	return ok
}

var actionTargets = map[Action]Status{
	ActionConfirm: StatusConfirmed,
	ActionAccept:  StatusAssigned,
	ActionShip:    StatusShipped,
	ActionDeliver: StatusDelivered,
	ActionCancel:  StatusCancelled,
	ActionReject:  StatusRejected,
}

// Target returns the status the action moves an order to.
func (a Action) Target() Status { return actionTargets[a] }

type edge struct {
	from, to Status
}

type rule struct {
	roles          []Role
	reasonRequired bool
}

// table is the single source of truth for the lifecycle graph. The observed
// graph is the union of all call sites: both confirmed->shipped (staff hands
// straight to a courier at the counter) and assigned->shipped (courier starts
// the run) stay legal until product settles whether 'assigned' is mandatory.
var table = map[edge]rule{
	{StatusPending, StatusConfirmed}: {roles: []Role{RoleStaff}},
	{StatusPending, StatusCancelled}: {roles: []Role{RoleCustomer, RoleStaff}},

	{StatusConfirmed, StatusAssigned}:  {roles: []Role{RoleCourier}},
	{StatusConfirmed, StatusShipped}:   {roles: []Role{RoleStaff, RoleCourier}},
	{StatusConfirmed, StatusCancelled}: {roles: []Role{RoleStaff}, reasonRequired: true},

	{StatusAssigned, StatusShipped}: {roles: []Role{RoleCourier}},

	{StatusShipped, StatusDelivered}: {roles: []Role{RoleStaff, RoleCourier}},

	{StatusPending, StatusRejected}:   {roles: []Role{RoleCourier}},
	{StatusConfirmed, StatusRejected}: {roles: []Role{RoleCourier}},
	{StatusAssigned, StatusRejected}:  {roles: []Role{RoleCourier}},
}

// Allowed reports whether from->to is an edge of the lifecycle graph,
// regardless of role.
func Allowed(from, to Status) bool {
	_, ok := table[edge{from, to}]
	return ok
}

// ReasonRequired reports whether the edge demands a human-readable reason.
func ReasonRequired(from, to Status) bool {
	return table[edge{from, to}].reasonRequired
}

// Check validates from->to for the given role. It returns ErrInvalidTransition
// when the edge does not exist and ErrUnauthorized when it exists but the role
// may not trigger it.
func Check(from, to Status, role Role) error {
	r, ok := table[edge{from, to}]
	if !ok {
		return ErrInvalidTransition
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return nil
		}
	}
	return ErrUnauthorized
}

// CanCancel is the client-side guard evaluated before any network call.
// A paid order is never customer-cancellable.
func CanCancel(o OrderRecord, role Role) bool {
	if role == RoleCustomer && o.PaymentStatus == PaymentPaid {
		return false
	}
	return Check(o.Status, StatusCancelled, role) == nil
}
