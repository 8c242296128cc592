package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusAssigned, StatusShipped,
	StatusDelivered, StatusRejected, StatusCancelled,
}

var allRoles = []Role{RoleCustomer, RoleStaff, RoleCourier}

func TestCheckEveryPairAnswers(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			for _, role := range allRoles {
				err := Check(from, to, role)
				if err == nil {
					assert.True(t, Allowed(from, to),
						"Check allowed %s->%s for %s but edge is not in the graph", from, to, role)
					continue
				}
				assert.Contains(t, []error{ErrInvalidTransition, ErrUnauthorized}, err,
					"%s->%s as %s", from, to, role)
			}
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	for _, from := range allStatuses {
		if !from.Terminal() {
			continue
		}
		for _, to := range allStatuses {
			assert.False(t, Allowed(from, to), "terminal %s must not allow %s", from, to)
		}
	}
}

func TestCheckRoleGating(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		role Role
		want error
	}{
		{"staff confirms pending", StatusPending, StatusConfirmed, RoleStaff, nil},
		{"customer cannot confirm", StatusPending, StatusConfirmed, RoleCustomer, ErrUnauthorized},
		{"customer cancels pending", StatusPending, StatusCancelled, RoleCustomer, nil},
		{"courier cannot cancel", StatusPending, StatusCancelled, RoleCourier, ErrUnauthorized},
		{"courier accepts confirmed", StatusConfirmed, StatusAssigned, RoleCourier, nil},
		{"staff ships confirmed directly", StatusConfirmed, StatusShipped, RoleStaff, nil},
		{"courier ships assigned", StatusAssigned, StatusShipped, RoleCourier, nil},
		{"staff cannot ship assigned", StatusAssigned, StatusShipped, RoleStaff, ErrUnauthorized},
		{"courier delivers shipped", StatusShipped, StatusDelivered, RoleCourier, nil},
		{"customer cannot cancel confirmed", StatusConfirmed, StatusCancelled, RoleCustomer, ErrUnauthorized},
		{"courier rejects assigned", StatusAssigned, StatusRejected, RoleCourier, nil},
		{"no edge out of delivered", StatusDelivered, StatusCancelled, RoleStaff, ErrInvalidTransition},
		{"no skipping confirm", StatusPending, StatusShipped, RoleStaff, ErrInvalidTransition},
		{"no going backwards", StatusShipped, StatusConfirmed, RoleStaff, ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Check(tc.from, tc.to, tc.role))
		})
	}
}

func TestReasonRequiredOnlyForStaffCancelOfConfirmed(t *testing.T) {
	require.True(t, ReasonRequired(StatusConfirmed, StatusCancelled))
	assert.False(t, ReasonRequired(StatusPending, StatusCancelled))
	assert.False(t, ReasonRequired(StatusConfirmed, StatusAssigned))
}

func TestCanCancel(t *testing.T) {
	pendingUnpaid := OrderRecord{Status: StatusPending, PaymentStatus: PaymentUnpaid}
	pendingPaid := OrderRecord{Status: StatusPending, PaymentStatus: PaymentPaid}
	confirmed := OrderRecord{Status: StatusConfirmed, PaymentStatus: PaymentUnpaid}
	shipped := OrderRecord{Status: StatusShipped, PaymentStatus: PaymentUnpaid}

	assert.True(t, CanCancel(pendingUnpaid, RoleCustomer))
	assert.False(t, CanCancel(pendingPaid, RoleCustomer), "paid orders are never customer-cancellable")
	assert.True(t, CanCancel(pendingPaid, RoleStaff))
	assert.False(t, CanCancel(confirmed, RoleCustomer))
	assert.True(t, CanCancel(confirmed, RoleStaff))
	assert.False(t, CanCancel(shipped, RoleStaff))
	assert.False(t, CanCancel(pendingUnpaid, RoleCourier))
}

func TestActionTargets(t *testing.T) {
	assert.Equal(t, StatusConfirmed, ActionConfirm.Target())
	assert.Equal(t, StatusAssigned, ActionAccept.Target())
	assert.Equal(t, StatusShipped, ActionShip.Target())
	assert.Equal(t, StatusDelivered, ActionDeliver.Target())
	assert.Equal(t, StatusCancelled, ActionCancel.Target())
	assert.Equal(t, StatusRejected, ActionReject.Target())
	assert.False(t, Action("explode").Valid())
}
