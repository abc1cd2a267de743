package lifecycle

import (
	"github.com/omxtrade/omx/models"
)

type edge struct {
	From models.OrderStatus
	To   models.OrderStatus
}

type edgeSpec struct {
	Guard GuardKind
	Event string
}

// transitionTable is the full set of accepted lifecycle edges. Any pair not
// present is rejected without mutation.
var transitionTable = map[edge]edgeSpec{
	{models.StatusPending, models.StatusValidated}: {GuardNone, "order_validated"},
	{models.StatusPending, models.StatusRejected}:  {GuardNone, "order_rejected"},
	{models.StatusPending, models.StatusHeld}:      {GuardHold, "order_held"},

	{models.StatusValidated, models.StatusWorking}:  {GuardNone, "order_working"},
	{models.StatusValidated, models.StatusRejected}: {GuardNone, "order_rejected"},
	{models.StatusValidated, models.StatusHeld}:     {GuardHold, "order_held"},

	{models.StatusHeld, models.StatusWorking}:   {GuardNone, "order_working"},
	{models.StatusHeld, models.StatusCancelled}: {GuardCancel, "order_cancelled"},
	{models.StatusHeld, models.StatusExpired}:   {GuardNone, "order_expired"},

	{models.StatusWorking, models.StatusPartialFill}: {GuardPartialFill, "order_partial_fill"},
	{models.StatusWorking, models.StatusFilled}:      {GuardFill, "order_filled"},
	{models.StatusWorking, models.StatusCancelled}:   {GuardCancel, "order_cancelled"},
	{models.StatusWorking, models.StatusExpired}:     {GuardNone, "order_expired"},
	{models.StatusWorking, models.StatusDoneForDay}:  {GuardNone, "order_done_for_day"},

	{models.StatusPartialFill, models.StatusPartialFill}: {GuardPartialFill, "order_partial_fill"},
	{models.StatusPartialFill, models.StatusFilled}:      {GuardFill, "order_filled"},
	{models.StatusPartialFill, models.StatusCancelled}:   {GuardCancel, "order_cancelled"},
	{models.StatusPartialFill, models.StatusExpired}:     {GuardNone, "order_expired"},
	{models.StatusPartialFill, models.StatusDoneForDay}:  {GuardNone, "order_done_for_day"},
}

func lookupEdge(from, to models.OrderStatus) (edgeSpec, bool) {
	spec, found := transitionTable[edge{from, to}]

	return spec, found
}
