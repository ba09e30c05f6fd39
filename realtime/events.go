package realtime

const (
	EventNewAssignment  = "new_assignment"
	EventNewBid         = "new_bid"
	EventBidUpdated     = "bid_updated"
	EventStatusUpdate   = "status_update"
	EventReceiveMessage = "receive_message"
)
