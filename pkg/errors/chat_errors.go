package errors

var (
	// Domain errors — used in usecase/repository
	ErrInvalidHandle      = InvalidArg("handle must be 2-16 chars of letters, digits, '.' or '_', and not dots/underscores only")
	ErrHandleTaken        = AlreadyExists("handle is already taken")
	ErrAccountNotFound    = NotFound("account not found")
	ErrNotProfileOwner    = Forbidden("only the owning account may update this profile")
	ErrInvalidChannelName = InvalidArg("channel name must be 2-16 alphanumeric characters")
	ErrChannelNameTaken   = AlreadyExists("channel name is already taken")
	ErrChannelNotFound    = NotFound("channel not found")
	ErrNotAdmin           = Forbidden("only the channel administrator may decide join requests")
	ErrNoSuchMembership   = NotFound("no pending membership for this channel and account")
	ErrNotApprovedMember  = Forbidden("sender is not an approved member of this channel")
	ErrEmptyMessage       = InvalidArg("message body is empty")
	ErrFeedUnavailable    = Unavailable("change feed unavailable")
)

func ErrChannelCreateFailed(cause error) error {
	return Wrap(CodeInternal, "channel creation failed", cause)
}

func ErrRegistrationFailed(cause error) error {
	return Wrap(CodeInternal, "registration failed", cause)
}
