package gcal

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrInvalidCredentials is returned when the stored refresh token is
// missing or the refresh round-trip with Google fails. Retrying does not
// help; the user has to reconnect.
var ErrInvalidCredentials = errors.New("gcal: invalid google credentials")

// ErrNoRefreshToken is returned by Exchange when Google's token response
// carries no refresh token, which happens if the user previously granted
// access without revoking it.
var ErrNoRefreshToken = errors.New("gcal: no refresh token received")

// RemoteError wraps any calendar API failure, including transport errors
// and non-2xx responses.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gcal: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func remoteErr(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}

// isGone reports whether err is a 404 or 410 API response, i.e. the
// resource no longer exists remotely.
func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 || apiErr.Code == 410
	}
	return false
}
