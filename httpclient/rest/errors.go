package rest

import "github.com/kbukum/voxscribe/httpclient"

// IsNotFound reports a 404.
func IsNotFound(err error) bool { return httpclient.IsNotFound(err) }

// IsAuth reports a 401 or 403.
func IsAuth(err error) bool { return httpclient.IsAuth(err) }

// IsServerError reports a 5xx.
func IsServerError(err error) bool { return httpclient.IsServerError(err) }

// IsTimeout reports a timeout.
func IsTimeout(err error) bool { return httpclient.IsTimeout(err) }
