package client

import "depositdesk/internal/form"

// Client must satisfy the response form's outbound interface.
var _ form.API = (*Client)(nil)
